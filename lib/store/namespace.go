// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MapEntry is one contiguous range of a user-namespace id mapping:
// count consecutive inside ids starting at InsideStart correspond to
// count consecutive outside ids starting at OutsideStart, matching the
// three-column rows of /proc/self/{uid,gid}_map.
type MapEntry struct {
	InsideStart  uint32
	OutsideStart uint32
	Count        uint32
}

// NewMapEntry constructs a MapEntry.
func NewMapEntry(insideStart, outsideStart, count uint32) MapEntry {
	return MapEntry{InsideStart: insideStart, OutsideStart: outsideStart, Count: count}
}

// saturatingAdd adds delta to base without wrapping past the uint32
// maximum, so range checks near the top of the id space never
// overflow back around to zero.
func saturatingAdd(base, delta uint32) uint32 {
	sum := uint64(base) + uint64(delta)
	if sum > uint64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(sum)
}

// ContainsInside reports whether id falls within this entry's inside
// range.
func (e MapEntry) ContainsInside(id uint32) bool {
	if id < e.InsideStart {
		return false
	}
	end := saturatingAdd(e.InsideStart, e.Count)
	return id < end
}

// ContainsOutside reports whether id falls within this entry's
// outside range.
func (e MapEntry) ContainsOutside(id uint32) bool {
	if id < e.OutsideStart {
		return false
	}
	end := saturatingAdd(e.OutsideStart, e.Count)
	return id < end
}

// toOutside translates an inside id known to be contained in e.
func (e MapEntry) toOutside(inside uint32) uint32 {
	return e.OutsideStart + (inside - e.InsideStart)
}

// toInside translates an outside id known to be contained in e.
func (e MapEntry) toInside(outside uint32) uint32 {
	return e.InsideStart + (outside - e.OutsideStart)
}

// NsConfig is a repository's user-namespace id mapping: one ordered
// list of ranges for uids, one for gids.
type NsConfig struct {
	UIDMap []MapEntry
	GIDMap []MapEntry
}

// IdentityNsConfig returns the NsConfig that maps every id to itself
// (a single range covering the full id space).
func IdentityNsConfig() NsConfig {
	full := []MapEntry{NewMapEntry(0, 0, ^uint32(0))}
	return NsConfig{UIDMap: full, GIDMap: append([]MapEntry{}, full...)}
}

// IsIdentity reports whether cfg behaves as the identity mapping: one
// entry per table spanning the whole id space starting at 0.
func (cfg NsConfig) IsIdentity() bool {
	return isIdentityMap(cfg.UIDMap) && isIdentityMap(cfg.GIDMap)
}

func isIdentityMap(entries []MapEntry) bool {
	if len(entries) != 1 {
		return false
	}
	e := entries[0]
	return e.InsideStart == 0 && e.OutsideStart == 0 && e.Count == ^uint32(0)
}

// outsideToInside translates outside using table, returning false if
// outside falls in no entry's outside range.
func outsideToInside(table []MapEntry, outside uint32) (uint32, bool) {
	for _, e := range table {
		if e.ContainsOutside(outside) {
			return e.toInside(outside), true
		}
	}
	return 0, false
}

// insideToOutside translates inside using table, returning false if
// inside falls in no entry's inside range.
func insideToOutside(table []MapEntry, inside uint32) (uint32, bool) {
	for _, e := range table {
		if e.ContainsInside(inside) {
			return e.toOutside(inside), true
		}
	}
	return 0, false
}

// OutsideUIDToInside translates an outside (on-disk) uid to the
// inside (repository-logical) uid under cfg. Returns UnmappedUIDError
// if outside is not covered by any entry.
func (cfg NsConfig) OutsideUIDToInside(outside uint32) (uint32, error) {
	inside, ok := outsideToInside(cfg.UIDMap, outside)
	if !ok {
		return 0, &UnmappedUIDError{UID: outside}
	}
	return inside, nil
}

// InsideUIDToOutside translates an inside uid to the outside uid under
// cfg.
func (cfg NsConfig) InsideUIDToOutside(inside uint32) (uint32, error) {
	outside, ok := insideToOutside(cfg.UIDMap, inside)
	if !ok {
		return 0, &UnmappedUIDError{UID: inside}
	}
	return outside, nil
}

// OutsideGIDToInside translates an outside gid to an inside gid under cfg.
func (cfg NsConfig) OutsideGIDToInside(outside uint32) (uint32, error) {
	inside, ok := outsideToInside(cfg.GIDMap, outside)
	if !ok {
		return 0, &UnmappedGIDError{GID: outside}
	}
	return inside, nil
}

// InsideGIDToOutside translates an inside gid to an outside gid under cfg.
func (cfg NsConfig) InsideGIDToOutside(inside uint32) (uint32, error) {
	outside, ok := insideToOutside(cfg.GIDMap, inside)
	if !ok {
		return 0, &UnmappedGIDError{GID: inside}
	}
	return outside, nil
}

// RemapUID composes two mappings: an outside id under oldCfg is
// translated to its inside id, then that inside id is translated to
// the outside id under newCfg. Used to rewrite already-committed
// on-disk metadata after a repository's namespace configuration
// changes.
func RemapUID(oldCfg, newCfg NsConfig, outside uint32) (uint32, error) {
	inside, err := oldCfg.OutsideUIDToInside(outside)
	if err != nil {
		return 0, err
	}
	return newCfg.InsideUIDToOutside(inside)
}

// RemapGID is the gid analog of RemapUID.
func RemapGID(oldCfg, newCfg NsConfig, outside uint32) (uint32, error) {
	inside, err := oldCfg.OutsideGIDToInside(outside)
	if err != nil {
		return 0, err
	}
	return newCfg.InsideGIDToOutside(inside)
}

// MappingsEqual reports whether a and b translate every id the same
// way, which is not the same as comparing their entry lists directly
// (two different partitionings of the id space can be equivalent).
func MappingsEqual(a, b []MapEntry) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	boundaries := map[uint32]struct{}{}
	addBoundaries := func(table []MapEntry) {
		for _, e := range table {
			boundaries[e.InsideStart] = struct{}{}
			end := saturatingAdd(e.InsideStart, e.Count)
			if end > 0 {
				boundaries[end-1] = struct{}{}
			}
		}
	}
	addBoundaries(a)
	addBoundaries(b)
	for id := range boundaries {
		outA, okA := insideToOutside(a, id)
		outB, okB := insideToOutside(b, id)
		if okA != okB || (okA && outA != outB) {
			return false
		}
	}
	return true
}

// ParseIDMap parses the three-column decimal format of
// /proc/self/{uid,gid}_map: "inside outside count" per line. Blank
// lines are skipped. Lines with the wrong column count are silently
// skipped (the kernel pads this file inconsistently across versions);
// a well-formed line with an unparseable number is a
// NamespaceParseError.
func ParseIDMap(r io.Reader) ([]MapEntry, error) {
	var entries []MapEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 3 {
			continue
		}
		inside, err1 := strconv.ParseUint(fields[0], 10, 32)
		outside, err2 := strconv.ParseUint(fields[1], 10, 32)
		count, err3 := strconv.ParseUint(fields[2], 10, 32)
		if err1 != nil || err2 != nil || err3 != nil {
			return nil, &NamespaceParseError{Line: line}
		}
		entries = append(entries, NewMapEntry(uint32(inside), uint32(outside), uint32(count)))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading id map: %w", err)
	}
	return entries, nil
}
