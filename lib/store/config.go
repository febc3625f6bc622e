// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Remote is one entry of config.toml's [[remotes]] table array.
type Remote struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

// Config is the full parsed contents of a repository's config.toml.
type Config struct {
	Namespace NsConfig
	Remotes   []Remote
}

// idMapRow is the [inside, outside, count] form a MapEntry takes on
// disk, matching spec.md §6's normative schema exactly (an array of
// 3-element arrays, not a table array of named fields).
type idMapRow [3]uint32

func entriesToRows(entries []MapEntry) []idMapRow {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]idMapRow, len(entries))
	for i, e := range entries {
		rows[i] = idMapRow{e.InsideStart, e.OutsideStart, e.Count}
	}
	return rows
}

func rowsToEntries(rows []idMapRow) []MapEntry {
	if len(rows) == 0 {
		return nil
	}
	entries := make([]MapEntry, len(rows))
	for i, r := range rows {
		entries[i] = NewMapEntry(r[0], r[1], r[2])
	}
	return entries
}

// configFile is the literal on-disk TOML shape. Config exists
// separately so the rest of the package works with MapEntry/NsConfig
// directly instead of the row-tuple wire format.
type configFile struct {
	Namespace struct {
		UIDMap []idMapRow `toml:"uid_map,omitempty"`
		GIDMap []idMapRow `toml:"gid_map,omitempty"`
	} `toml:"namespace"`
	Remotes []Remote `toml:"remotes"`
}

// LoadConfig reads and parses config.toml from path. A namespace
// section omitted entirely decodes as the identity mapping.
func LoadConfig(path string) (Config, error) {
	var cf configFile
	if _, err := toml.DecodeFile(path, &cf); err != nil {
		return Config{}, &PathError{Path: path, Err: err}
	}

	cfg := Config{Remotes: cf.Remotes}
	if len(cf.Namespace.UIDMap) == 0 {
		cfg.Namespace.UIDMap = IdentityNsConfig().UIDMap
	} else {
		cfg.Namespace.UIDMap = rowsToEntries(cf.Namespace.UIDMap)
	}
	if len(cf.Namespace.GIDMap) == 0 {
		cfg.Namespace.GIDMap = IdentityNsConfig().GIDMap
	} else {
		cfg.Namespace.GIDMap = rowsToEntries(cf.Namespace.GIDMap)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path as TOML, matching spec.md §6's schema.
func SaveConfig(path string, cfg Config) error {
	var cf configFile
	if !isIdentityMap(cfg.Namespace.UIDMap) {
		cf.Namespace.UIDMap = entriesToRows(cfg.Namespace.UIDMap)
	}
	if !isIdentityMap(cfg.Namespace.GIDMap) {
		cf.Namespace.GIDMap = entriesToRows(cfg.Namespace.GIDMap)
	}
	cf.Remotes = cfg.Remotes

	f, err := os.Create(path)
	if err != nil {
		return &PathError{Path: path, Err: err}
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cf); err != nil {
		return &PathError{Path: path, Err: fmt.Errorf("encoding config: %w", err)}
	}
	return nil
}

// Remote looks up a remote by name.
func (c Config) Remote(name string) (Remote, error) {
	for _, r := range c.Remotes {
		if r.Name == name {
			return r, nil
		}
	}
	return Remote{}, &RemoteNotFoundError{Name: name}
}
