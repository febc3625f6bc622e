// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ops

import (
	"os"
	"path/filepath"
	"syscall"

	"zub/lib/store"
)

// MapOptions configures a Map pass.
type MapOptions struct {
	// Force skips blobs whose inside id is not covered by the target
	// namespace instead of raising UnmappedUIDError/UnmappedGIDError.
	Force bool
	// DryRun reports what would change without chowning anything.
	DryRun bool
}

// MapStats summarizes one Map pass.
type MapStats struct {
	Remapped              int64
	SkippedUnmappedSource int64
	SkippedUnmappedTarget int64
	Total                 int64
}

// Map rewrites every stored blob's on-disk ownership from oldNs to
// newNs, in place: each blob file's current (outside) uid/gid is
// translated to its inside id under oldNs, then back to an outside id
// under newNs, and chowned to match. Blob content and hashes are
// untouched — ownership baked into a blob's content hash is the
// logical (inside) identity recorded at commit time, which this
// operation does not and cannot change; it only corrects the real
// on-disk ownership of already-stored objects after the repository's
// namespace configuration changes. Must be called while holding the
// repository lock.
func Map(repo *store.Repo, oldNs, newNs store.NsConfig, opts MapOptions) (MapStats, error) {
	var stats MapStats

	if store.MappingsEqual(oldNs.UIDMap, newNs.UIDMap) && store.MappingsEqual(oldNs.GIDMap, newNs.GIDMap) {
		return stats, nil
	}

	err := filepath.Walk(repo.BlobsDir(), func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		stats.Total++

		result, remapErr := remapBlobOwnership(path, info, oldNs, newNs, opts)
		switch result {
		case remapSkippedUnmappedSource:
			stats.SkippedUnmappedSource++
			return nil
		case remapSkippedUnmappedTarget:
			stats.SkippedUnmappedTarget++
			return nil
		case remapChanged:
			stats.Remapped++
			return remapErr
		default: // remapUnchanged
			return remapErr
		}
	})
	if err != nil {
		return stats, &store.PathError{Path: repo.BlobsDir(), Err: err}
	}
	return stats, nil
}

type remapResult int

const (
	remapUnchanged remapResult = iota
	remapChanged
	remapSkippedUnmappedSource
	remapSkippedUnmappedTarget
)

func remapBlobOwnership(path string, info os.FileInfo, oldNs, newNs store.NsConfig, opts MapOptions) (remapResult, error) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return remapUnchanged, nil
	}
	oldOutsideUID, oldOutsideGID := stat.Uid, stat.Gid

	insideUID, err := oldNs.OutsideUIDToInside(oldOutsideUID)
	if err != nil {
		return remapSkippedUnmappedSource, nil
	}
	insideGID, err := oldNs.OutsideGIDToInside(oldOutsideGID)
	if err != nil {
		return remapSkippedUnmappedSource, nil
	}

	newOutsideUID, err := newNs.InsideUIDToOutside(insideUID)
	if err != nil {
		if opts.Force {
			return remapSkippedUnmappedTarget, nil
		}
		return remapUnchanged, err
	}
	newOutsideGID, err := newNs.InsideGIDToOutside(insideGID)
	if err != nil {
		if opts.Force {
			return remapSkippedUnmappedTarget, nil
		}
		return remapUnchanged, err
	}

	if newOutsideUID == oldOutsideUID && newOutsideGID == oldOutsideGID {
		return remapUnchanged, nil
	}

	if opts.DryRun {
		return remapChanged, nil
	}
	if err := os.Chown(path, int(newOutsideUID), int(newOutsideGID)); err != nil {
		return remapUnchanged, &store.PathError{Path: path, Err: err}
	}
	return remapChanged, nil
}
