// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ops

import (
	"os"

	"zub/lib/store"
)

// Stats summarizes a tree's size and object-count breakdown.
type Stats struct {
	LogicalBytes int64
	StoredBytes  int64
	Directories  int
	Regular      int
	Symlinks     int
	Other        int
}

// StatsForTree walks treeHash (du-equivalent) and reports total
// logical file size, total on-disk stored object bytes, and a count
// of entries by kind. Hardlink entries are not counted in any field.
// Read-only; no lock required.
func StatsForTree(repo *store.Repo, treeHash store.Hash) (Stats, error) {
	var s Stats
	seenBlobs := make(map[store.Hash]bool)
	if err := statsWalk(repo, treeHash, &s, seenBlobs); err != nil {
		return Stats{}, err
	}
	return s, nil
}

func statsWalk(repo *store.Repo, treeHash store.Hash, s *Stats, seenBlobs map[store.Hash]bool) error {
	tree, err := repo.ReadTree(treeHash)
	if err != nil {
		return err
	}
	for _, e := range tree.Entries {
		switch e.Kind.Type {
		case store.KindDirectory:
			s.Directories++
			if err := statsWalk(repo, e.Kind.Hash, s, seenBlobs); err != nil {
				return err
			}
		case store.KindRegular:
			s.Regular++
			s.LogicalBytes += e.Kind.Size
			if !seenBlobs[e.Kind.Hash] {
				seenBlobs[e.Kind.Hash] = true
				if info, err := os.Stat(repo.BlobPath(e.Kind.Hash)); err == nil {
					s.StoredBytes += info.Size()
				}
			}
		case store.KindSymlink:
			s.Symlinks++
		case store.KindHardlink:
			// no independent storage cost; content counted via its referent
		default:
			s.Other++
		}
	}
	return nil
}
