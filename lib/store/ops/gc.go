// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ops

import (
	"os"

	"zub/lib/store"
)

// GCReport summarizes one garbage collection pass.
type GCReport struct {
	Removed      []store.Hash
	BytesFreed   int64
	DryRun       bool
}

// GC computes the reachability closure from every ref (mark phase)
// and removes every stored object not in it (sweep phase). Must be
// called while holding the repository lock, so a concurrent commit or
// push cannot create a reference to an object between mark and sweep.
// When dryRun is true, nothing is deleted; the report only estimates
// what would be freed.
func GC(repo *store.Repo, dryRun bool) (GCReport, error) {
	report := GCReport{DryRun: dryRun}

	reachable, err := reachabilityClosure(repo)
	if err != nil {
		return report, err
	}

	commits, trees, blobs, err := allStoredHashes(repo)
	if err != nil {
		return report, err
	}

	sweep := func(hashes []store.Hash, pathOf func(store.Hash) string) error {
		for _, h := range hashes {
			if reachable[h] {
				continue
			}
			path := pathOf(h)
			if info, err := os.Stat(path); err == nil {
				report.BytesFreed += info.Size()
			}
			report.Removed = append(report.Removed, h)
			if !dryRun {
				if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
					return &store.PathError{Path: path, Err: err}
				}
			}
		}
		return nil
	}

	if err := sweep(commits, repo.CommitPath); err != nil {
		return report, err
	}
	if err := sweep(trees, repo.TreePath); err != nil {
		return report, err
	}
	if err := sweep(blobs, repo.BlobPath); err != nil {
		return report, err
	}

	return report, nil
}
