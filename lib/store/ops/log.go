// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ops

import "zub/lib/store"

// LogEntry is one commit surfaced by Log, paired with its hash.
type LogEntry struct {
	Hash   store.Hash
	Commit store.Commit
}

// Log starts from startHash and follows parents[0] (the leftmost,
// first parent) emitting entries until a commit has no parent or
// maxCount entries have been emitted. maxCount of 0 means unlimited.
// This is deliberately first-parent-only, not a full multi-parent
// traversal: merge commits' non-first parents do not appear.
func Log(repo *store.Repo, startHash store.Hash, maxCount int) ([]LogEntry, error) {
	var entries []LogEntry
	current := startHash
	for {
		if maxCount > 0 && len(entries) >= maxCount {
			break
		}
		commit, err := repo.ReadCommit(current)
		if err != nil {
			return nil, err
		}
		entries = append(entries, LogEntry{Hash: current, Commit: commit})
		if len(commit.Parents) == 0 {
			break
		}
		current = commit.Parents[0]
	}
	return entries, nil
}
