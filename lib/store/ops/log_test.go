// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ops

import (
	"path/filepath"
	"testing"

	"zub/lib/clock"
)

func TestLogFollowsFirstParentOnly(t *testing.T) {
	repo := newTestRepo(t)
	src := t.TempDir()

	writeTestFile(t, filepath.Join(src, "f"), "v1")
	first, err := CommitAndUpdateRef(repo, "main", src, CommitOptions{Author: "a", Message: "v1", Clock: clock.Real()})
	if err != nil {
		t.Fatalf("CommitAndUpdateRef: %v", err)
	}

	writeTestFile(t, filepath.Join(src, "f"), "v2")
	second, err := CommitAndUpdateRef(repo, "main", src, CommitOptions{Author: "a", Message: "v2", Clock: clock.Real()})
	if err != nil {
		t.Fatalf("CommitAndUpdateRef: %v", err)
	}

	writeTestFile(t, filepath.Join(src, "f"), "v3")
	third, err := CommitAndUpdateRef(repo, "main", src, CommitOptions{Author: "a", Message: "v3", Clock: clock.Real()})
	if err != nil {
		t.Fatalf("CommitAndUpdateRef: %v", err)
	}

	entries, err := Log(repo, third, 0)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	if entries[0].Hash != third || entries[1].Hash != second || entries[2].Hash != first {
		t.Errorf("entries in wrong order: %v, %v, %v", entries[0].Hash, entries[1].Hash, entries[2].Hash)
	}
}

func TestLogRespectsMaxCount(t *testing.T) {
	repo := newTestRepo(t)
	src := t.TempDir()

	writeTestFile(t, filepath.Join(src, "f"), "v1")
	_, err := CommitAndUpdateRef(repo, "main", src, CommitOptions{Author: "a", Message: "v1", Clock: clock.Real()})
	if err != nil {
		t.Fatalf("CommitAndUpdateRef: %v", err)
	}
	writeTestFile(t, filepath.Join(src, "f"), "v2")
	head, err := CommitAndUpdateRef(repo, "main", src, CommitOptions{Author: "a", Message: "v2", Clock: clock.Real()})
	if err != nil {
		t.Fatalf("CommitAndUpdateRef: %v", err)
	}

	entries, err := Log(repo, head, 1)
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Hash != head {
		t.Errorf("entries[0].Hash = %v, want %v", entries[0].Hash, head)
	}
}
