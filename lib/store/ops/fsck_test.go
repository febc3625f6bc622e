// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ops

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFsckCleanRepoReportsNothing(t *testing.T) {
	repo := newTestRepo(t)
	src := t.TempDir()
	writeTestFile(t, filepath.Join(src, "f"), "content")

	_, err := CommitAndUpdateRef(repo, "main", src, CommitOptions{Author: "a", Message: "m", Clock: nil})
	if err != nil {
		t.Fatalf("CommitAndUpdateRef: %v", err)
	}

	report, err := Fsck(repo)
	if err != nil {
		t.Fatalf("Fsck: %v", err)
	}
	if len(report.Corrupt) != 0 {
		t.Errorf("got %d corrupt objects, want 0", len(report.Corrupt))
	}
	if len(report.Dangling) != 0 {
		t.Errorf("got %d dangling objects, want 0", len(report.Dangling))
	}
}

func TestFsckDetectsCorruption(t *testing.T) {
	repo := newTestRepo(t)
	src := t.TempDir()
	writeTestFile(t, filepath.Join(src, "f"), "content")

	h, err := CommitAndUpdateRef(repo, "main", src, CommitOptions{Author: "a", Message: "m", Clock: nil})
	if err != nil {
		t.Fatalf("CommitAndUpdateRef: %v", err)
	}
	commit, err := repo.ReadCommit(h)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	entries, err := LsTree(repo, commit.Tree, "")
	if err != nil {
		t.Fatalf("LsTree: %v", err)
	}
	blobHash := entries[0].Kind.Hash

	if err := os.WriteFile(repo.BlobPath(blobHash), []byte("tampered"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	report, err := Fsck(repo)
	if err != nil {
		t.Fatalf("Fsck: %v", err)
	}
	found := false
	for _, h := range report.Corrupt {
		if h == blobHash {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %v to be reported corrupt, got %v", blobHash, report.Corrupt)
	}
}

func TestFsckDetectsDanglingObjects(t *testing.T) {
	repo := newTestRepo(t)
	src := t.TempDir()
	writeTestFile(t, filepath.Join(src, "f"), "orphaned content")

	// Commit but never update a ref, so the result is reachable from
	// nothing.
	h, err := Commit(repo, src, CommitOptions{Author: "a", Message: "m", Clock: nil})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	report, err := Fsck(repo)
	if err != nil {
		t.Fatalf("Fsck: %v", err)
	}
	found := false
	for _, d := range report.Dangling {
		if d == h {
			found = true
		}
	}
	if !found {
		t.Errorf("expected commit %v with no ref to be reported dangling", h)
	}
}
