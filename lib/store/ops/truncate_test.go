// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ops

import (
	"path/filepath"
	"testing"
)

func TestTruncateMovesRefToAncestor(t *testing.T) {
	repo := newTestRepo(t)
	src := t.TempDir()

	writeTestFile(t, filepath.Join(src, "f"), "v1")
	first, err := CommitAndUpdateRef(repo, "main", src, CommitOptions{Author: "a", Message: "v1", Clock: nil})
	if err != nil {
		t.Fatalf("CommitAndUpdateRef: %v", err)
	}

	writeTestFile(t, filepath.Join(src, "f"), "v2")
	if _, err := CommitAndUpdateRef(repo, "main", src, CommitOptions{Author: "a", Message: "v2", Clock: nil}); err != nil {
		t.Fatalf("CommitAndUpdateRef: %v", err)
	}

	writeTestFile(t, filepath.Join(src, "f"), "v3")
	if _, err := CommitAndUpdateRef(repo, "main", src, CommitOptions{Author: "a", Message: "v3", Clock: nil}); err != nil {
		t.Fatalf("CommitAndUpdateRef: %v", err)
	}

	if err := Truncate(repo, "main", first); err != nil {
		t.Fatalf("Truncate: %v", err)
	}

	resolved, err := repo.ResolveRef("main")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if resolved != first {
		t.Errorf("main = %v, want %v", resolved, first)
	}
}

func TestTruncateRejectsNonAncestor(t *testing.T) {
	repo := newTestRepo(t)

	srcMain := t.TempDir()
	writeTestFile(t, filepath.Join(srcMain, "f"), "main content")
	if _, err := CommitAndUpdateRef(repo, "main", srcMain, CommitOptions{Author: "a", Message: "main", Clock: nil}); err != nil {
		t.Fatalf("CommitAndUpdateRef: %v", err)
	}

	srcOther := t.TempDir()
	writeTestFile(t, filepath.Join(srcOther, "g"), "unrelated content")
	unrelated, err := Commit(repo, srcOther, CommitOptions{Author: "a", Message: "unrelated", Clock: nil})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := Truncate(repo, "main", unrelated); err == nil {
		t.Fatal("expected an error truncating to a commit that is not an ancestor")
	}
}
