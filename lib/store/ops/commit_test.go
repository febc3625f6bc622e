// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ops

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"zub/lib/clock"
	"zub/lib/store"
)

func newTestRepo(t *testing.T) *store.Repo {
	t.Helper()
	dir := t.TempDir()
	repo, err := store.Init(dir)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return repo
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %v", path, err)
	}
}

func TestCommitIsDeterministic(t *testing.T) {
	repo := newTestRepo(t)

	src := t.TempDir()
	writeTestFile(t, filepath.Join(src, "a.txt"), "alpha")
	if err := os.Mkdir(filepath.Join(src, "sub"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	writeTestFile(t, filepath.Join(src, "sub", "b.txt"), "beta")

	fixed := clock.Fake(time.Unix(1700000000, 0))
	h1, err := Commit(repo, src, CommitOptions{Author: "tester", Message: "one", Clock: fixed})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	h2, err := Commit(repo, src, CommitOptions{Author: "tester", Message: "one", Clock: fixed})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if h1 != h2 {
		t.Error("committing identical content with identical metadata should produce the same commit hash")
	}

	commit, err := repo.ReadCommit(h1)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	entries, err := LsTreeRecursive(repo, commit.Tree, "")
	if err != nil {
		t.Fatalf("LsTreeRecursive: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3 (a.txt, sub, sub/b.txt)", len(entries))
	}
}

func TestCommitDetectsHardlinks(t *testing.T) {
	repo := newTestRepo(t)
	src := t.TempDir()

	writeTestFile(t, filepath.Join(src, "first"), "shared content")
	if err := os.Link(filepath.Join(src, "first"), filepath.Join(src, "second")); err != nil {
		t.Fatalf("Link: %v", err)
	}

	h, err := Commit(repo, src, CommitOptions{Author: "tester", Message: "m", Clock: clock.Real()})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	commit, err := repo.ReadCommit(h)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	entries, err := LsTree(repo, commit.Tree, "")
	if err != nil {
		t.Fatalf("LsTree: %v", err)
	}

	var regularCount, hardlinkCount int
	for _, e := range entries {
		switch e.Kind.Type {
		case store.KindRegular:
			regularCount++
		case store.KindHardlink:
			hardlinkCount++
		}
	}
	if regularCount != 1 || hardlinkCount != 1 {
		t.Errorf("got %d regular / %d hardlink entries, want 1/1", regularCount, hardlinkCount)
	}
}

func TestCommitTranslatesOutsideIDsToInside(t *testing.T) {
	repo := newTestRepo(t)

	uid := uint32(os.Getuid())
	gid := uint32(os.Getgid())
	repo.Config.Namespace = store.NsConfig{
		UIDMap: []store.MapEntry{store.NewMapEntry(1000, uid, 1)},
		GIDMap: []store.MapEntry{store.NewMapEntry(2000, gid, 1)},
	}

	src := t.TempDir()
	if err := os.Mkdir(filepath.Join(src, "sub"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	h, err := Commit(repo, src, CommitOptions{Author: "a", Message: "m", Clock: clock.Real()})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	commit, err := repo.ReadCommit(h)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	entries, err := LsTree(repo, commit.Tree, "")
	if err != nil {
		t.Fatalf("LsTree: %v", err)
	}
	if len(entries) != 1 || entries[0].Kind.Type != store.KindDirectory {
		t.Fatalf("got %v, want a single directory entry", entries)
	}
	if entries[0].Kind.UID != 1000 || entries[0].Kind.GID != 2000 {
		t.Errorf("stored UID/GID = %d/%d, want inside ids 1000/2000 (outside %d/%d translated)",
			entries[0].Kind.UID, entries[0].Kind.GID, uid, gid)
	}
}

func TestCommitRejectsUnmappedOutsideUID(t *testing.T) {
	repo := newTestRepo(t)

	repo.Config.Namespace = store.NsConfig{
		UIDMap: []store.MapEntry{store.NewMapEntry(1000, uint32(os.Getuid())+1, 1)},
		GIDMap: []store.MapEntry{store.NewMapEntry(2000, uint32(os.Getgid()), 1)},
	}

	src := t.TempDir()
	if err := os.Mkdir(filepath.Join(src, "sub"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	_, err := Commit(repo, src, CommitOptions{Author: "a", Message: "m", Clock: clock.Real()})
	if err == nil {
		t.Fatal("expected Commit to fail when the real uid is not covered by the namespace map")
	}
	if _, ok := err.(*store.UnmappedUIDError); !ok {
		t.Errorf("expected *store.UnmappedUIDError, got %T", err)
	}
}

func TestCommitAndUpdateRefChainsParents(t *testing.T) {
	repo := newTestRepo(t)
	src := t.TempDir()
	writeTestFile(t, filepath.Join(src, "f"), "v1")

	first, err := CommitAndUpdateRef(repo, "main", src, CommitOptions{Author: "a", Message: "v1", Clock: clock.Real()})
	if err != nil {
		t.Fatalf("CommitAndUpdateRef (first): %v", err)
	}

	writeTestFile(t, filepath.Join(src, "f"), "v2")
	second, err := CommitAndUpdateRef(repo, "main", src, CommitOptions{Author: "a", Message: "v2", Clock: clock.Real()})
	if err != nil {
		t.Fatalf("CommitAndUpdateRef (second): %v", err)
	}

	commit, err := repo.ReadCommit(second)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if len(commit.Parents) != 1 || commit.Parents[0] != first {
		t.Errorf("second commit's parent = %v, want [%v]", commit.Parents, first)
	}

	resolved, err := repo.ResolveRef("main")
	if err != nil {
		t.Fatalf("ResolveRef: %v", err)
	}
	if resolved != second {
		t.Error("ref should point at the second commit")
	}
}
