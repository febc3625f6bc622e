// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"os"
	"path/filepath"
	"testing"

	"zub/lib/clock"
	"zub/lib/store"
	"zub/lib/store/ops"
)

func initTestRepo(t *testing.T) *store.Repo {
	t.Helper()
	repo, err := store.Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return repo
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestLocalPushTransfersAndUpdatesRef(t *testing.T) {
	source := initTestRepo(t)
	dest := initTestRepo(t)

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "f.txt"), "pushed content")
	head, err := ops.CommitAndUpdateRef(source, "main", src, ops.CommitOptions{
		Author: "a", Message: "m", Clock: clock.Real(),
	})
	if err != nil {
		t.Fatalf("CommitAndUpdateRef: %v", err)
	}

	report, err := LocalPush(source, dest, "main", PushOptions{})
	if err != nil {
		t.Fatalf("LocalPush: %v", err)
	}
	if report.Transferred == 0 {
		t.Error("expected at least one object to be transferred")
	}

	destHead, err := dest.ResolveRef("main")
	if err != nil {
		t.Fatalf("ResolveRef on dest: %v", err)
	}
	if destHead != head {
		t.Errorf("dest main = %v, want %v", destHead, head)
	}

	commit, err := dest.ReadCommit(destHead)
	if err != nil {
		t.Fatalf("ReadCommit on dest: %v", err)
	}
	entries, err := ops.LsTree(dest, commit.Tree, "")
	if err != nil {
		t.Fatalf("LsTree on dest: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "f.txt" {
		t.Fatalf("dest tree entries = %+v, want a single f.txt entry", entries)
	}
}

func TestLocalPushRejectsNonFastForwardWithoutForce(t *testing.T) {
	source := initTestRepo(t)
	dest := initTestRepo(t)

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "f.txt"), "v1")
	_, err := ops.CommitAndUpdateRef(source, "main", src, ops.CommitOptions{Author: "a", Message: "v1", Clock: clock.Real()})
	if err != nil {
		t.Fatalf("CommitAndUpdateRef: %v", err)
	}
	if _, err := LocalPush(source, dest, "main", PushOptions{}); err != nil {
		t.Fatalf("initial LocalPush: %v", err)
	}

	// Advance dest independently so source's next push is no longer a
	// fast-forward from dest's perspective.
	destSrc := t.TempDir()
	writeFile(t, filepath.Join(destSrc, "g.txt"), "dest-only")
	if _, err := ops.CommitAndUpdateRef(dest, "main", destSrc, ops.CommitOptions{Author: "a", Message: "dest", Clock: clock.Real()}); err != nil {
		t.Fatalf("CommitAndUpdateRef on dest: %v", err)
	}

	writeFile(t, filepath.Join(src, "f.txt"), "v2")
	if _, err := ops.CommitAndUpdateRef(source, "main", src, ops.CommitOptions{Author: "a", Message: "v2", Clock: clock.Real()}); err != nil {
		t.Fatalf("CommitAndUpdateRef on source: %v", err)
	}

	_, err = LocalPush(source, dest, "main", PushOptions{})
	if err == nil {
		t.Fatal("expected a non-fast-forward push to be rejected")
	}
}

func TestLocalPullTransfersObjects(t *testing.T) {
	source := initTestRepo(t)
	dest := initTestRepo(t)

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "f.txt"), "pulled content")
	head, err := ops.CommitAndUpdateRef(source, "main", src, ops.CommitOptions{Author: "a", Message: "m", Clock: clock.Real()})
	if err != nil {
		t.Fatalf("CommitAndUpdateRef: %v", err)
	}

	report, err := LocalPull(dest, source, "main", PullOptions{})
	if err != nil {
		t.Fatalf("LocalPull: %v", err)
	}
	if report.Transferred == 0 {
		t.Error("expected at least one object to be transferred")
	}

	destHead, err := dest.ResolveRef("main")
	if err != nil {
		t.Fatalf("ResolveRef on dest: %v", err)
	}
	if destHead != head {
		t.Errorf("dest main = %v, want %v", destHead, head)
	}
}

func TestLocalPullFetchOnlyLeavesRefUnmoved(t *testing.T) {
	source := initTestRepo(t)
	dest := initTestRepo(t)

	src := t.TempDir()
	writeFile(t, filepath.Join(src, "f.txt"), "content")
	head, err := ops.CommitAndUpdateRef(source, "main", src, ops.CommitOptions{Author: "a", Message: "m", Clock: clock.Real()})
	if err != nil {
		t.Fatalf("CommitAndUpdateRef: %v", err)
	}

	if _, err := LocalPull(dest, source, "main", PullOptions{FetchOnly: true}); err != nil {
		t.Fatalf("LocalPull: %v", err)
	}

	if _, err := dest.ResolveRef("main"); err == nil {
		t.Fatal("FetchOnly pull should not move the local ref")
	}

	// But the commit object itself should now be present locally.
	if _, err := dest.ReadCommit(head); err != nil {
		t.Errorf("expected fetched commit to be readable: %v", err)
	}
}
