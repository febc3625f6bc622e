// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"strings"
	"testing"
)

func newObjectTestRepo(t *testing.T) *Repo {
	t.Helper()
	repo, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return repo
}

func TestWriteBlobRawThenReadRoundtrips(t *testing.T) {
	repo := newObjectTestRepo(t)

	content := "blob content"
	h, err := ComputeBlobHash(1000, 1000, 0o644, nil, strings.NewReader(content))
	if err != nil {
		t.Fatalf("ComputeBlobHash: %v", err)
	}

	if repo.BlobExists(h) {
		t.Fatal("blob should not exist before writing")
	}
	if err := repo.WriteBlobRaw(h, strings.NewReader(content), 1000, 1000, 0o644, nil); err != nil {
		t.Fatalf("WriteBlobRaw: %v", err)
	}
	if !repo.BlobExists(h) {
		t.Fatal("blob should exist after writing")
	}

	data, err := repo.ReadBlobBytes(h)
	if err != nil {
		t.Fatalf("ReadBlobBytes: %v", err)
	}
	if string(data) != content {
		t.Errorf("content = %q, want %q", data, content)
	}
}

func TestWriteBlobRawIsIdempotent(t *testing.T) {
	repo := newObjectTestRepo(t)
	content := "idempotent content"
	h, err := ComputeBlobHash(1000, 1000, 0o644, nil, strings.NewReader(content))
	if err != nil {
		t.Fatalf("ComputeBlobHash: %v", err)
	}

	if err := repo.WriteBlobRaw(h, strings.NewReader(content), 1000, 1000, 0o644, nil); err != nil {
		t.Fatalf("WriteBlobRaw (first): %v", err)
	}
	if err := repo.WriteBlobRaw(h, strings.NewReader(content), 1000, 1000, 0o644, nil); err != nil {
		t.Fatalf("WriteBlobRaw (second): %v", err)
	}
}

func TestReadBlobMissingReturnsObjectNotFound(t *testing.T) {
	repo := newObjectTestRepo(t)
	_, err := repo.ReadBlob(HashBytes([]byte("never written")))
	if err == nil {
		t.Fatal("expected an error reading a blob that was never written")
	}
	if _, ok := err.(*ObjectNotFoundError); !ok {
		t.Errorf("expected *ObjectNotFoundError, got %T", err)
	}
}

func TestWriteTreeThenReadRoundtrips(t *testing.T) {
	repo := newObjectTestRepo(t)
	tree := Tree{Entries: []TreeEntry{
		{Name: "a.txt", Kind: EntryKind{Type: KindRegular, Hash: HashBytes([]byte("a")), Size: 1}},
	}}

	h, err := repo.WriteTree(tree)
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	if !repo.TreeExists(h) {
		t.Fatal("tree should exist after writing")
	}

	read, err := repo.ReadTree(h)
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}
	if len(read.Entries) != 1 || read.Entries[0].Name != "a.txt" {
		t.Errorf("read tree = %+v, want one entry named a.txt", read)
	}
}

func TestWriteTreeIsContentAddressed(t *testing.T) {
	repo := newObjectTestRepo(t)
	tree := Tree{Entries: []TreeEntry{
		{Name: "a.txt", Kind: EntryKind{Type: KindRegular, Hash: HashBytes([]byte("a")), Size: 1}},
	}}

	h1, err := repo.WriteTree(tree)
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	h2, err := repo.WriteTree(tree)
	if err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	if h1 != h2 {
		t.Error("writing the same logical tree twice should produce the same hash")
	}
}

func TestWriteCommitThenReadRoundtrips(t *testing.T) {
	repo := newObjectTestRepo(t)
	commit := Commit{
		Tree:      HashBytes([]byte("tree")),
		Author:    "tester",
		Timestamp: 1700000000,
		Message:   "a message",
	}

	h, err := repo.WriteCommit(commit)
	if err != nil {
		t.Fatalf("WriteCommit: %v", err)
	}
	if !repo.CommitExists(h) {
		t.Fatal("commit should exist after writing")
	}

	read, err := repo.ReadCommit(h)
	if err != nil {
		t.Fatalf("ReadCommit: %v", err)
	}
	if read.Author != "tester" || read.Message != "a message" {
		t.Errorf("read commit = %+v", read)
	}
}
