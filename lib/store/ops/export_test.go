// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ops

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestExportWritesTarMembers(t *testing.T) {
	repo := newTestRepo(t)
	src := t.TempDir()

	writeTestFile(t, filepath.Join(src, "root.txt"), "top level")
	if err := os.Mkdir(filepath.Join(src, "dir"), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	writeTestFile(t, filepath.Join(src, "dir", "nested.txt"), "nested")
	if err := os.Symlink("root.txt", filepath.Join(src, "link")); err != nil {
		t.Fatalf("Symlink: %v", err)
	}

	treeHash := commitDirHash(t, repo, src)

	var buf bytes.Buffer
	if err := Export(repo, treeHash, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	tr := tar.NewReader(&buf)
	found := map[string]*tar.Header{}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("tar.Next: %v", err)
		}
		data, _ := io.ReadAll(tr)
		found[hdr.Name] = hdr
		if hdr.Name == "root.txt" && string(data) != "top level" {
			t.Errorf("root.txt content = %q, want %q", data, "top level")
		}
	}

	if _, ok := found["root.txt"]; !ok {
		t.Error("expected root.txt in the archive")
	}
	if hdr, ok := found["dir/"]; !ok || hdr.Typeflag != tar.TypeDir {
		t.Error("expected dir/ directory entry in the archive")
	}
	if _, ok := found["dir/nested.txt"]; !ok {
		t.Error("expected dir/nested.txt in the archive")
	}
	if hdr, ok := found["link"]; !ok || hdr.Typeflag != tar.TypeSymlink || hdr.Linkname != "root.txt" {
		t.Errorf("expected a symlink member for link -> root.txt, got %+v", hdr)
	}
}

func TestExportWritesHardlinksAsTarLinks(t *testing.T) {
	repo := newTestRepo(t)
	src := t.TempDir()

	writeTestFile(t, filepath.Join(src, "first"), "shared")
	if err := os.Link(filepath.Join(src, "first"), filepath.Join(src, "second")); err != nil {
		t.Fatalf("Link: %v", err)
	}

	treeHash := commitDirHash(t, repo, src)

	var buf bytes.Buffer
	if err := Export(repo, treeHash, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}

	tr := tar.NewReader(&buf)
	var secondHdr *tar.Header
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("tar.Next: %v", err)
		}
		if hdr.Name == "second" {
			h := *hdr
			secondHdr = &h
		}
	}
	if secondHdr == nil {
		t.Fatal("expected a tar member named second")
	}
	if secondHdr.Typeflag != tar.TypeLink || secondHdr.Linkname != "first" {
		t.Errorf("second = %+v, want TypeLink pointing at first", secondHdr)
	}
}
