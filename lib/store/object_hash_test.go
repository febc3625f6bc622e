// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"strings"
	"testing"
)

func TestComputeBlobHashDeterministic(t *testing.T) {
	h1, err := ComputeBlobHash(1000, 1000, 0o644, nil, strings.NewReader("content"))
	if err != nil {
		t.Fatalf("ComputeBlobHash: %v", err)
	}
	h2, err := ComputeBlobHash(1000, 1000, 0o644, nil, strings.NewReader("content"))
	if err != nil {
		t.Fatalf("ComputeBlobHash: %v", err)
	}
	if h1 != h2 {
		t.Error("identical inputs should hash identically")
	}
}

func TestComputeBlobHashSensitiveToUID(t *testing.T) {
	a, _ := ComputeBlobHash(1000, 1000, 0o644, nil, strings.NewReader("content"))
	b, _ := ComputeBlobHash(1001, 1000, 0o644, nil, strings.NewReader("content"))
	if a == b {
		t.Error("different uid should produce a different hash")
	}
}

func TestComputeBlobHashSensitiveToGID(t *testing.T) {
	a, _ := ComputeBlobHash(1000, 1000, 0o644, nil, strings.NewReader("content"))
	b, _ := ComputeBlobHash(1000, 1001, 0o644, nil, strings.NewReader("content"))
	if a == b {
		t.Error("different gid should produce a different hash")
	}
}

func TestComputeBlobHashSensitiveToMode(t *testing.T) {
	a, _ := ComputeBlobHash(1000, 1000, 0o644, nil, strings.NewReader("content"))
	b, _ := ComputeBlobHash(1000, 1000, 0o755, nil, strings.NewReader("content"))
	if a == b {
		t.Error("different mode should produce a different hash")
	}
}

func TestComputeBlobHashSensitiveToContent(t *testing.T) {
	a, _ := ComputeBlobHash(1000, 1000, 0o644, nil, strings.NewReader("content a"))
	b, _ := ComputeBlobHash(1000, 1000, 0o644, nil, strings.NewReader("content b"))
	if a == b {
		t.Error("different content should produce a different hash")
	}
}

func TestComputeBlobHashSensitiveToXattrs(t *testing.T) {
	withXattr, _ := ComputeBlobHash(1000, 1000, 0o644, []Xattr{{Name: "user.tag", Value: []byte("v")}}, strings.NewReader("content"))
	without, _ := ComputeBlobHash(1000, 1000, 0o644, nil, strings.NewReader("content"))
	if withXattr == without {
		t.Error("presence of an xattr should change the hash")
	}
}

func TestComputeBlobHashXattrOrderIndependent(t *testing.T) {
	a, _ := ComputeBlobHash(1000, 1000, 0o644, []Xattr{
		{Name: "user.b", Value: []byte("2")},
		{Name: "user.a", Value: []byte("1")},
	}, strings.NewReader("content"))
	b, _ := ComputeBlobHash(1000, 1000, 0o644, []Xattr{
		{Name: "user.a", Value: []byte("1")},
		{Name: "user.b", Value: []byte("2")},
	}, strings.NewReader("content"))
	if a != b {
		t.Error("xattr hashing should sort by name, independent of input order")
	}
}

func TestComputeSymlinkHashUsesFixedMode(t *testing.T) {
	symlinkHash, err := ComputeSymlinkHash(1000, 1000, nil, "/some/target")
	if err != nil {
		t.Fatalf("ComputeSymlinkHash: %v", err)
	}
	blobHash, err := ComputeBlobHash(1000, 1000, symlinkMode, nil, strings.NewReader("/some/target"))
	if err != nil {
		t.Fatalf("ComputeBlobHash: %v", err)
	}
	if symlinkHash != blobHash {
		t.Error("symlink hash should equal a blob hash using the symlink sentinel mode and target as content")
	}
}

func TestBlobHasherMatchesDirectComputation(t *testing.T) {
	content := bytes.Repeat([]byte("streamed-chunk"), 100)

	direct, err := ComputeBlobHash(1000, 1000, 0o644, nil, bytes.NewReader(content))
	if err != nil {
		t.Fatalf("ComputeBlobHash: %v", err)
	}

	hasher, err := NewBlobHasher(1000, 1000, 0o644, nil)
	if err != nil {
		t.Fatalf("NewBlobHasher: %v", err)
	}
	// Feed the content in several small writes to exercise the
	// streaming path the way a large-file commit would.
	for i := 0; i < len(content); i += 17 {
		end := i + 17
		if end > len(content) {
			end = len(content)
		}
		if _, err := hasher.Write(content[i:end]); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	streamed := hasher.Sum()

	if direct != streamed {
		t.Error("streaming hash should equal the direct computation over the same content")
	}
}

func TestComputeCompressedHashIsPlainSHA256(t *testing.T) {
	data := []byte("already-compressed-bytes")
	if ComputeCompressedHash(data) != HashBytes(data) {
		t.Error("ComputeCompressedHash should hash the bytes directly with no extra framing")
	}
}
