// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"crypto/sha256"
	"encoding/binary"
	"hash"
	"io"
	"sort"
)

// symlinkMode is the fixed sentinel mode used in place of a real mode
// when hashing a symlink, since symlinks have no meaningful mode of
// their own on Linux.
const symlinkMode uint32 = 0o120777

// blobHeader writes the canonical header bytes that precede content
// in a blob hash: uid, gid, mode (4 bytes little-endian each), xattr
// count, then each xattr's name length, name, value length, value —
// xattrs sorted ascending by name. This exact byte layout is the
// object model's hash input; changing it changes every hash in a
// repository.
func blobHeader(w io.Writer, uid, gid, mode uint32, xattrs []Xattr) error {
	sorted := append([]Xattr{}, xattrs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var buf [4]byte
	writeU32 := func(v uint32) error {
		binary.LittleEndian.PutUint32(buf[:], v)
		_, err := w.Write(buf[:])
		return err
	}

	if err := writeU32(uid); err != nil {
		return err
	}
	if err := writeU32(gid); err != nil {
		return err
	}
	if err := writeU32(mode); err != nil {
		return err
	}
	if err := writeU32(uint32(len(sorted))); err != nil {
		return err
	}
	for _, x := range sorted {
		if err := writeU32(uint32(len(x.Name))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, x.Name); err != nil {
			return err
		}
		if err := writeU32(uint32(len(x.Value))); err != nil {
			return err
		}
		if _, err := w.Write(x.Value); err != nil {
			return err
		}
	}
	return nil
}

// ComputeBlobHash hashes a regular file's content under its inside
// uid/gid/mode/xattrs, matching the header layout blobHeader writes.
func ComputeBlobHash(uid, gid, mode uint32, xattrs []Xattr, content io.Reader) (Hash, error) {
	h := sha256.New()
	if err := blobHeader(h, uid, gid, mode, xattrs); err != nil {
		return Hash{}, err
	}
	if _, err := io.Copy(h, content); err != nil {
		return Hash{}, err
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	return out, nil
}

// ComputeSymlinkHash hashes a symlink the same way as a regular file,
// using symlinkMode as the fixed mode and the link target string as
// the content.
func ComputeSymlinkHash(uid, gid uint32, xattrs []Xattr, target string) (Hash, error) {
	return ComputeBlobHash(uid, gid, symlinkMode, xattrs, stringReader(target))
}

// ComputeCompressedHash hashes the already-compressed bytes of an
// encoded tree or commit. Unlike blobs, trees and commits are
// addressed by the hash of their compressed form, not their raw
// encoding.
func ComputeCompressedHash(compressed []byte) Hash {
	return HashBytes(compressed)
}

func stringReader(s string) io.Reader { return &stringReaderImpl{s: s} }

type stringReaderImpl struct {
	s   string
	pos int
}

func (r *stringReaderImpl) Read(p []byte) (int, error) {
	if r.pos >= len(r.s) {
		return 0, io.EOF
	}
	n := copy(p, r.s[r.pos:])
	r.pos += n
	return n, nil
}

// BlobHasher computes a blob hash incrementally: construct with the
// header fields, feed content via Write, then call Sum. Lets the
// object store hash a file while streaming it to disk without
// buffering the whole content twice.
type BlobHasher struct {
	h hash.Hash
}

// NewBlobHasher starts a streaming blob hash, writing the canonical
// header immediately.
func NewBlobHasher(uid, gid, mode uint32, xattrs []Xattr) (*BlobHasher, error) {
	h := sha256.New()
	if err := blobHeader(h, uid, gid, mode, xattrs); err != nil {
		return nil, err
	}
	return &BlobHasher{h: h}, nil
}

// Write feeds a chunk of content into the hash.
func (b *BlobHasher) Write(p []byte) (int, error) { return b.h.Write(p) }

// Sum finalizes the hash.
func (b *BlobHasher) Sum() Hash {
	var out Hash
	copy(out[:], b.h.Sum(nil))
	return out
}
