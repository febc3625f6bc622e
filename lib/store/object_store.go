// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// shardedPath returns objects/<kind>/<2-hex>/<62-hex> for h.
func shardedPath(root string, h Hash) string {
	shard, rest := h.PathComponents()
	return filepath.Join(root, shard, rest)
}

// WriteObjectFile atomically stages r into final via a temp file in
// the same directory, then renames over it. Used by the transport
// package to place received tree/commit/blob objects directly at
// their already-computed content-addressed path, skipping the write
// if the destination already exists (objects are immutable once
// named, so an existing file with the same hash is the same bytes).
func WriteObjectFile(final string, r io.Reader) error {
	if _, err := os.Stat(final); err == nil {
		return nil
	}
	dir := filepath.Dir(final)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &PathError{Path: dir, Err: err}
	}
	tmp, err := os.CreateTemp(dir, ".zub-recv-*")
	if err != nil {
		return &PathError{Path: dir, Err: err}
	}
	tmpPath := tmp.Name()
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &PathError{Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &PathError{Path: tmpPath, Err: err}
	}
	if _, err := os.Stat(final); err == nil {
		os.Remove(tmpPath)
		return nil
	}
	if err := os.Rename(tmpPath, final); err != nil {
		os.Remove(tmpPath)
		return &PathError{Path: final, Err: err}
	}
	return nil
}

func (r *Repo) BlobPath(h Hash) string   { return shardedPath(r.blobsPath(), h) }
func (r *Repo) TreePath(h Hash) string   { return shardedPath(r.treesPath(), h) }
func (r *Repo) CommitPath(h Hash) string { return shardedPath(r.commitsPath(), h) }

// writeAtomic stages content into a temp file under tmp/, then
// renames it into place at final. If final already exists, the temp
// file is discarded instead (objects are content-addressed, so an
// existing file with the same name is byte-identical — this is the
// store's dedup path, not a race condition to avoid).
func (r *Repo) writeAtomic(final string, write func(*os.File) error) error {
	if _, err := os.Stat(final); err == nil {
		return nil
	}

	if err := os.MkdirAll(r.tmpPath(), 0o755); err != nil {
		return &PathError{Path: r.tmpPath(), Err: err}
	}
	tmpPath := filepath.Join(r.tmpPath(), uuid.New().String())
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return &PathError{Path: tmpPath, Err: err}
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &PathError{Path: tmpPath, Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(final), 0o755); err != nil {
		os.Remove(tmpPath)
		return &PathError{Path: filepath.Dir(final), Err: err}
	}
	if _, err := os.Stat(final); err == nil {
		os.Remove(tmpPath)
		return nil
	}
	if err := os.Rename(tmpPath, final); err != nil {
		os.Remove(tmpPath)
		return &PathError{Path: final, Err: err}
	}
	return nil
}

// WriteBlobRaw stores already-hashed blob content at h, with the
// on-disk file's POSIX metadata set to the outside-translated
// uid/gid/mode/xattrs so it can be hardlinked directly into a
// checkout. Blobs are stored uncompressed.
func (r *Repo) WriteBlobRaw(h Hash, content io.Reader, outsideUID, outsideGID, mode uint32, xattrs []Xattr) error {
	final := r.BlobPath(h)
	err := r.writeAtomic(final, func(f *os.File) error {
		_, err := io.Copy(f, content)
		return err
	})
	if err != nil {
		return err
	}
	return applyMetadata(final, outsideUID, outsideGID, mode, xattrs)
}

// ReadBlob opens the stored content for h for reading. Callers are
// responsible for closing it.
func (r *Repo) ReadBlob(h Hash) (*os.File, error) {
	f, err := os.Open(r.BlobPath(h))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &ObjectNotFoundError{Hash: h}
		}
		return nil, &PathError{Path: r.BlobPath(h), Err: err}
	}
	return f, nil
}

// BlobExists reports whether h names a stored blob.
func (r *Repo) BlobExists(h Hash) bool {
	_, err := os.Stat(r.BlobPath(h))
	return err == nil
}

// WriteTree encodes, compresses, hashes, and stores t, returning its
// address. Writing the same logical tree twice is a no-op the second
// time.
func (r *Repo) WriteTree(t Tree) (Hash, error) {
	sorted := sortTree(t)
	encoded, err := encodeTree(sorted)
	if err != nil {
		return Hash{}, err
	}
	h := ComputeCompressedHash(encoded)
	final := r.TreePath(h)
	err = r.writeAtomic(final, func(f *os.File) error {
		_, err := f.Write(encoded)
		return err
	})
	return h, err
}

// ReadTree loads and decodes the tree stored at h.
func (r *Repo) ReadTree(h Hash) (Tree, error) {
	data, err := os.ReadFile(r.TreePath(h))
	if err != nil {
		if os.IsNotExist(err) {
			return Tree{}, &ObjectNotFoundError{Hash: h}
		}
		return Tree{}, &PathError{Path: r.TreePath(h), Err: err}
	}
	return decodeTree(data)
}

// WriteCommit encodes, compresses, hashes, and stores c.
func (r *Repo) WriteCommit(c Commit) (Hash, error) {
	encoded, err := encodeCommit(c)
	if err != nil {
		return Hash{}, err
	}
	h := ComputeCompressedHash(encoded)
	final := r.CommitPath(h)
	err = r.writeAtomic(final, func(f *os.File) error {
		_, err := f.Write(encoded)
		return err
	})
	return h, err
}

// ReadCommit loads and decodes the commit stored at h.
func (r *Repo) ReadCommit(h Hash) (Commit, error) {
	data, err := os.ReadFile(r.CommitPath(h))
	if err != nil {
		if os.IsNotExist(err) {
			return Commit{}, &ObjectNotFoundError{Hash: h}
		}
		return Commit{}, &PathError{Path: r.CommitPath(h), Err: err}
	}
	return decodeCommit(data)
}

// CommitExists reports whether h names a stored commit.
func (r *Repo) CommitExists(h Hash) bool {
	_, err := os.Stat(r.CommitPath(h))
	return err == nil
}

// TreeExists reports whether h names a stored tree.
func (r *Repo) TreeExists(h Hash) bool {
	_, err := os.Stat(r.TreePath(h))
	return err == nil
}

// ReadBlobBytes reads a whole blob's content into memory. Convenience
// for small files (symlink targets, small regular files); large files
// should use ReadBlob and stream.
func (r *Repo) ReadBlobBytes(h Hash) ([]byte, error) {
	f, err := r.ReadBlob(h)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, f); err != nil {
		return nil, &PathError{Path: r.BlobPath(h), Err: err}
	}
	return buf.Bytes(), nil
}
