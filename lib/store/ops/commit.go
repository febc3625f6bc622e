// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ops implements the repository's higher-level pipelines —
// commit, checkout, diff, log, union, fsck/gc — built on top of the
// object store, ref store, and filesystem adapter in the parent
// package.
package ops

import (
	"io"
	"os"
	"path/filepath"

	"zub/lib/clock"
	"zub/lib/store"
)

// hardlinkKey identifies a filesystem entry for hardlink-group
// tracking within a single commit.
type hardlinkKey struct {
	dev uint64
	ino uint64
}

// CommitOptions configures one invocation of Commit.
type CommitOptions struct {
	Author  string
	Message string
	Parents []store.Hash
	Clock   clock.Clock
}

// Commit walks sourcePath depth-first, post-order, hashing and
// storing every file as a blob and every directory as a tree, then
// writes a commit object over the root tree and returns its hash.
// Regular files sharing a (dev, ino) pair within the walk are stored
// once and recorded as Hardlink entries thereafter. Re-committing
// identical content is idempotent: the same input tree always
// produces the same tree hash.
func Commit(repo *store.Repo, sourcePath string, opts CommitOptions) (store.Hash, error) {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}

	seen := make(map[hardlinkKey]string) // dev/ino -> path relative to sourcePath, first one committed

	treeHash, err := commitDir(repo, sourcePath, "", seen, repo.Config.Namespace)
	if err != nil {
		return store.Hash{}, err
	}

	commit := store.Commit{
		Tree:      treeHash,
		Parents:   opts.Parents,
		Author:    opts.Author,
		Timestamp: opts.Clock.Now().Unix(),
		Message:   opts.Message,
	}
	return repo.WriteCommit(commit)
}

// CommitAndUpdateRef commits sourcePath with parent set to ref's
// current commit (if any), then points ref at the new commit. Must
// be called while holding the repository lock. If the new commit's
// tree is identical to the parent's, the ref write still happens but
// points at a (possibly) new commit object recording the updated
// author/timestamp/message — callers that want true no-ops when
// nothing changed should compare tree hashes themselves first.
func CommitAndUpdateRef(repo *store.Repo, ref, sourcePath string, opts CommitOptions) (store.Hash, error) {
	if parent, err := repo.ResolveRef(ref); err == nil {
		opts.Parents = append([]store.Hash{parent}, opts.Parents...)
	}
	commitHash, err := Commit(repo, sourcePath, opts)
	if err != nil {
		return store.Hash{}, err
	}
	if err := repo.WriteRef(ref, commitHash); err != nil {
		return store.Hash{}, err
	}
	return commitHash, nil
}

// commitDir hashes one directory's immediate children, recursing into
// subdirectories first (post-order), and returns the resulting tree's
// hash. Every stored uid/gid is translated from the on-disk (outside)
// id to the repository-logical (inside) id via ns before it is written
// into a tree entry or blob header, per the data model's invariant
// that stored ids are always inside ids.
func commitDir(repo *store.Repo, root, relDir string, seen map[hardlinkKey]string, ns store.NsConfig) (store.Hash, error) {
	absDir := filepath.Join(root, relDir)
	entries, err := os.ReadDir(absDir)
	if err != nil {
		return store.Hash{}, &store.PathError{Path: absDir, Err: err}
	}

	var tree store.Tree
	for _, entry := range entries {
		name := entry.Name()
		relPath := filepath.Join(relDir, name)
		absPath := filepath.Join(root, relPath)

		meta, err := store.ReadFileMetadata(absPath)
		if err != nil {
			return store.Hash{}, err
		}

		var kind store.EntryKind
		switch meta.Type {
		case store.FileDirectory:
			subHash, err := commitDir(repo, root, relPath, seen, ns)
			if err != nil {
				return store.Hash{}, err
			}
			xattrs, err := store.ReadXattrs(absPath)
			if err != nil {
				return store.Hash{}, err
			}
			insideUID, insideGID, err := toInsideIDs(ns, meta.UID, meta.GID)
			if err != nil {
				return store.Hash{}, err
			}
			kind = store.EntryKind{
				Type: store.KindDirectory, Hash: subHash,
				UID: insideUID, GID: insideGID, Mode: meta.Mode, Xattrs: xattrs,
			}

		case store.FileRegular:
			key := hardlinkKey{dev: meta.Dev, ino: meta.Ino}
			if meta.CouldBeHardlink() {
				if target, ok := seen[key]; ok {
					kind = store.EntryKind{Type: store.KindHardlink, TargetPath: target}
					tree.Entries = append(tree.Entries, store.TreeEntry{Name: name, Kind: kind})
					continue
				}
				seen[key] = relPath
			}

			blobHash, size, sparse, err := commitRegularFile(repo, absPath, meta, ns)
			if err != nil {
				return store.Hash{}, err
			}
			kind = store.EntryKind{Type: store.KindRegular, Hash: blobHash, Size: size, SparseMap: sparse}

		case store.FileSymlink:
			target, err := store.ReadSymlinkTarget(absPath)
			if err != nil {
				return store.Hash{}, err
			}
			xattrs, err := store.ReadXattrs(absPath)
			if err != nil {
				return store.Hash{}, err
			}
			insideUID, insideGID, err := toInsideIDs(ns, meta.UID, meta.GID)
			if err != nil {
				return store.Hash{}, err
			}
			blobHash, err := store.ComputeSymlinkHash(insideUID, insideGID, xattrs, target)
			if err != nil {
				return store.Hash{}, err
			}
			if err := storeSymlinkBlob(repo, blobHash, target, meta.UID, meta.GID, xattrs); err != nil {
				return store.Hash{}, err
			}
			kind = store.EntryKind{Type: store.KindSymlink, Hash: blobHash}

		case store.FileBlockDevice, store.FileCharDevice:
			xattrs, err := store.ReadXattrs(absPath)
			if err != nil {
				return store.Hash{}, err
			}
			insideUID, insideGID, err := toInsideIDs(ns, meta.UID, meta.GID)
			if err != nil {
				return store.Hash{}, err
			}
			t := store.KindBlockDevice
			if meta.Type == store.FileCharDevice {
				t = store.KindCharDevice
			}
			kind = store.EntryKind{
				Type: t, Major: meta.Major, Minor: meta.Minor,
				UID: insideUID, GID: insideGID, Mode: meta.Mode, Xattrs: xattrs,
			}

		case store.FileFifo:
			xattrs, err := store.ReadXattrs(absPath)
			if err != nil {
				return store.Hash{}, err
			}
			insideUID, insideGID, err := toInsideIDs(ns, meta.UID, meta.GID)
			if err != nil {
				return store.Hash{}, err
			}
			kind = store.EntryKind{Type: store.KindFifo, UID: insideUID, GID: insideGID, Mode: meta.Mode, Xattrs: xattrs}

		case store.FileSocket:
			xattrs, err := store.ReadXattrs(absPath)
			if err != nil {
				return store.Hash{}, err
			}
			insideUID, insideGID, err := toInsideIDs(ns, meta.UID, meta.GID)
			if err != nil {
				return store.Hash{}, err
			}
			kind = store.EntryKind{Type: store.KindSocket, UID: insideUID, GID: insideGID, Mode: meta.Mode, Xattrs: xattrs}
		}

		tree.Entries = append(tree.Entries, store.TreeEntry{Name: name, Kind: kind})
	}

	return repo.WriteTree(tree)
}

// toInsideIDs translates an outside (on-disk) uid/gid pair to inside
// (repository-logical) ids, raising UnmappedUIDError/UnmappedGIDError
// if either falls outside every configured range.
func toInsideIDs(ns store.NsConfig, outsideUID, outsideGID uint32) (uint32, uint32, error) {
	insideUID, err := ns.OutsideUIDToInside(outsideUID)
	if err != nil {
		return 0, 0, err
	}
	insideGID, err := ns.OutsideGIDToInside(outsideGID)
	if err != nil {
		return 0, 0, err
	}
	return insideUID, insideGID, nil
}

func commitRegularFile(repo *store.Repo, path string, meta store.FileMetadata, ns store.NsConfig) (store.Hash, int64, []store.SparseRegion, error) {
	xattrs, err := store.ReadXattrs(path)
	if err != nil {
		return store.Hash{}, 0, nil, err
	}

	insideUID, insideGID, err := toInsideIDs(ns, meta.UID, meta.GID)
	if err != nil {
		return store.Hash{}, 0, nil, err
	}

	regions, isSparse, err := store.DetectSparseRegions(path, meta.Size)
	if err != nil {
		return store.Hash{}, 0, nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return store.Hash{}, 0, nil, &store.PathError{Path: path, Err: err}
	}
	defer f.Close()

	var payload io.Reader = f
	if isSparse {
		payload = sparseDataReader(f, regions)
	}

	hash, err := store.ComputeBlobHash(insideUID, insideGID, meta.Mode, xattrs, payload)
	if err != nil {
		return store.Hash{}, 0, nil, err
	}

	// The blob header baked into hash uses inside ids per the data
	// model's invariant, but the object file's own on-disk ownership
	// is kept outside-translated (WriteBlobRaw's documented contract)
	// so a later checkout can hardlink it in directly.
	if !repo.BlobExists(hash) {
		f2, err := os.Open(path)
		if err != nil {
			return store.Hash{}, 0, nil, &store.PathError{Path: path, Err: err}
		}
		defer f2.Close()
		var payload2 io.Reader = f2
		if isSparse {
			payload2 = sparseDataReader(f2, regions)
		}
		if err := repo.WriteBlobRaw(hash, payload2, meta.UID, meta.GID, meta.Mode, xattrs); err != nil {
			return store.Hash{}, 0, nil, err
		}
	}

	if !isSparse {
		regions = nil
	}
	return hash, meta.Size, regions, nil
}

// sparseDataReader concatenates a sparse file's data regions, in
// order, into a single stream — the blob payload is only the hole
// file's data bytes, never the holes themselves.
func sparseDataReader(f *os.File, regions []store.SparseRegion) io.Reader {
	readers := make([]io.Reader, len(regions))
	for i, r := range regions {
		readers[i] = io.NewSectionReader(f, r.Offset, r.Length)
	}
	return io.MultiReader(readers...)
}

func storeSymlinkBlob(repo *store.Repo, hash store.Hash, target string, outsideUID, outsideGID uint32, xattrs []store.Xattr) error {
	if repo.BlobExists(hash) {
		return nil
	}
	return repo.WriteBlobRaw(hash, sliceReader(target), outsideUID, outsideGID, 0o120777, xattrs)
}

type sliceReaderImpl struct {
	data []byte
	pos  int
}

func sliceReader(s string) *sliceReaderImpl { return &sliceReaderImpl{data: []byte(s)} }

func (r *sliceReaderImpl) Read(p []byte) (int, error) {
	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
