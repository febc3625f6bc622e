// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ops

import (
	"os"
	"path/filepath"

	"zub/lib/store"
)

// FsckReport collects the problems found by Fsck.
type FsckReport struct {
	Corrupt  []store.Hash
	Dangling []store.Hash
}

// Fsck recomputes every stored object's hash from its actual on-disk
// bytes and compares it to the file name; a mismatch is corruption.
// It also walks reachability from every ref and reports any
// on-disk object that is not reachable (dangling, not deleted).
func Fsck(repo *store.Repo) (FsckReport, error) {
	var report FsckReport

	commits, trees, blobs, err := allStoredHashes(repo)
	if err != nil {
		return report, err
	}

	for _, h := range blobs {
		f, err := repo.ReadBlob(h)
		if err != nil {
			return report, err
		}
		meta, err := store.ReadFileMetadata(repo.BlobPath(h))
		f.Close()
		if err != nil {
			return report, err
		}
		xattrs, err := store.ReadXattrs(repo.BlobPath(h))
		if err != nil {
			return report, err
		}
		content, err := repo.ReadBlob(h)
		if err != nil {
			return report, err
		}
		recomputed, err := store.ComputeBlobHash(meta.UID, meta.GID, meta.Mode, xattrs, content)
		content.Close()
		if err != nil {
			return report, err
		}
		if recomputed != h {
			report.Corrupt = append(report.Corrupt, h)
		}
	}

	for _, h := range trees {
		data, err := os.ReadFile(repo.TreePath(h))
		if err != nil {
			return report, &store.PathError{Path: repo.TreePath(h), Err: err}
		}
		if store.ComputeCompressedHash(data) != h {
			report.Corrupt = append(report.Corrupt, h)
		}
	}

	for _, h := range commits {
		data, err := os.ReadFile(repo.CommitPath(h))
		if err != nil {
			return report, &store.PathError{Path: repo.CommitPath(h), Err: err}
		}
		if store.ComputeCompressedHash(data) != h {
			report.Corrupt = append(report.Corrupt, h)
		}
	}

	reachable, err := reachabilityClosure(repo)
	if err != nil {
		return report, err
	}
	for _, h := range append(append(append([]store.Hash{}, commits...), trees...), blobs...) {
		if !reachable[h] {
			report.Dangling = append(report.Dangling, h)
		}
	}

	return report, nil
}

// allStoredHashes walks objects/{commits,trees,blobs} and returns
// every hash found on disk, by shard-path reconstruction.
func allStoredHashes(repo *store.Repo) (commits, trees, blobs []store.Hash, err error) {
	walk := func(root string) ([]store.Hash, error) {
		var hashes []store.Hash
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if info.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = filepath.ToSlash(rel)
			parts := splitPath(rel)
			if len(parts) != 2 {
				return nil
			}
			h, err := store.ParseHash(parts[0] + parts[1])
			if err != nil {
				return nil
			}
			hashes = append(hashes, h)
			return nil
		})
		return hashes, err
	}

	commits, err = walk(repo.CommitsDir())
	if err != nil {
		return nil, nil, nil, &store.PathError{Path: "objects/commits", Err: err}
	}
	trees, err = walk(repo.TreesDir())
	if err != nil {
		return nil, nil, nil, &store.PathError{Path: "objects/trees", Err: err}
	}
	blobs, err = walk(repo.BlobsDir())
	if err != nil {
		return nil, nil, nil, &store.PathError{Path: "objects/blobs", Err: err}
	}
	return commits, trees, blobs, nil
}

func splitPath(rel string) []string {
	var parts []string
	cur := ""
	for _, c := range rel {
		if c == '/' {
			parts = append(parts, cur)
			cur = ""
			continue
		}
		cur += string(c)
	}
	parts = append(parts, cur)
	return parts
}

// reachabilityClosure computes the set of every object reachable from
// every ref: commit -> parents union tree; tree -> subtrees union
// blobs.
func reachabilityClosure(repo *store.Repo) (map[store.Hash]bool, error) {
	reachable := make(map[store.Hash]bool)

	refs, err := repo.ListRefs()
	if err != nil {
		return nil, err
	}

	var visitCommit func(h store.Hash) error
	var visitTree func(h store.Hash) error

	visitTree = func(h store.Hash) error {
		if reachable[h] {
			return nil
		}
		reachable[h] = true
		tree, err := repo.ReadTree(h)
		if err != nil {
			return err
		}
		for _, e := range tree.Entries {
			switch e.Kind.Type {
			case store.KindDirectory:
				if err := visitTree(e.Kind.Hash); err != nil {
					return err
				}
			case store.KindRegular, store.KindSymlink:
				reachable[e.Kind.Hash] = true
			}
		}
		return nil
	}

	visitCommit = func(h store.Hash) error {
		if reachable[h] {
			return nil
		}
		reachable[h] = true
		commit, err := repo.ReadCommit(h)
		if err != nil {
			return err
		}
		if err := visitTree(commit.Tree); err != nil {
			return err
		}
		for _, p := range commit.Parents {
			if err := visitCommit(p); err != nil {
				return err
			}
		}
		return nil
	}

	for _, ref := range refs {
		h, err := repo.ReadRef(ref)
		if err != nil {
			continue
		}
		if err := visitCommit(h); err != nil {
			return nil, err
		}
	}

	return reachable, nil
}
