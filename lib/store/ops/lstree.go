// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ops

import (
	"path/filepath"
	"strings"

	"zub/lib/store"
)

// PathEntry pairs a tree entry with its full path relative to the
// listing root.
type PathEntry struct {
	Path string
	Kind store.EntryKind
}

// LsTree lists the immediate entries of the tree reached by walking
// subPath (slash-separated) down from rootHash. An empty subPath
// lists the root tree itself.
func LsTree(repo *store.Repo, rootHash store.Hash, subPath string) ([]PathEntry, error) {
	tree, err := resolveSubtree(repo, rootHash, subPath)
	if err != nil {
		return nil, err
	}
	entries := make([]PathEntry, len(tree.Entries))
	for i, e := range tree.Entries {
		entries[i] = PathEntry{Path: filepath.Join(subPath, e.Name), Kind: e.Kind}
	}
	return entries, nil
}

// LsTreeRecursive yields a depth-first sequence of (path, entry) pairs
// for every entry reachable under subPath, descending into
// directories.
func LsTreeRecursive(repo *store.Repo, rootHash store.Hash, subPath string) ([]PathEntry, error) {
	tree, err := resolveSubtree(repo, rootHash, subPath)
	if err != nil {
		return nil, err
	}
	var out []PathEntry
	if err := walkRecursive(repo, tree, subPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func walkRecursive(repo *store.Repo, tree store.Tree, prefix string, out *[]PathEntry) error {
	for _, e := range tree.Entries {
		path := filepath.Join(prefix, e.Name)
		*out = append(*out, PathEntry{Path: path, Kind: e.Kind})
		if e.Kind.Type == store.KindDirectory {
			subtree, err := repo.ReadTree(e.Kind.Hash)
			if err != nil {
				return err
			}
			if err := walkRecursive(repo, subtree, path, out); err != nil {
				return err
			}
		}
	}
	return nil
}

func resolveSubtree(repo *store.Repo, rootHash store.Hash, subPath string) (store.Tree, error) {
	tree, err := repo.ReadTree(rootHash)
	if err != nil {
		return store.Tree{}, err
	}
	subPath = strings.Trim(subPath, "/")
	if subPath == "" {
		return tree, nil
	}
	for _, part := range strings.Split(subPath, "/") {
		found := false
		for _, e := range tree.Entries {
			if e.Name == part && e.Kind.Type == store.KindDirectory {
				tree, err = repo.ReadTree(e.Kind.Hash)
				if err != nil {
					return store.Tree{}, err
				}
				found = true
				break
			}
		}
		if !found {
			return store.Tree{}, &store.InvalidEntryNameError{Name: part}
		}
	}
	return tree, nil
}
