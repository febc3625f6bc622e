// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ops

import (
	"path/filepath"

	"zub/lib/store"
)

// Diff walks two root trees in a synchronous, paired-by-name sweep
// (both trees are already sorted ascending by name) and reports the
// path-level changes between them.
func Diff(repo *store.Repo, before, after store.Hash) ([]store.DiffEntry, error) {
	beforeTree, err := repo.ReadTree(before)
	if err != nil {
		return nil, err
	}
	afterTree, err := repo.ReadTree(after)
	if err != nil {
		return nil, err
	}
	var entries []store.DiffEntry
	if err := diffDir(repo, beforeTree, afterTree, "", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func diffDir(repo *store.Repo, before, after store.Tree, prefix string, out *[]store.DiffEntry) error {
	i, j := 0, 0
	for i < len(before.Entries) || j < len(after.Entries) {
		switch {
		case j >= len(after.Entries) || (i < len(before.Entries) && before.Entries[i].Name < after.Entries[j].Name):
			entry := before.Entries[i]
			*out = append(*out, store.DiffEntry{
				Path: filepath.Join(prefix, entry.Name), Change: store.ChangeDeleted,
				Before: &entry.Kind,
			})
			i++

		case i >= len(before.Entries) || before.Entries[i].Name > after.Entries[j].Name:
			entry := after.Entries[j]
			*out = append(*out, store.DiffEntry{
				Path: filepath.Join(prefix, entry.Name), Change: store.ChangeAdded,
				After: &entry.Kind,
			})
			j++

		default:
			b := before.Entries[i]
			a := after.Entries[j]
			path := filepath.Join(prefix, a.Name)
			if err := diffMatched(repo, b, a, path, out); err != nil {
				return err
			}
			i++
			j++
		}
	}
	return nil
}

func diffMatched(repo *store.Repo, b, a store.TreeEntry, path string, out *[]store.DiffEntry) error {
	if b.Kind.Type != a.Kind.Type {
		*out = append(*out, store.DiffEntry{Path: path, Change: store.ChangeModified, Before: &b.Kind, After: &a.Kind})
		return nil
	}

	if b.Kind.Type == store.KindDirectory {
		if b.Kind.Hash != a.Kind.Hash {
			beforeTree, err := repo.ReadTree(b.Kind.Hash)
			if err != nil {
				return err
			}
			afterTree, err := repo.ReadTree(a.Kind.Hash)
			if err != nil {
				return err
			}
			if err := diffDir(repo, beforeTree, afterTree, path, out); err != nil {
				return err
			}
		}
		if dirMetadataDiffers(b.Kind, a.Kind) {
			*out = append(*out, store.DiffEntry{Path: path, Change: store.ChangeMetadataOnly, Before: &b.Kind, After: &a.Kind})
		}
		return nil
	}

	if contentHash(b.Kind) == contentHash(a.Kind) {
		if metadataDiffers(b.Kind, a.Kind) {
			*out = append(*out, store.DiffEntry{Path: path, Change: store.ChangeMetadataOnly, Before: &b.Kind, After: &a.Kind})
		}
		return nil
	}

	*out = append(*out, store.DiffEntry{Path: path, Change: store.ChangeModified, Before: &b.Kind, After: &a.Kind})
	return nil
}

func contentHash(k store.EntryKind) store.Hash {
	return k.Hash
}

func metadataDiffers(b, a store.EntryKind) bool {
	return b.UID != a.UID || b.GID != a.GID || b.Mode != a.Mode || !xattrsEqual(b.Xattrs, a.Xattrs)
}

func dirMetadataDiffers(b, a store.EntryKind) bool {
	return metadataDiffers(b, a)
}

func xattrsEqual(a, b []store.Xattr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || string(a[i].Value) != string(b[i].Value) {
			return false
		}
	}
	return true
}
