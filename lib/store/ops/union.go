// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ops

import (
	"sort"

	"zub/lib/clock"
	"zub/lib/store"
)

// ConflictPolicy resolves a union conflict when two or more sides
// contribute different content at the same path. The sides are given
// in precedence order (as passed to UnionTrees/UnionCheckout).
type ConflictPolicy func(path string, sides []store.EntryKind) (store.EntryKind, error)

// FirstWins resolves a conflict by keeping the earliest side's entry.
func FirstWins(path string, sides []store.EntryKind) (store.EntryKind, error) {
	return sides[0], nil
}

// LastWins resolves a conflict by keeping the latest side's entry.
func LastWins(path string, sides []store.EntryKind) (store.EntryKind, error) {
	return sides[len(sides)-1], nil
}

// Strict refuses every conflict, surfacing it to the caller as
// UnionConflictError.
func Strict(path string, sides []store.EntryKind) (store.EntryKind, error) {
	return store.EntryKind{}, &store.UnionConflictError{Path: path}
}

// UnionOptions configures UnionTrees and UnionCheckout.
type UnionOptions struct {
	Policy ConflictPolicy
}

// UnionTrees merges the trees at hashes (in precedence order) into a
// single tree and writes a commit over it whose parents are the
// commits in refCommits, in the same order. Entries present on only
// one side pass through unchanged; entries present on multiple sides
// at the same path are resolved by opts.Policy. Directory metadata at
// a merged directory is resolved by the same policy as entry
// conflicts, independent of whether the subtree's contents merge
// cleanly.
func UnionTrees(repo *store.Repo, hashes []store.Hash, refCommits []store.Hash, opts UnionOptions, author, message string) (store.Hash, error) {
	if opts.Policy == nil {
		opts.Policy = Strict
	}

	trees := make([]store.Tree, len(hashes))
	for i, h := range hashes {
		t, err := repo.ReadTree(h)
		if err != nil {
			return store.Hash{}, err
		}
		trees[i] = t
	}

	mergedHash, err := unionDirs(repo, trees, opts)
	if err != nil {
		return store.Hash{}, err
	}
	if err := validateHardlinks(repo, mergedHash); err != nil {
		return store.Hash{}, err
	}

	commit := store.Commit{
		Tree:      mergedHash,
		Parents:   refCommits,
		Author:    author,
		Timestamp: clock.Real().Now().Unix(),
		Message:   message,
	}
	return repo.WriteCommit(commit)
}

// unionDirs merges a list of same-path directories (given as already
// read Trees), writes the merged tree, and returns its hash.
func unionDirs(repo *store.Repo, trees []store.Tree, opts UnionOptions) (store.Hash, error) {
	byName := make(map[string][]store.EntryKind)
	order := make([]string, 0)
	seen := make(map[string]bool)

	for _, t := range trees {
		for _, e := range t.Entries {
			if !seen[e.Name] {
				seen[e.Name] = true
				order = append(order, e.Name)
			}
			byName[e.Name] = append(byName[e.Name], e.Kind)
		}
	}
	sort.Strings(order)

	var merged store.Tree
	for _, name := range order {
		sides := byName[name]
		kind, err := resolveEntry(repo, name, sides, opts)
		if err != nil {
			return store.Hash{}, err
		}
		merged.Entries = append(merged.Entries, store.TreeEntry{Name: name, Kind: kind})
	}

	return repo.WriteTree(merged)
}

// validateHardlinks confirms every Hardlink entry in the merged tree
// still resolves to a Regular entry at its target_path within the
// same merged tree. A hardlink whose referent did not survive the
// merge (e.g. the regular file it pointed at was itself a losing side
// of a conflict) is reported as a union conflict rather than silently
// left dangling.
func validateHardlinks(repo *store.Repo, rootHash store.Hash) error {
	entries, err := LsTreeRecursive(repo, rootHash, "")
	if err != nil {
		return err
	}
	byPath := make(map[string]store.EntryKind, len(entries))
	for _, e := range entries {
		byPath[e.Path] = e.Kind
	}
	for _, e := range entries {
		if e.Kind.Type != store.KindHardlink {
			continue
		}
		target, ok := byPath[e.Kind.TargetPath]
		if !ok || target.Type != store.KindRegular {
			return &store.UnionConflictError{Path: e.Path}
		}
	}
	return nil
}

func resolveEntry(repo *store.Repo, name string, sides []store.EntryKind, opts UnionOptions) (store.EntryKind, error) {
	if len(sides) == 1 {
		return sides[0], nil
	}

	allDirs := true
	for _, s := range sides {
		if s.Type != store.KindDirectory {
			allDirs = false
			break
		}
	}

	if allDirs {
		subtrees := make([]store.Tree, len(sides))
		for i, s := range sides {
			t, err := repo.ReadTree(s.Hash)
			if err != nil {
				return store.EntryKind{}, err
			}
			subtrees[i] = t
		}
		mergedHash, err := unionDirs(repo, subtrees, opts)
		if err != nil {
			return store.EntryKind{}, err
		}

		metaKind, metaDiffers, err := resolveDirMetadata(sides, opts, name)
		if err != nil {
			return store.EntryKind{}, err
		}
		result := store.EntryKind{Type: store.KindDirectory, Hash: mergedHash}
		if metaDiffers {
			result.UID, result.GID, result.Mode, result.Xattrs = metaKind.UID, metaKind.GID, metaKind.Mode, metaKind.Xattrs
		} else {
			result.UID, result.GID, result.Mode, result.Xattrs = sides[0].UID, sides[0].GID, sides[0].Mode, sides[0].Xattrs
		}
		return result, nil
	}

	kindSet := map[store.EntryKindTag]bool{}
	for _, s := range sides {
		kindSet[s.Type] = true
	}
	if len(kindSet) > 1 {
		var kinds []string
		for _, s := range sides {
			kinds = append(kinds, string(s.Type))
		}
		return store.EntryKind{}, &store.UnionTypeConflictError{Path: name, Kinds: kinds}
	}

	allSame := true
	for i := 1; i < len(sides); i++ {
		if !entryKindsEqual(sides[0], sides[i]) {
			allSame = false
			break
		}
	}
	if allSame {
		return sides[0], nil
	}

	return opts.Policy(name, sides)
}

// entryKindsEqual reports whether a and b describe the same entry,
// comparing only the fields that kind actually makes meaningful.
// Hash alone identifies Regular/Symlink content, but BlockDevice,
// CharDevice, Fifo, and Socket entries carry a zero Hash regardless
// of their Major/Minor/UID/GID/Mode, so two conflicting device nodes
// would otherwise compare equal.
func entryKindsEqual(a, b store.EntryKind) bool {
	switch a.Type {
	case store.KindRegular, store.KindSymlink:
		return a.Hash == b.Hash
	case store.KindBlockDevice, store.KindCharDevice:
		return a.Major == b.Major && a.Minor == b.Minor &&
			a.UID == b.UID && a.GID == b.GID && a.Mode == b.Mode &&
			xattrsEqual(a.Xattrs, b.Xattrs)
	case store.KindFifo, store.KindSocket:
		return a.UID == b.UID && a.GID == b.GID && a.Mode == b.Mode &&
			xattrsEqual(a.Xattrs, b.Xattrs)
	case store.KindHardlink:
		return a.TargetPath == b.TargetPath
	default:
		return a.Hash == b.Hash
	}
}

// resolveDirMetadata decides whether a merged directory's own
// metadata differs across sides and, if so, asks opts.Policy to pick
// one. See DESIGN.md decision 2.
func resolveDirMetadata(sides []store.EntryKind, opts UnionOptions, name string) (store.EntryKind, bool, error) {
	differs := false
	for i := 1; i < len(sides); i++ {
		if sides[i].UID != sides[0].UID || sides[i].GID != sides[0].GID || sides[i].Mode != sides[0].Mode ||
			!xattrsEqual(sides[i].Xattrs, sides[0].Xattrs) {
			differs = true
			break
		}
	}
	if !differs {
		return store.EntryKind{}, false, nil
	}
	resolved, err := opts.Policy(name, sides)
	if err != nil {
		return store.EntryKind{}, false, err
	}
	return resolved, true, nil
}
