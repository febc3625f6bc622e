// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ops

import (
	"os"
	"path/filepath"

	"zub/lib/store"
)

// UnionCheckout merges the trees at hashes lazily and streams the
// result directly onto targetPath. No merged root tree and no commit
// are written to the store. A subdirectory present on more than one
// side is resolved through the same resolveEntry path UnionTrees uses,
// which writes that subdirectory's merged tree objects to the store.
// Useful when the merge result is transient (e.g. a one-off combined
// view) and does not need to be addressable or committed.
func UnionCheckout(repo *store.Repo, hashes []store.Hash, targetPath string, opts UnionOptions, checkoutOpts CheckoutOptions) error {
	if opts.Policy == nil {
		opts.Policy = Strict
	}
	if !checkoutOpts.Force {
		empty, err := dirIsEmpty(targetPath)
		if err != nil {
			return err
		}
		if !empty {
			return &store.TargetNotEmptyError{Path: targetPath}
		}
	}

	trees := make([]store.Tree, len(hashes))
	for i, h := range hashes {
		t, err := repo.ReadTree(h)
		if err != nil {
			return err
		}
		trees[i] = t
	}

	materialized := make(map[string]string)
	return unionCheckoutDir(repo, trees, targetPath, "", opts, checkoutOpts, materialized, repo.Config.Namespace)
}

func unionCheckoutDir(repo *store.Repo, trees []store.Tree, root, relDir string, opts UnionOptions, checkoutOpts CheckoutOptions, materialized map[string]string, ns store.NsConfig) error {
	absDir := filepath.Join(root, relDir)
	// Scaffold only; a directory's real ownership/mode is applied by
	// the caller once its merged EntryKind is known (or, for the root
	// of the checkout, is deliberately left as the process's own
	// umask-default ownership, since the root has no EntryKind of its
	// own to merge).
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return &store.PathError{Path: absDir, Err: err}
	}

	byName := make(map[string][]store.EntryKind)
	var order []string
	seen := map[string]bool{}
	for _, t := range trees {
		for _, e := range t.Entries {
			if !seen[e.Name] {
				seen[e.Name] = true
				order = append(order, e.Name)
			}
			byName[e.Name] = append(byName[e.Name], e.Kind)
		}
	}

	for _, name := range order {
		sides := byName[name]
		relPath := filepath.Join(relDir, name)
		absPath := filepath.Join(root, relPath)

		kind, err := resolveEntry(repo, name, sides, opts)
		if err != nil {
			return err
		}

		switch kind.Type {
		case store.KindDirectory:
			var subtrees []store.Tree
			for _, s := range sides {
				if s.Type == store.KindDirectory {
					t, err := repo.ReadTree(s.Hash)
					if err != nil {
						return err
					}
					subtrees = append(subtrees, t)
				}
			}
			if len(subtrees) == 0 {
				t, err := repo.ReadTree(kind.Hash)
				if err != nil {
					return err
				}
				subtrees = append(subtrees, t)
			}
			if err := unionCheckoutDir(repo, subtrees, root, relPath, opts, checkoutOpts, materialized, ns); err != nil {
				return err
			}
			outsideUID, outsideGID, err := toOutsideIDs(ns, kind.UID, kind.GID)
			if err != nil {
				return err
			}
			if err := store.CreateDirectory(absPath, outsideUID, outsideGID, kind.Mode, kind.Xattrs); err != nil {
				return err
			}

		case store.KindRegular:
			if err := checkoutRegular(repo, absPath, kind, checkoutOpts); err != nil {
				return err
			}
			materialized[relPath] = absPath

		case store.KindSymlink:
			target, err := repo.ReadBlobBytes(kind.Hash)
			if err != nil {
				return err
			}
			// Symlink EntryKind carries no uid/gid field of its own;
			// the outside-ready ownership lives on the blob object's
			// own on-disk metadata, same as checkout.go's symlink case.
			meta, err := store.ReadFileMetadata(repo.BlobPath(kind.Hash))
			if err != nil {
				return err
			}
			xattrs, err := store.ReadXattrs(repo.BlobPath(kind.Hash))
			if err != nil {
				return err
			}
			if err := store.CreateSymlink(absPath, string(target), meta.UID, meta.GID, xattrs); err != nil {
				return err
			}
			materialized[relPath] = absPath

		case store.KindBlockDevice:
			outsideUID, outsideGID, err := toOutsideIDs(ns, kind.UID, kind.GID)
			if err != nil {
				return err
			}
			if err := store.CreateBlockDevice(absPath, kind.Major, kind.Minor, outsideUID, outsideGID, kind.Mode, kind.Xattrs); err != nil {
				return err
			}

		case store.KindCharDevice:
			outsideUID, outsideGID, err := toOutsideIDs(ns, kind.UID, kind.GID)
			if err != nil {
				return err
			}
			if err := store.CreateCharDevice(absPath, kind.Major, kind.Minor, outsideUID, outsideGID, kind.Mode, kind.Xattrs); err != nil {
				return err
			}

		case store.KindFifo:
			outsideUID, outsideGID, err := toOutsideIDs(ns, kind.UID, kind.GID)
			if err != nil {
				return err
			}
			if err := store.CreateFifo(absPath, outsideUID, outsideGID, kind.Mode, kind.Xattrs); err != nil {
				return err
			}

		case store.KindSocket:
			outsideUID, outsideGID, err := toOutsideIDs(ns, kind.UID, kind.GID)
			if err != nil {
				return err
			}
			if err := store.CreateSocketPlaceholder(absPath, outsideUID, outsideGID, kind.Mode, kind.Xattrs); err != nil {
				return err
			}

		case store.KindHardlink:
			targetAbs, ok := materialized[kind.TargetPath]
			if !ok {
				return &store.HardlinkTargetNotFoundError{TargetPath: kind.TargetPath}
			}
			if err := store.CreateHardlink(targetAbs, absPath); err != nil {
				return err
			}
		}
	}
	return nil
}
