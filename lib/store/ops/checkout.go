// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ops

import (
	"io"
	"os"
	"path/filepath"

	"zub/lib/store"
)

// CheckoutOptions configures one invocation of Checkout.
type CheckoutOptions struct {
	// Force allows checking out into a non-empty target directory.
	Force bool
	// Hardlink materializes regular files by hardlinking into the
	// object store instead of copying, when possible. Defaults true.
	Hardlink bool
	// PreserveSparse reconstructs sparse files as sparse on the
	// destination filesystem rather than writing them fully dense.
	PreserveSparse bool
}

// DefaultCheckoutOptions returns the options spec.md documents as
// default: force=false, hardlink=true, preserve_sparse=false.
func DefaultCheckoutOptions() CheckoutOptions {
	return CheckoutOptions{Hardlink: true}
}

// Checkout materializes the tree at treeHash onto targetPath. Failures
// mid-checkout leave the target partially materialized; callers may
// delete and retry. The pipeline is deterministic given identical
// inputs.
func Checkout(repo *store.Repo, treeHash store.Hash, targetPath string, opts CheckoutOptions) error {
	if !opts.Force {
		empty, err := dirIsEmpty(targetPath)
		if err != nil {
			return err
		}
		if !empty {
			return &store.TargetNotEmptyError{Path: targetPath}
		}
	}

	// hardlink groups resolve against paths within the SAME commit;
	// track (relative path committed) -> absolute path materialized,
	// populated as entries are checked out in tree order.
	materialized := make(map[string]string)

	tree, err := repo.ReadTree(treeHash)
	if err != nil {
		return err
	}
	return checkoutDir(repo, tree, targetPath, "", opts, materialized, repo.Config.Namespace)
}

func dirIsEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, &store.PathError{Path: path, Err: err}
	}
	return len(entries) == 0, nil
}

func checkoutDir(repo *store.Repo, tree store.Tree, root, relDir string, opts CheckoutOptions, materialized map[string]string, ns store.NsConfig) error {
	absDir := filepath.Join(root, relDir)
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return &store.PathError{Path: absDir, Err: err}
	}

	for _, entry := range tree.Entries {
		relPath := filepath.Join(relDir, entry.Name)
		absPath := filepath.Join(root, relPath)
		kind := entry.Kind

		switch kind.Type {
		case store.KindDirectory:
			subtree, err := repo.ReadTree(kind.Hash)
			if err != nil {
				return err
			}
			if err := checkoutDir(repo, subtree, root, relPath, opts, materialized, ns); err != nil {
				return err
			}
			if err := applyDirMetadata(absPath, kind, ns); err != nil {
				return err
			}

		case store.KindRegular:
			if err := checkoutRegular(repo, absPath, kind, opts); err != nil {
				return err
			}
			materialized[relPath] = absPath

		case store.KindSymlink:
			target, err := repo.ReadBlobBytes(kind.Hash)
			if err != nil {
				return err
			}
			meta, err := store.ReadFileMetadata(repo.BlobPath(kind.Hash))
			if err != nil {
				return err
			}
			xattrs, err := store.ReadXattrs(repo.BlobPath(kind.Hash))
			if err != nil {
				return err
			}
			// meta.UID/GID are already outside-ready: WriteBlobRaw
			// stores them outside-translated at commit time, since a
			// symlink's EntryKind carries no separate id field to
			// translate from here.
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

// toOutsideIDs translates an inside (repository-logical) uid/gid pair,
// as stored on a tree entry, to the outside (on-disk) ids a chown or
// device-node creation call actually needs.
func toOutsideIDs(ns store.NsConfig, insideUID, insideGID uint32) (uint32, uint32, error) {
	outsideUID, err := ns.InsideUIDToOutside(insideUID)
	if err != nil {
		return 0, 0, err
	}
	outsideGID, err := ns.InsideGIDToOutside(insideGID)
	if err != nil {
		return 0, 0, err
	}
	return outsideUID, outsideGID, nil
}

func applyDirMetadata(path string, kind store.EntryKind, ns store.NsConfig) error {
	outsideUID, outsideGID, err := toOutsideIDs(ns, kind.UID, kind.GID)
	if err != nil {
		return err
	}
	return store.CreateDirectory(path, outsideUID, outsideGID, kind.Mode, kind.Xattrs)
}

func checkoutRegular(repo *store.Repo, absPath string, kind store.EntryKind, opts CheckoutOptions) error {
	if len(kind.SparseMap) > 0 && opts.PreserveSparse {
		return checkoutSparse(repo, absPath, kind)
	}

	if opts.Hardlink {
		if err := store.CreateHardlink(repo.BlobPath(kind.Hash), absPath); err == nil {
			return nil
		}
		// fall through to copy if hardlinking failed (cross-device, etc.)
	}

	src, err := repo.ReadBlob(kind.Hash)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(absPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return &store.PathError{Path: absPath, Err: err}
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return &store.PathError{Path: absPath, Err: err}
	}
	if err := dst.Close(); err != nil {
		return &store.PathError{Path: absPath, Err: err}
	}

	return applyRegularMetadata(repo, absPath, kind)
}

// applyRegularMetadata fetches a regular blob's own stored
// owner/mode/xattrs (EntryKind carries none of these for KindRegular —
// they live, already outside-ready, on the blob object's own on-disk
// metadata, the same as the Symlink branch above) and applies them to
// a just-copied checkout file.
func applyRegularMetadata(repo *store.Repo, absPath string, kind store.EntryKind) error {
	meta, err := store.ReadFileMetadata(repo.BlobPath(kind.Hash))
	if err != nil {
		return err
	}
	xattrs, err := store.ReadXattrs(repo.BlobPath(kind.Hash))
	if err != nil {
		return err
	}
	return store.ApplyFileMetadata(absPath, meta.UID, meta.GID, meta.Mode, xattrs)
}

func checkoutSparse(repo *store.Repo, absPath string, kind store.EntryKind) error {
	data, err := repo.ReadBlobBytes(kind.Hash)
	if err != nil {
		return err
	}
	// the blob payload is the concatenation of data regions in order;
	// slice it back out per region.
	pos := 0
	if err := store.WriteSparseFile(absPath, kind.Size, kind.SparseMap, func(region store.SparseRegion) ([]byte, error) {
		end := pos + int(region.Length)
		if end > len(data) {
			end = len(data)
		}
		chunk := data[pos:end]
		pos = end
		return chunk, nil
	}); err != nil {
		return err
	}
	return applyRegularMetadata(repo, absPath, kind)
}
