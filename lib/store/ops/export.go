// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ops

import (
	"archive/tar"
	"io"
	"path"

	"zub/lib/store"
)

// Export streams the tree at treeHash as a POSIX tar archive to w.
// Hardlink entries are written as tar TypeLink members pointing at
// the path they resolved to earlier in the same tree; device nodes
// use tar's own major/minor and typeflag fields, and sockets, which
// have no tar typeflag, are written as empty regular-file members.
func Export(repo *store.Repo, treeHash store.Hash, w io.Writer) error {
	tw := tar.NewWriter(w)
	materialized := make(map[string]string)
	if err := exportDir(repo, treeHash, tw, "", materialized); err != nil {
		tw.Close()
		return err
	}
	return tw.Close()
}

func exportDir(repo *store.Repo, treeHash store.Hash, tw *tar.Writer, prefix string, materialized map[string]string) error {
	tree, err := repo.ReadTree(treeHash)
	if err != nil {
		return err
	}

	for _, e := range tree.Entries {
		p := path.Join(prefix, e.Name)
		kind := e.Kind

		hdr := &tar.Header{Name: p, Uid: int(kind.UID), Gid: int(kind.GID), Mode: int64(kind.Mode)}

		switch kind.Type {
		case store.KindDirectory:
			hdr.Typeflag = tar.TypeDir
			hdr.Name = p + "/"
			if err := tw.WriteHeader(hdr); err != nil {
				return err
			}
			if err := exportDir(repo, kind.Hash, tw, p, materialized); err != nil {
				return err
			}
			continue

		case store.KindRegular:
			// EntryKind carries no uid/gid/mode of its own for Regular;
			// those live, already outside-ready, on the blob object's
			// own on-disk metadata.
			meta, err := store.ReadFileMetadata(repo.BlobPath(kind.Hash))
			if err != nil {
				return err
			}
			hdr.Uid, hdr.Gid, hdr.Mode = int(meta.UID), int(meta.GID), int64(meta.Mode&0o7777)
			hdr.Typeflag = tar.TypeReg
			hdr.Size = kind.Size
			if err := tw.WriteHeader(hdr); err != nil {
				return err
			}
			f, err := repo.ReadBlob(kind.Hash)
			if err != nil {
				return err
			}
			_, err = io.Copy(tw, f)
			f.Close()
			if err != nil {
				return err
			}
			materialized[p] = p
			continue

		case store.KindSymlink:
			target, err := repo.ReadBlobBytes(kind.Hash)
			if err != nil {
				return err
			}
			meta, err := store.ReadFileMetadata(repo.BlobPath(kind.Hash))
			if err != nil {
				return err
			}
			hdr.Uid, hdr.Gid = int(meta.UID), int(meta.GID)
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = string(target)
			if err := tw.WriteHeader(hdr); err != nil {
				return err
			}
			materialized[p] = p
			continue

		case store.KindBlockDevice:
			hdr.Typeflag = tar.TypeBlock
			hdr.Devmajor = int64(kind.Major)
			hdr.Devminor = int64(kind.Minor)

		case store.KindCharDevice:
			hdr.Typeflag = tar.TypeChar
			hdr.Devmajor = int64(kind.Major)
			hdr.Devminor = int64(kind.Minor)

		case store.KindFifo:
			hdr.Typeflag = tar.TypeFifo

		case store.KindSocket:
			// tar has no socket typeflag; represent as an empty regular
			// file placeholder, matching the object model's own
			// "placeholder only" treatment of sockets.
			hdr.Typeflag = tar.TypeReg

		case store.KindHardlink:
			hdr.Typeflag = tar.TypeLink
			targetPath, ok := materialized[kind.TargetPath]
			if !ok {
				return &store.HardlinkTargetNotFoundError{TargetPath: kind.TargetPath}
			}
			hdr.Linkname = targetPath
		}

		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}
	}
	return nil
}
