// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"os"

	"golang.org/x/sys/unix"
)

// CreateDirectory makes path (and any missing parents) and applies
// the given outside-translated metadata.
func CreateDirectory(path string, uid, gid, mode uint32, xattrs []Xattr) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return &PathError{Path: path, Err: err}
	}
	return applyMetadata(path, uid, gid, mode, xattrs)
}

// CreateSymlink creates a symlink at path pointing at target, removing
// any existing entry first. xattrs are set first, with the no-follow
// lsetxattr call, best-effort: a failure is logged rather than
// returned. Ownership is then set via lchown since chown follows
// symlinks.
func CreateSymlink(path, target string, uid, gid uint32, xattrs []Xattr) error {
	os.Remove(path)
	if err := os.Symlink(target, path); err != nil {
		return &PathError{Path: path, Err: err}
	}

	for _, x := range xattrs {
		if err := unix.Lsetxattr(path, x.Name, x.Value, 0); err != nil {
			os.Stderr.WriteString("warning: setting xattr " + x.Name + " on symlink " + path + ": " + err.Error() + "\n")
		}
	}

	current := os.Getuid()
	currentGID := os.Getgid()
	if int(uid) != current || int(gid) != currentGID {
		if err := unix.Lchown(path, int(uid), int(gid)); err != nil {
			return &PathError{Path: path, Err: err}
		}
	}
	return nil
}

func createDeviceNode(path string, mode uint32, major, minor uint32) error {
	os.Remove(path)
	dev := unix.Mkdev(major, minor)
	if err := unix.Mknod(path, mode, int(dev)); err != nil {
		if err == unix.EPERM {
			return &DeviceNodePermissionError{Path: path}
		}
		return &PathError{Path: path, Err: err}
	}
	return nil
}

// CreateBlockDevice creates a block device node at path.
func CreateBlockDevice(path string, major, minor, uid, gid, mode uint32, xattrs []Xattr) error {
	if err := createDeviceNode(path, unix.S_IFBLK|mode, major, minor); err != nil {
		return err
	}
	return applyMetadata(path, uid, gid, mode, xattrs)
}

// CreateCharDevice creates a character device node at path.
func CreateCharDevice(path string, major, minor, uid, gid, mode uint32, xattrs []Xattr) error {
	if err := createDeviceNode(path, unix.S_IFCHR|mode, major, minor); err != nil {
		return err
	}
	return applyMetadata(path, uid, gid, mode, xattrs)
}

// CreateFifo creates a named pipe at path, removing any existing
// entry first.
func CreateFifo(path string, uid, gid, mode uint32, xattrs []Xattr) error {
	os.Remove(path)
	if err := unix.Mkfifo(path, mode); err != nil {
		return &PathError{Path: path, Err: err}
	}
	return applyMetadata(path, uid, gid, mode, xattrs)
}

// CreateSocketPlaceholder creates a placeholder socket node at path.
// Sockets are stored as a placeholder only (spec.md does not specify
// reconstructing a live listening socket); if creating the node fails
// with EPERM, this silently skips it with a warning rather than
// returning an error, since unprivileged checkouts commonly cannot
// create socket nodes and this is not a correctness-affecting gap.
func CreateSocketPlaceholder(path string, uid, gid, mode uint32, xattrs []Xattr) error {
	os.Remove(path)
	dev := unix.Mkdev(0, 0)
	if err := unix.Mknod(path, unix.S_IFSOCK|mode, int(dev)); err != nil {
		if err == unix.EPERM {
			os.Stderr.WriteString("warning: no permission to create socket placeholder at " + path + "\n")
			return nil
		}
		return &PathError{Path: path, Err: err}
	}
	return applyMetadata(path, uid, gid, mode, xattrs)
}

// CreateHardlink creates a hardlink at linkPath pointing at
// targetPath, removing any existing entry at linkPath first.
func CreateHardlink(targetPath, linkPath string) error {
	os.Remove(linkPath)
	if err := os.Link(targetPath, linkPath); err != nil {
		return &PathError{Path: linkPath, Err: err}
	}
	return nil
}

// ApplyFileMetadata sets xattrs, then owner, then mode on an existing
// regular file — used by checkout's non-hardlink copy paths, which
// create the file's bytes first and apply its stored metadata after,
// the same order the Create* functions above follow (CreateSymlink has
// no mode to set and stops after the owner).
func ApplyFileMetadata(path string, uid, gid, mode uint32, xattrs []Xattr) error {
	return applyMetadata(path, uid, gid, mode, xattrs)
}

// applyMetadata sets xattrs, then chown, then chmod, in that order —
// xattrs and chown both need write access that a restrictive chmod
// (or one that clears setuid/setgid) would remove if applied first.
func applyMetadata(path string, uid, gid, mode uint32, xattrs []Xattr) error {
	for _, x := range xattrs {
		if err := unix.Setxattr(path, x.Name, x.Value, 0); err != nil {
			os.Stderr.WriteString("warning: setting xattr " + x.Name + " on " + path + ": " + err.Error() + "\n")
		}
	}

	if int(uid) != os.Getuid() || int(gid) != os.Getgid() {
		if err := os.Chown(path, int(uid), int(gid)); err != nil {
			return &PathError{Path: path, Err: err}
		}
	}

	if err := os.Chmod(path, os.FileMode(mode&0o7777)); err != nil {
		return &PathError{Path: path, Err: err}
	}
	return nil
}

// WriteSparseFile reconstructs a file from content data plus a sparse
// map: truncate to size, then write each data region at its offset,
// leaving the gaps between regions as OS-managed holes.
func WriteSparseFile(path string, size int64, regions []SparseRegion, readRegion func(SparseRegion) ([]byte, error)) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return &PathError{Path: path, Err: err}
	}
	defer f.Close()

	if err := f.Truncate(size); err != nil {
		return &PathError{Path: path, Err: err}
	}

	for _, region := range regions {
		data, err := readRegion(region)
		if err != nil {
			return err
		}
		if _, err := f.WriteAt(data, region.Offset); err != nil {
			return &PathError{Path: path, Err: err}
		}
	}
	return nil
}

// FsyncFile fsyncs an open file's contents to stable storage.
func FsyncFile(f *os.File) error {
	if err := f.Sync(); err != nil {
		return &PathError{Path: f.Name(), Err: err}
	}
	return nil
}

// FsyncDir fsyncs a directory's entries to stable storage, so a
// rename into it is durable.
func FsyncDir(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &PathError{Path: path, Err: err}
	}
	defer f.Close()
	return FsyncFile(f)
}
