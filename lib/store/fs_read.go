// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"os"
	"sort"

	"golang.org/x/sys/unix"
)

// FileType classifies a filesystem entry's kind, mirroring EntryKindTag
// minus Hardlink (hardlink-ness is a property of link count, detected
// separately by CouldBeHardlink).
type FileType string

const (
	FileRegular     FileType = "regular"
	FileDirectory   FileType = "directory"
	FileSymlink     FileType = "symlink"
	FileBlockDevice FileType = "block_device"
	FileCharDevice  FileType = "char_device"
	FileFifo        FileType = "fifo"
	FileSocket      FileType = "socket"
)

// FileMetadata is everything the commit pipeline needs to know about
// one filesystem entry, read without following symlinks.
type FileMetadata struct {
	Type  FileType
	UID   uint32
	GID   uint32
	Mode  uint32
	Size  int64
	Major uint32
	Minor uint32
	IsDev bool
	Ino   uint64
	Dev   uint64
	Nlink uint64
}

// CouldBeHardlink reports whether this entry might share its content
// with another entry already seen in the same commit (regular file,
// link count greater than one).
func (m FileMetadata) CouldBeHardlink() bool {
	return m.Type == FileRegular && m.Nlink > 1
}

// ReadFileMetadata stats path without following a trailing symlink.
func ReadFileMetadata(path string) (FileMetadata, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return FileMetadata{}, &PathError{Path: path, Err: err}
	}

	m := FileMetadata{
		UID:   st.Uid,
		GID:   st.Gid,
		Mode:  uint32(st.Mode) & 0o7777,
		Size:  st.Size,
		Ino:   st.Ino,
		Dev:   uint64(st.Dev),
		Nlink: uint64(st.Nlink),
	}

	switch st.Mode & unix.S_IFMT {
	case unix.S_IFREG:
		m.Type = FileRegular
	case unix.S_IFDIR:
		m.Type = FileDirectory
	case unix.S_IFLNK:
		m.Type = FileSymlink
	case unix.S_IFBLK:
		m.Type = FileBlockDevice
		m.IsDev = true
	case unix.S_IFCHR:
		m.Type = FileCharDevice
		m.IsDev = true
	case unix.S_IFIFO:
		m.Type = FileFifo
	case unix.S_IFSOCK:
		m.Type = FileSocket
	default:
		// Shouldn't happen on a POSIX filesystem; treat as a regular
		// file rather than failing the whole walk.
		m.Type = FileRegular
	}

	if m.IsDev {
		rdev := uint64(st.Rdev)
		m.Major = uint32(unix.Major(rdev))
		m.Minor = uint32(unix.Minor(rdev))
	}

	return m, nil
}

// ReadXattrs lists and reads every extended attribute on path,
// without following a trailing symlink, sorted ascending by name. A
// filesystem that does not support xattrs at all reports an empty
// list rather than an error. A single attribute that fails to read
// (other than one that was removed between list and get) is skipped
// with a warning rather than aborting the whole read.
func ReadXattrs(path string) ([]Xattr, error) {
	names, err := listXattrs(path)
	if err != nil {
		if isXattrUnsupported(err) {
			return nil, nil
		}
		return nil, &XattrError{Path: path, Message: err.Error()}
	}

	xattrs := make([]Xattr, 0, len(names))
	for _, name := range names {
		value, err := getXattr(path, name)
		if err != nil {
			if os.IsNotExist(err) || err == unix.ENODATA {
				continue
			}
			os.Stderr.WriteString("warning: reading xattr " + name + " on " + path + ": " + err.Error() + "\n")
			continue
		}
		xattrs = append(xattrs, Xattr{Name: name, Value: value})
	}
	sort.Slice(xattrs, func(i, j int) bool { return xattrs[i].Name < xattrs[j].Name })
	return xattrs, nil
}

func isXattrUnsupported(err error) bool {
	errno, ok := err.(unix.Errno)
	if !ok {
		return false
	}
	return errno == unix.ENOTSUP || errno == unix.ENODATA || errno == unix.EOPNOTSUPP
}

// listXattrs lists xattr names on path without following symlinks.
func listXattrs(path string) ([]string, error) {
	size, err := unix.Llistxattr(path, nil)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, nil
	}
	buf := make([]byte, size)
	n, err := unix.Llistxattr(path, buf)
	if err != nil {
		return nil, err
	}
	return splitXattrNames(buf[:n]), nil
}

func splitXattrNames(buf []byte) []string {
	var names []string
	start := 0
	for i, b := range buf {
		if b == 0 {
			if i > start {
				names = append(names, string(buf[start:i]))
			}
			start = i + 1
		}
	}
	return names
}

func getXattr(path, name string) ([]byte, error) {
	size, err := unix.Lgetxattr(path, name, nil)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return []byte{}, nil
	}
	buf := make([]byte, size)
	n, err := unix.Lgetxattr(path, name, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// ReadSymlinkTarget reads the target string of a symlink.
func ReadSymlinkTarget(path string) (string, error) {
	target, err := os.Readlink(path)
	if err != nil {
		return "", &PathError{Path: path, Err: err}
	}
	return target, nil
}

// DetectSparseRegions uses SEEK_HOLE/SEEK_DATA to find the non-hole
// byte ranges of a file. If the file has exactly one data region
// covering [0, size), it reports not-sparse (nil, false) since
// reconstructing it needs no special handling.
func DetectSparseRegions(path string, size int64) ([]SparseRegion, bool, error) {
	if size == 0 {
		return nil, false, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, false, &PathError{Path: path, Err: err}
	}
	defer f.Close()
	fd := int(f.Fd())

	var regions []SparseRegion
	offset := int64(0)
	for offset < size {
		dataStart, err := unix.Seek(fd, offset, unix.SEEK_DATA)
		if err != nil {
			if err == unix.ENXIO {
				break
			}
			return nil, false, &PathError{Path: path, Err: err}
		}
		holeStart, err := unix.Seek(fd, dataStart, unix.SEEK_HOLE)
		if err != nil {
			if err == unix.ENXIO {
				holeStart = size
			} else {
				return nil, false, &PathError{Path: path, Err: err}
			}
		}
		if holeStart > size {
			holeStart = size
		}
		regions = append(regions, SparseRegion{Offset: dataStart, Length: holeStart - dataStart})
		offset = holeStart
	}

	if len(regions) == 1 && regions[0].Offset == 0 && regions[0].Length == size {
		return nil, false, nil
	}
	return regions, true, nil
}
