// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

// Xattr is a single extended attribute. Every serialization and every
// hash computation that includes xattrs sorts them ascending by Name
// first, with no duplicate names permitted.
type Xattr struct {
	Name  string `cbor:"name"`
	Value []byte `cbor:"value"`
}

// SparseRegion describes one non-hole byte range of a sparse file's
// logical content. Regions are sorted by Offset, non-overlapping, and
// each has Length of at least 1.
type SparseRegion struct {
	Offset int64 `cbor:"offset"`
	Length int64 `cbor:"length"`
}

// EntryKindTag selects which variant of the EntryKind tagged union a
// tree entry holds; only the EntryKind fields of that variant are
// meaningful.
type EntryKindTag string

const (
	KindRegular     EntryKindTag = "regular"
	KindSymlink     EntryKindTag = "symlink"
	KindDirectory   EntryKindTag = "directory"
	KindBlockDevice EntryKindTag = "block_device"
	KindCharDevice  EntryKindTag = "char_device"
	KindFifo        EntryKindTag = "fifo"
	KindSocket      EntryKindTag = "socket"
	KindHardlink    EntryKindTag = "hardlink"
)

// EntryKind holds the per-kind payload for a tree entry. Only the
// fields relevant to Type are populated; the rest are left zero.
// Field sets mirror spec.md §3's EntryKind table exactly.
type EntryKind struct {
	Type EntryKindTag `cbor:"type"`

	// Regular, Symlink
	Hash Hash `cbor:"hash,omitempty"`

	// Regular
	Size      int64          `cbor:"size,omitempty"`
	SparseMap []SparseRegion `cbor:"sparse_map,omitempty"`

	// Directory, BlockDevice, CharDevice, Fifo, Socket
	UID    uint32  `cbor:"uid,omitempty"`
	GID    uint32  `cbor:"gid,omitempty"`
	Mode   uint32  `cbor:"mode,omitempty"`
	Xattrs []Xattr `cbor:"xattrs,omitempty"`

	// BlockDevice, CharDevice
	Major uint32 `cbor:"major,omitempty"`
	Minor uint32 `cbor:"minor,omitempty"`

	// Hardlink
	TargetPath string `cbor:"target_path,omitempty"`
}

// TreeEntry is one named member of a Tree: a name paired with what it
// points at.
type TreeEntry struct {
	Name string    `cbor:"name"`
	Kind EntryKind `cbor:"kind"`
}

// Tree is an ordered, unique-by-name, ascending-byte-sorted list of
// entries. The empty tree (no entries) is permitted.
type Tree struct {
	Entries []TreeEntry `cbor:"entries"`
}

// Commit is one point in history: a tree snapshot, its parents (0 for
// a root commit, 1 for a linear commit, 2+ for a merge, ordered),
// authorship, and free-form metadata.
type Commit struct {
	Tree      Hash              `cbor:"tree"`
	Parents   []Hash            `cbor:"parents"`
	Author    string            `cbor:"author"`
	Timestamp int64             `cbor:"timestamp"`
	Message   string            `cbor:"message"`
	Metadata  map[string]string `cbor:"metadata,omitempty"`
}

// ChangeKind classifies one DiffEntry.
type ChangeKind string

const (
	ChangeAdded        ChangeKind = "added"
	ChangeDeleted      ChangeKind = "deleted"
	ChangeModified     ChangeKind = "modified"
	ChangeMetadataOnly ChangeKind = "metadata_only"
)

// DiffEntry is one path-level change between two trees.
type DiffEntry struct {
	Path   string     `cbor:"path"`
	Change ChangeKind `cbor:"change"`
	Before *EntryKind `cbor:"before,omitempty"`
	After  *EntryKind `cbor:"after,omitempty"`
}
