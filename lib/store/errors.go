// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import "fmt"

// NoRepoError is raised by Open when path does not contain a
// repository (no config.toml).
type NoRepoError struct{ Path string }

func (e *NoRepoError) Error() string { return fmt.Sprintf("no repository at %s", e.Path) }

// RepoExistsError is raised by Init when path already contains a
// repository.
type RepoExistsError struct{ Path string }

func (e *RepoExistsError) Error() string { return fmt.Sprintf("repository already exists at %s", e.Path) }

// RefNotFoundError is raised when a named ref does not resolve.
type RefNotFoundError struct{ Name string }

func (e *RefNotFoundError) Error() string { return fmt.Sprintf("ref not found: %s", e.Name) }

// InvalidRefError is raised when a ref name fails the naming
// invariants (empty, contains "..", contains a null byte, has a
// leading or trailing slash, or escapes refs/).
type InvalidRefError struct {
	Name   string
	Reason string
}

func (e *InvalidRefError) Error() string {
	return fmt.Sprintf("invalid ref name %q: %s", e.Name, e.Reason)
}

// ObjectNotFoundError is raised when an object file is missing from
// the store.
type ObjectNotFoundError struct{ Hash Hash }

func (e *ObjectNotFoundError) Error() string {
	return fmt.Sprintf("object not found: %s", e.Hash)
}

// CorruptObjectError is raised when a stored object's recomputed hash
// does not match its file name.
type CorruptObjectError struct{ Hash Hash }

func (e *CorruptObjectError) Error() string {
	return fmt.Sprintf("corrupt object: %s", e.Hash)
}

// InvalidObjectTypeError is raised when an object file decodes but is
// not the type expected at that path (blobs/trees/commits).
type InvalidObjectTypeError struct {
	Hash     Hash
	Expected string
}

func (e *InvalidObjectTypeError) Error() string {
	return fmt.Sprintf("object %s is not a %s", e.Hash, e.Expected)
}

// InvalidHashHexError is raised when a string fails to parse as 64
// hex characters.
type InvalidHashHexError struct{ Input string }

func (e *InvalidHashHexError) Error() string {
	return fmt.Sprintf("invalid hash hex: %q", e.Input)
}

// InvalidEntryNameError is raised when a tree entry's name is empty,
// contains '/' or a null byte, or is "." or "..".
type InvalidEntryNameError struct{ Name string }

func (e *InvalidEntryNameError) Error() string {
	return fmt.Sprintf("invalid tree entry name: %q", e.Name)
}

// DuplicateEntryNameError is raised when a tree has two entries with
// the same name.
type DuplicateEntryNameError struct{ Name string }

func (e *DuplicateEntryNameError) Error() string {
	return fmt.Sprintf("duplicate tree entry name: %q", e.Name)
}

// HardlinkTargetNotFoundError is raised when a hardlink entry's
// target_path does not resolve to a Regular entry in the same commit.
type HardlinkTargetNotFoundError struct{ TargetPath string }

func (e *HardlinkTargetNotFoundError) Error() string {
	return fmt.Sprintf("hardlink target not found: %s", e.TargetPath)
}

// UnionConflictError is raised when a union operation hits an
// unresolved conflict at path.
type UnionConflictError struct{ Path string }

func (e *UnionConflictError) Error() string {
	return fmt.Sprintf("union conflict at %s", e.Path)
}

// UnionTypeConflictError is raised when a union conflict involves
// entries of incompatible kinds at the same path.
type UnionTypeConflictError struct {
	Path  string
	Kinds []string
}

func (e *UnionTypeConflictError) Error() string {
	return fmt.Sprintf("union type conflict at %s: %v", e.Path, e.Kinds)
}

// InvalidConflictResolutionError is raised when a conflict resolution
// callback returns a value the union engine cannot act on.
type InvalidConflictResolutionError struct{ Path string }

func (e *InvalidConflictResolutionError) Error() string {
	return fmt.Sprintf("invalid conflict resolution at %s", e.Path)
}

// TargetNotEmptyError is raised by checkout when the target directory
// is non-empty and force is not set.
type TargetNotEmptyError struct{ Path string }

func (e *TargetNotEmptyError) Error() string {
	return fmt.Sprintf("checkout target not empty: %s", e.Path)
}

// DeviceNodePermissionError is raised when creating a device node
// fails with EPERM.
type DeviceNodePermissionError struct{ Path string }

func (e *DeviceNodePermissionError) Error() string {
	return fmt.Sprintf("permission denied creating device node: %s", e.Path)
}

// LockContentionError is raised when a repository lock is held by
// another process.
type LockContentionError struct{ Path string }

func (e *LockContentionError) Error() string {
	return fmt.Sprintf("repository locked: %s", e.Path)
}

// UnmappedUIDError is raised when a uid has no entry in the active
// namespace map and the caller requires one.
type UnmappedUIDError struct{ UID uint32 }

func (e *UnmappedUIDError) Error() string { return fmt.Sprintf("unmapped uid: %d", e.UID) }

// UnmappedGIDError is raised when a gid has no entry in the active
// namespace map and the caller requires one.
type UnmappedGIDError struct{ GID uint32 }

func (e *UnmappedGIDError) Error() string { return fmt.Sprintf("unmapped gid: %d", e.GID) }

// NamespaceParseError is raised when a /proc/self/{uid,gid}_map line
// has the right column count but an unparseable number.
type NamespaceParseError struct{ Line string }

func (e *NamespaceParseError) Error() string {
	return fmt.Sprintf("cannot parse namespace map line: %q", e.Line)
}

// RemoteNotFoundError is raised when a named remote is absent from
// config.toml.
type RemoteNotFoundError struct{ Name string }

func (e *RemoteNotFoundError) Error() string { return fmt.Sprintf("remote not found: %s", e.Name) }

// RemoteConnectionError wraps a transport-level connection failure.
type RemoteConnectionError struct {
	Remote string
	Err    error
}

func (e *RemoteConnectionError) Error() string {
	return fmt.Sprintf("connecting to remote %s: %v", e.Remote, e.Err)
}
func (e *RemoteConnectionError) Unwrap() error { return e.Err }

// RemoteConfigError is raised when a remote's URL fails to parse.
type RemoteConfigError struct {
	Remote string
	Reason string
}

func (e *RemoteConfigError) Error() string {
	return fmt.Sprintf("remote %s misconfigured: %s", e.Remote, e.Reason)
}

// TransportError is a generic wire-protocol failure not covered by a
// more specific kind (e.g. non-fast-forward, protocol desync).
type TransportError struct{ Message string }

func (e *TransportError) Error() string { return fmt.Sprintf("transport: %s", e.Message) }

// PathError wraps a low-level I/O failure with the path it concerns.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string { return fmt.Sprintf("%s: %v", e.Path, e.Err) }
func (e *PathError) Unwrap() error { return e.Err }

// XattrError wraps an extended-attribute operation failure.
type XattrError struct {
	Path    string
	Message string
}

func (e *XattrError) Error() string { return fmt.Sprintf("xattr on %s: %s", e.Path, e.Message) }

// EncodingError wraps a tree/commit/blob codec failure.
type EncodingError struct {
	Context string
	Err     error
}

func (e *EncodingError) Error() string { return fmt.Sprintf("%s: %v", e.Context, e.Err) }
func (e *EncodingError) Unwrap() error { return e.Err }
