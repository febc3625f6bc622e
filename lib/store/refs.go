// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// validateRefName enforces spec.md §4.E's ref naming invariants: not
// empty, no "..", no null bytes, no leading slash, no trailing slash,
// and the resolved path must stay strictly inside refs/.
func validateRefName(refsRoot, name string) (string, error) {
	if name == "" {
		return "", &InvalidRefError{Name: name, Reason: "empty"}
	}
	if strings.Contains(name, "\x00") {
		return "", &InvalidRefError{Name: name, Reason: "contains null byte"}
	}
	if strings.HasPrefix(name, "/") {
		return "", &InvalidRefError{Name: name, Reason: "leading slash"}
	}
	if strings.HasSuffix(name, "/") {
		return "", &InvalidRefError{Name: name, Reason: "trailing slash"}
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return "", &InvalidRefError{Name: name, Reason: "contains .."}
		}
	}

	full := filepath.Join(refsRoot, name)
	rel, err := filepath.Rel(refsRoot, full)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", &InvalidRefError{Name: name, Reason: "escapes refs/"}
	}
	return full, nil
}

// refsRoot returns refs/ itself, the root both heads/ and tags/ live
// under, since ref names like "heads/main" are relative to it.
func (r *Repo) refsRoot() string { return filepath.Join(r.Root, "refs") }

// ReadRef reads the hash a ref currently points at.
func (r *Repo) ReadRef(name string) (Hash, error) {
	path, err := validateRefName(r.refsRoot(), name)
	if err != nil {
		return Hash{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Hash{}, &RefNotFoundError{Name: name}
		}
		return Hash{}, &PathError{Path: path, Err: err}
	}
	return ParseHash(strings.TrimSpace(string(data)))
}

// WriteRef atomically points ref name at hash, creating it if absent.
func (r *Repo) WriteRef(name string, hash Hash) error {
	path, err := validateRefName(r.refsRoot(), name)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &PathError{Path: dir, Err: err}
	}

	tmp := filepath.Join(dir, "."+uuid.New().String())
	if err := os.WriteFile(tmp, []byte(hash.String()+"\n"), 0o644); err != nil {
		return &PathError{Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &PathError{Path: path, Err: err}
	}
	return nil
}

// DeleteRef removes a ref. Not an error if it did not exist.
func (r *Repo) DeleteRef(name string) error {
	path, err := validateRefName(r.refsRoot(), name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &PathError{Path: path, Err: err}
	}
	return nil
}

// RefExists reports whether name resolves to a ref file on disk.
func (r *Repo) RefExists(name string) bool {
	path, err := validateRefName(r.refsRoot(), name)
	if err != nil {
		return false
	}
	_, statErr := os.Stat(path)
	return statErr == nil
}

// ListRefs returns every ref under refs/, as POSIX-normalized names
// relative to refs/ (e.g. "heads/main", "tags/v1").
func (r *Repo) ListRefs() ([]string, error) {
	return r.ListRefsMatching("")
}

// ListRefsMatching returns every ref whose name has the given prefix
// (pass "" to match everything).
func (r *Repo) ListRefsMatching(prefix string) ([]string, error) {
	root := r.refsRoot()
	var names []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, prefix) {
			names = append(names, rel)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &PathError{Path: root, Err: err}
	}
	sort.Strings(names)
	return names, nil
}

// DeleteRefsMatching removes every ref whose name has the given
// prefix, returning the names removed.
func (r *Repo) DeleteRefsMatching(prefix string) ([]string, error) {
	names, err := r.ListRefsMatching(prefix)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		if err := r.DeleteRef(name); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// ResolveRef resolves x to a Hash: if x is exactly 64 hex characters
// it is taken as a literal hash (bypassing ref lookup entirely),
// otherwise it is looked up as a ref name.
func (r *Repo) ResolveRef(x string) (Hash, error) {
	if len(x) == 64 {
		if h, err := ParseHash(x); err == nil {
			return h, nil
		}
	}
	h, err := r.ReadRef(x)
	if err != nil {
		if _, ok := err.(*RefNotFoundError); ok {
			return Hash{}, &RefNotFoundError{Name: x}
		}
		return Hash{}, err
	}
	return h, nil
}
