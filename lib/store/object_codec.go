// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"sort"

	"github.com/klauspost/compress/zstd"

	"zub/lib/codec"
)

// validateTree enforces spec.md §3's tree invariants: entry names are
// non-empty, contain no '/' or null byte, are not "." or "..", are
// unique, and the list is sorted ascending by name.
func validateTree(t Tree) error {
	seen := make(map[string]struct{}, len(t.Entries))
	for i, entry := range t.Entries {
		name := entry.Name
		if name == "" || name == "." || name == ".." {
			return &InvalidEntryNameError{Name: name}
		}
		for _, c := range []byte(name) {
			if c == '/' || c == 0 {
				return &InvalidEntryNameError{Name: name}
			}
		}
		if _, dup := seen[name]; dup {
			return &DuplicateEntryNameError{Name: name}
		}
		seen[name] = struct{}{}
		if i > 0 && t.Entries[i-1].Name >= name {
			return &InvalidEntryNameError{Name: name}
		}
	}
	return nil
}

// sortTree returns a copy of t with entries sorted ascending by name,
// for callers assembling a tree from unordered input (e.g. the commit
// pipeline, which builds directories bottom-up).
func sortTree(t Tree) Tree {
	sorted := Tree{Entries: append([]TreeEntry{}, t.Entries...)}
	sort.Slice(sorted.Entries, func(i, j int) bool {
		return sorted.Entries[i].Name < sorted.Entries[j].Name
	})
	return sorted
}

var zstdEncoder, _ = zstd.NewWriter(nil)
var zstdDecoder, _ = zstd.NewReader(nil)

func compress(data []byte) []byte {
	return zstdEncoder.EncodeAll(data, nil)
}

func decompress(data []byte) ([]byte, error) {
	return zstdDecoder.DecodeAll(data, nil)
}

// encodeTree produces the compressed bytes a tree object is stored
// and addressed as: CBOR Core Deterministic Encoding, then zstd.
func encodeTree(t Tree) ([]byte, error) {
	if err := validateTree(t); err != nil {
		return nil, err
	}
	raw, err := codec.Marshal(t)
	if err != nil {
		return nil, &EncodingError{Context: "encoding tree", Err: err}
	}
	return compress(raw), nil
}

// decodeTree parses compressed bytes back into a Tree, validating
// invariants on the way out.
func decodeTree(compressed []byte) (Tree, error) {
	raw, err := decompress(compressed)
	if err != nil {
		return Tree{}, &EncodingError{Context: "decompressing tree", Err: err}
	}
	var t Tree
	if err := codec.Unmarshal(raw, &t); err != nil {
		return Tree{}, &EncodingError{Context: "decoding tree", Err: err}
	}
	if err := validateTree(t); err != nil {
		return Tree{}, err
	}
	return t, nil
}

// encodeCommit produces the compressed bytes a commit object is
// stored and addressed as.
func encodeCommit(c Commit) ([]byte, error) {
	raw, err := codec.Marshal(c)
	if err != nil {
		return nil, &EncodingError{Context: "encoding commit", Err: err}
	}
	return compress(raw), nil
}

func decodeCommit(compressed []byte) (Commit, error) {
	raw, err := decompress(compressed)
	if err != nil {
		return Commit{}, &EncodingError{Context: "decompressing commit", Err: err}
	}
	var c Commit
	if err := codec.Unmarshal(raw, &c); err != nil {
		return Commit{}, &EncodingError{Context: "decoding commit", Err: err}
	}
	return c, nil
}
