// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bytes"
	"strconv"

	"zub/lib/store"
)

func parseSize(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &store.TransportError{Message: "malformed size: " + s}
	}
	return n, nil
}

// storeReceivedObject places a transferred object's bytes into repo.
// Trees and commits are first verified against the declared hash — a
// mismatch aborts the transfer as CorruptObjectError rather than
// silently storing bad data. Blobs are stored without verification.
func storeReceivedObject(repo *store.Repo, kind ObjectKind, hash store.Hash, payload []byte) error {
	switch kind {
	case KindTree:
		if store.ComputeCompressedHash(payload) != hash {
			return &store.CorruptObjectError{Hash: hash}
		}
		if _, err := repo.ReadTree(hash); err == nil {
			return nil // already present
		}
		return writeRawObject(repo.TreePath(hash), payload)

	case KindCommit:
		if store.ComputeCompressedHash(payload) != hash {
			return &store.CorruptObjectError{Hash: hash}
		}
		return writeRawObject(repo.CommitPath(hash), payload)

	case KindBlob:
		// A blob's hash covers its header metadata (uid/gid/mode/
		// xattrs), but the payload carries only the content bytes
		// (the sender reads it with ReadBlobBytes), so the hash
		// cannot be recomputed here and the blob is written as
		// received, unverified.
		return writeRawObject(repo.BlobPath(hash), payload)
	}
	return &store.InvalidObjectTypeError{Hash: hash, Expected: string(kind)}
}

func writeRawObject(path string, data []byte) error {
	return store.WriteObjectFile(path, bytes.NewReader(data))
}
