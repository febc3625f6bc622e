// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash is the 32-byte SHA-256 address of a stored object. The zero
// value is the all-zero sentinel and must never name a stored object.
type Hash [32]byte

// ZeroHash is the all-zero sentinel hash.
var ZeroHash Hash

// IsZero reports whether h is the all-zero sentinel.
func (h Hash) IsZero() bool { return h == ZeroHash }

// String returns the 64 lowercase hex characters for h.
func (h Hash) String() string { return hex.EncodeToString(h[:]) }

// Debug returns the first 12 hex characters of h, for log lines where
// the full 64-character hash is noise.
func (h Hash) Debug() string { return h.String()[:12] }

// ParseHash parses exactly 64 lowercase or uppercase hex characters
// into a Hash. Any other length, or any non-hex character, is an
// InvalidHashHex error.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != 64 {
		return h, &InvalidHashHexError{Input: s}
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return h, &InvalidHashHexError{Input: s}
	}
	copy(h[:], decoded)
	return h, nil
}

// HashBytes computes the SHA-256 hash of data directly, with no
// structural framing. Used by callers that already have a fully
// formed byte buffer (e.g. compressed tree/commit encodings).
func HashBytes(data []byte) Hash {
	var h Hash
	sum := sha256.Sum256(data)
	h = Hash(sum)
	return h
}

// PathComponents splits h into the two path segments used to shard
// objects on disk: the first 2 hex characters (the shard directory)
// and the remaining 62 (the file name within it).
func (h Hash) PathComponents() (shard, rest string) {
	full := h.String()
	return full[:2], full[2:]
}

// Compare returns -1, 0, or 1 as h is less than, equal to, or greater
// than other, using ordinary byte-wise ordering. This gives objects
// and refs a deterministic total order wherever one is needed (e.g.
// tree entry sorting uses name, not hash, but commit parent lists and
// test fixtures benefit from a stable hash order too).
func (h Hash) Compare(other Hash) int {
	for i := range h {
		if h[i] != other[i] {
			if h[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// MarshalText implements encoding.TextMarshaler so Hash round-trips
// through CBOR and TOML as a plain hex string rather than a byte array.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := ParseHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// GoString makes Hash print its debug form under %#v and in test
// failure diffs, instead of a raw 32-byte array dump.
func (h Hash) GoString() string {
	return fmt.Sprintf("store.Hash(%s…)", h.Debug())
}
