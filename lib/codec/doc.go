// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the repository's standard CBOR encoding
// configuration. Tree and commit objects are serialized with Core
// Deterministic Encoding (RFC 8949 §4.2) before compression: sorted map
// keys, smallest integer encoding, no indefinite-length items. Same
// logical object always produces identical bytes, which matters because
// the object's hash is computed over the encoded form.
//
//	data, err := codec.Marshal(tree)
//	err = codec.Unmarshal(data, &tree)
//
// # Struct Tag Rules
//
// Every on-disk type uses `cbor` struct tags. Types are never also
// marshaled to JSON, so there is no fallback convention to track.
package codec
