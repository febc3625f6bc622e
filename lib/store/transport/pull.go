// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"zub/lib/store"
)

// PullOptions configures Pull.
type PullOptions struct {
	// FetchOnly retrieves objects without moving the local ref.
	FetchOnly bool
}

// PullReport summarizes one pull.
type PullReport struct {
	Transferred int
}

// Pull is the dual of Push: it asks the peer for ref's current hash,
// computes which objects the local repository lacks, requests them,
// and — unless FetchOnly is set — updates the local ref to match.
func Pull(dest *store.Repo, conn *Conn, ref string, opts PullOptions) (PullReport, error) {
	var report PullReport

	if err := conn.SendCommand("get-ref " + ref); err != nil {
		return report, err
	}
	status, err := conn.ReadStatus()
	if err != nil {
		return report, err
	}
	if status == "not-found" {
		if _, err := conn.ReadStatus(); err != nil { // consume "end"
			return report, err
		}
		return report, &store.RefNotFoundError{Name: ref}
	}
	if _, err := conn.ReadStatus(); err != nil { // consume "end"
		return report, err
	}
	remoteHash, err := store.ParseHash(status)
	if err != nil {
		return report, err
	}

	// The server does not know what the local repository already
	// has, so negotiation walks the commit graph lazily: each object
	// is requested only once its parent has revealed it, and objects
	// already present locally are skipped without a round trip.
	transferred, err := pullClosure(dest, conn, remoteHash)
	if err != nil {
		return report, err
	}
	report.Transferred = transferred

	if !opts.FetchOnly {
		if err := dest.WriteRef(ref, remoteHash); err != nil {
			return report, err
		}
	}

	return report, nil
}

// pullClosure walks the commit graph starting at remoteHash,
// requesting each not-yet-local object by hash as it is discovered,
// so trees and blobs several levels deep are fetched only after their
// parent commit has revealed them.
func pullClosure(dest *store.Repo, conn *Conn, start store.Hash) (int, error) {
	transferred := 0
	visited := map[store.Hash]bool{}

	var fetch func(kind ObjectKind, h store.Hash) error
	fetch = func(kind ObjectKind, h store.Hash) error {
		if visited[h] {
			return nil
		}
		visited[h] = true

		if objectExists(dest, kind, h) {
			return nil
		}

		if err := requestObject(dest, conn, kind, h); err != nil {
			return err
		}
		transferred++
		return nil
	}

	var walkTree func(h store.Hash) error
	walkTree = func(h store.Hash) error {
		if err := fetch(KindTree, h); err != nil {
			return err
		}
		tree, err := dest.ReadTree(h)
		if err != nil {
			return err
		}
		for _, e := range tree.Entries {
			switch e.Kind.Type {
			case store.KindDirectory:
				if err := walkTree(e.Kind.Hash); err != nil {
					return err
				}
			case store.KindRegular, store.KindSymlink:
				if err := fetch(KindBlob, e.Kind.Hash); err != nil {
					return err
				}
			}
		}
		return nil
	}

	var walkCommit func(h store.Hash) error
	walkCommit = func(h store.Hash) error {
		if visited[h] && dest.CommitExists(h) {
			return nil
		}
		if err := fetch(KindCommit, h); err != nil {
			return err
		}
		commit, err := dest.ReadCommit(h)
		if err != nil {
			return err
		}
		if err := walkTree(commit.Tree); err != nil {
			return err
		}
		for _, p := range commit.Parents {
			if err := walkCommit(p); err != nil {
				return err
			}
		}
		return nil
	}

	if err := walkCommit(start); err != nil {
		return transferred, err
	}
	return transferred, nil
}

// requestObject asks the peer for a single object and stores it
// locally, verifying its hash on receipt.
func requestObject(dest *store.Repo, conn *Conn, kind ObjectKind, h store.Hash) error {
	if err := conn.SendCommand("fetch-object " + string(kind) + " " + h.String()); err != nil {
		return err
	}
	gotKind, gotHash, size, err := conn.ReadObjectHeader()
	if err != nil {
		return err
	}
	if gotHash != h || gotKind != kind {
		return &store.TransportError{Message: "peer sent unrequested object " + gotHash.String()}
	}
	payload, err := conn.ReadObjectPayload(size)
	if err != nil {
		return err
	}
	if err := storeReceivedObject(dest, kind, h, payload); err != nil {
		if err := conn.SendNotFound(); err != nil {
			return err
		}
		return err
	}
	if err := conn.SendOK(); err != nil {
		return err
	}
	_, err = conn.ReadStatus() // consume peer's "end"
	return err
}
