// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"bytes"
	"os"

	"zub/lib/store"
)

// PushOptions configures Push.
type PushOptions struct {
	// Force skips the fast-forward check.
	Force bool
}

// PushReport summarizes one push.
type PushReport struct {
	Transferred int
	Hardlinked  int
}

// Push computes the reachability closure of ref's commit in source,
// asks the destination which of those objects it lacks, streams the
// missing ones, verifies the fast-forward condition, and finally
// updates the destination's ref.
func Push(source *store.Repo, conn *Conn, ref string, opts PushOptions) (PushReport, error) {
	var report PushReport

	sourceHash, err := source.ResolveRef(ref)
	if err != nil {
		return report, err
	}

	closure, err := reachabilityClosureFrom(source, sourceHash)
	if err != nil {
		return report, err
	}

	var wantLines []string
	for h, kind := range closure {
		wantLines = append(wantLines, string(kind)+" "+h.String())
	}
	if err := conn.SendCommand("want-objects"); err != nil {
		return report, err
	}
	if err := conn.SendHashLines(wantLines); err != nil {
		return report, err
	}
	missing, err := conn.ReadHashLines()
	if err != nil {
		return report, err
	}

	for _, line := range missing {
		kind, hash, err := splitKindHash(line)
		if err != nil {
			return report, err
		}
		if err := sendObject(source, conn, kind, hash); err != nil {
			return report, err
		}
		report.Transferred++
	}

	if !opts.Force {
		if err := conn.SendCommand("get-ref " + ref); err != nil {
			return report, err
		}
		status, err := conn.ReadStatus()
		if err != nil {
			return report, err
		}
		if status != "not-found" {
			if _, err := conn.ReadStatus(); err != nil { // consume "end"
				return report, err
			}
			destHash, err := store.ParseHash(status)
			if err != nil {
				return report, err
			}
			ancestor, err := isAncestor(source, destHash, sourceHash)
			if err != nil {
				return report, err
			}
			if !ancestor {
				return report, &store.TransportError{Message: "non-fast-forward"}
			}
		} else {
			if _, err := conn.ReadStatus(); err != nil { // consume "end"
				return report, err
			}
		}
	}

	if err := conn.SendCommand("update-ref " + ref + " " + sourceHash.String()); err != nil {
		return report, err
	}
	if status, err := conn.ReadStatus(); err != nil || status != "ok" {
		if err != nil {
			return report, err
		}
		return report, &store.TransportError{Message: "update-ref rejected"}
	}
	if _, err := conn.ReadStatus(); err != nil { // consume "end"
		return report, err
	}

	return report, nil
}

func splitKindHash(line string) (ObjectKind, store.Hash, error) {
	var kindStr, hexStr string
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' {
			kindStr, hexStr = line[:i], line[i+1:]
			break
		}
	}
	h, err := store.ParseHash(hexStr)
	if err != nil {
		return "", store.Hash{}, err
	}
	return ObjectKind(kindStr), h, nil
}

func sendObject(repo *store.Repo, conn *Conn, kind ObjectKind, hash store.Hash) error {
	var data []byte
	var err error
	switch kind {
	case KindBlob:
		data, err = repo.ReadBlobBytes(hash)
	case KindTree:
		data, err = readRawTreeCommit(repo.TreePath(hash))
	case KindCommit:
		data, err = readRawTreeCommit(repo.CommitPath(hash))
	}
	if err != nil {
		return err
	}
	if err := conn.SendObjectHeader(kind, hash, int64(len(data))); err != nil {
		return err
	}
	if err := conn.SendObjectPayload(bytesReader(data), int64(len(data))); err != nil {
		return err
	}
	status, err := conn.ReadStatus()
	if err != nil {
		return err
	}
	if status != "ok" {
		return &store.TransportError{Message: "object rejected: " + status}
	}
	_, err = conn.ReadStatus() // consume "end"
	return err
}

// isAncestor reports whether ancestor is reachable from descendant by
// walking every parent (not just parents[0]) — see DESIGN.md decision
// 3: a merge can fast-forward over an old tip reachable only through
// a non-first parent, and a first-parent-only check would wrongly
// reject that as non-fast-forward.
func isAncestor(repo *store.Repo, ancestor, descendant store.Hash) (bool, error) {
	if ancestor == descendant {
		return true, nil
	}
	visited := map[store.Hash]bool{}
	queue := []store.Hash{descendant}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if visited[h] {
			continue
		}
		visited[h] = true
		if h == ancestor {
			return true, nil
		}
		commit, err := repo.ReadCommit(h)
		if err != nil {
			return false, err
		}
		queue = append(queue, commit.Parents...)
	}
	return false, nil
}

// reachabilityClosureFrom computes every object reachable from a
// single commit (not every ref), for push negotiation.
func reachabilityClosureFrom(repo *store.Repo, start store.Hash) (map[store.Hash]ObjectKind, error) {
	closure := make(map[store.Hash]ObjectKind)

	var visitTree func(h store.Hash) error
	visitTree = func(h store.Hash) error {
		if _, ok := closure[h]; ok {
			return nil
		}
		closure[h] = KindTree
		tree, err := repo.ReadTree(h)
		if err != nil {
			return err
		}
		for _, e := range tree.Entries {
			switch e.Kind.Type {
			case store.KindDirectory:
				if err := visitTree(e.Kind.Hash); err != nil {
					return err
				}
			case store.KindRegular, store.KindSymlink:
				closure[e.Kind.Hash] = KindBlob
			}
		}
		return nil
	}

	var visitCommit func(h store.Hash) error
	visitCommit = func(h store.Hash) error {
		if _, ok := closure[h]; ok {
			return nil
		}
		closure[h] = KindCommit
		commit, err := repo.ReadCommit(h)
		if err != nil {
			return err
		}
		if err := visitTree(commit.Tree); err != nil {
			return err
		}
		for _, p := range commit.Parents {
			if err := visitCommit(p); err != nil {
				return err
			}
		}
		return nil
	}

	if err := visitCommit(start); err != nil {
		return nil, err
	}
	return closure, nil
}

func readRawTreeCommit(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &store.PathError{Path: path, Err: err}
	}
	return data, nil
}

func bytesReader(b []byte) *bytes.Reader { return bytes.NewReader(b) }
