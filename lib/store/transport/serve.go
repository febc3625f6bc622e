// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"strings"

	"zub/lib/store"
)

// Serve handles one connection against repo until the peer sends
// "quit" or the connection closes. Each command is handled to
// completion before the next is read; the server never streams
// objects the client did not explicitly request.
func Serve(repo *store.Repo, conn *Conn) error {
	for {
		line, err := conn.readLine()
		if err != nil {
			return nil // peer disconnected
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit":
			return conn.Close()

		case "list-refs":
			if err := serveListRefs(repo, conn); err != nil {
				return err
			}

		case "get-ref":
			if len(fields) < 2 {
				return &store.TransportError{Message: "get-ref requires a name"}
			}
			if err := serveGetRef(repo, conn, fields[1]); err != nil {
				return err
			}

		case "want-objects":
			if err := serveWantObjects(repo, conn); err != nil {
				return err
			}

		case "have-objects":
			if err := serveHaveObjects(repo, conn); err != nil {
				return err
			}

		case "object":
			if err := serveReceiveObject(repo, conn, fields); err != nil {
				return err
			}

		case "fetch-object":
			if len(fields) != 3 {
				return &store.TransportError{Message: "fetch-object requires a type and hash"}
			}
			if err := serveFetchObject(repo, conn, ObjectKind(fields[1]), fields[2]); err != nil {
				return err
			}

		case "update-ref":
			if len(fields) < 3 {
				return &store.TransportError{Message: "update-ref requires a name and hash"}
			}
			if err := serveUpdateRef(repo, conn, fields[1], fields[2]); err != nil {
				return err
			}

		default:
			return &store.TransportError{Message: "unknown command: " + fields[0]}
		}
	}
}

func serveListRefs(repo *store.Repo, conn *Conn) error {
	refs, err := repo.ListRefs()
	if err != nil {
		return err
	}
	var lines []string
	for _, name := range refs {
		h, err := repo.ReadRef(name)
		if err != nil {
			continue
		}
		lines = append(lines, h.String()+" "+name)
	}
	return conn.SendHashLines(lines)
}

func serveGetRef(repo *store.Repo, conn *Conn, name string) error {
	h, err := repo.ReadRef(name)
	if err != nil {
		if err := conn.SendNotFound(); err != nil {
			return err
		}
		return conn.SendEnd()
	}
	if err := conn.writeLine(h.String()); err != nil {
		return err
	}
	return conn.SendEnd()
}

// serveWantObjects answers "which of these hashes do I lack",
// allowing the client (push side) to send only what the server needs.
func serveWantObjects(repo *store.Repo, conn *Conn) error {
	requested, err := conn.ReadHashLines()
	if err != nil {
		return err
	}
	var missing []string
	for _, line := range requested {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		kind, h := ObjectKind(fields[0]), fields[1]
		hash, err := store.ParseHash(h)
		if err != nil {
			continue
		}
		if !objectExists(repo, kind, hash) {
			missing = append(missing, line)
		}
	}
	return conn.SendHashLines(missing)
}

// serveHaveObjects answers "have-objects" exactly as want-objects is
// answered: the reply names the listed objects this server does not
// have. It does not work out which objects the client lacks. Pull
// does not send this command; it requests objects with fetch-object.
func serveHaveObjects(repo *store.Repo, conn *Conn) error {
	return serveWantObjects(repo, conn)
}

func objectExists(repo *store.Repo, kind ObjectKind, h store.Hash) bool {
	switch kind {
	case KindBlob:
		return repo.BlobExists(h)
	case KindTree:
		return repo.TreeExists(h)
	case KindCommit:
		return repo.CommitExists(h)
	}
	return false
}

func serveReceiveObject(repo *store.Repo, conn *Conn, headerFields []string) error {
	if len(headerFields) != 4 {
		return &store.TransportError{Message: "malformed object header"}
	}
	kind := ObjectKind(headerFields[1])
	hash, err := store.ParseHash(headerFields[2])
	if err != nil {
		return err
	}
	size, err := parseSize(headerFields[3])
	if err != nil {
		return err
	}

	payload, err := conn.ReadObjectPayload(size)
	if err != nil {
		return err
	}
	if err := storeReceivedObject(repo, kind, hash, payload); err != nil {
		return err
	}
	if err := conn.SendOK(); err != nil {
		return err
	}
	return conn.SendEnd()
}

// serveFetchObject answers a pull-side request for a single object by
// hash, streaming it back with its own header and payload.
func serveFetchObject(repo *store.Repo, conn *Conn, kind ObjectKind, hexHash string) error {
	h, err := store.ParseHash(hexHash)
	if err != nil {
		return err
	}

	var data []byte
	switch kind {
	case KindBlob:
		data, err = repo.ReadBlobBytes(h)
	case KindTree:
		data, err = readRawTreeCommit(repo.TreePath(h))
	case KindCommit:
		data, err = readRawTreeCommit(repo.CommitPath(h))
	default:
		err = &store.InvalidObjectTypeError{Hash: h, Expected: string(kind)}
	}
	if err != nil {
		return err
	}

	if err := conn.SendObjectHeader(kind, h, int64(len(data))); err != nil {
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
		return &store.TransportError{Message: "client rejected object: " + status}
	}
	return conn.SendEnd()
}

// serveUpdateRef applies a ref update under the repository's
// exclusive lock, matching every other ref-mutating entry point.
func serveUpdateRef(repo *store.Repo, conn *Conn, name, hexHash string) error {
	h, err := store.ParseHash(hexHash)
	if err != nil {
		return err
	}

	lock, err := repo.Lock()
	if err != nil {
		return err
	}
	writeErr := repo.WriteRef(name, h)
	lock.Unlock()
	if writeErr != nil {
		return writeErr
	}

	if err := conn.SendOK(); err != nil {
		return err
	}
	return conn.SendEnd()
}
