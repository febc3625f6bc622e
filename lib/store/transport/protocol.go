// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport implements zub's wire protocol: a line-oriented
// request/response exchange used to list refs, negotiate which
// objects are missing, and stream objects between two repositories,
// whether local (same filesystem) or remote (over an SSH-spawned
// subprocess, treated as nothing more than a byte channel).
package transport

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"zub/lib/store"
)

// ObjectKind names which object-kind directory a hash belongs to, as
// used on the wire ("blob", "tree", "commit").
type ObjectKind string

const (
	KindBlob   ObjectKind = "blob"
	KindTree   ObjectKind = "tree"
	KindCommit ObjectKind = "commit"
)

// Conn is a line-oriented connection to a peer speaking the wire
// protocol. Lines are \n-terminated ASCII; object payloads are
// exactly the declared size in bytes immediately following the
// header line.
type Conn struct {
	r *bufio.Reader
	w *bufio.Writer
	c io.Closer
}

// NewConn wraps rw (a net.Conn, or the stdin/stdout pipe of an SSH
// subprocess) as a protocol connection.
func NewConn(rw io.ReadWriteCloser) *Conn {
	return &Conn{r: bufio.NewReader(rw), w: bufio.NewWriter(rw), c: rw}
}

func (c *Conn) Close() error { return c.c.Close() }

func (c *Conn) writeLine(line string) error {
	if _, err := c.w.WriteString(line); err != nil {
		return err
	}
	if _, err := c.w.WriteString("\n"); err != nil {
		return err
	}
	return c.w.Flush()
}

func (c *Conn) readLine() (string, error) {
	line, err := c.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\n"), nil
}

// SendCommand writes a single command line (e.g. "list-refs", or
// "get-ref main").
func (c *Conn) SendCommand(cmd string) error { return c.writeLine(cmd) }

// SendHashLines writes one hash-containing line per entry followed by
// "end".
func (c *Conn) SendHashLines(lines []string) error {
	for _, l := range lines {
		if err := c.writeLine(l); err != nil {
			return err
		}
	}
	return c.writeLine("end")
}

// ReadHashLines reads lines until "end", returning them.
func (c *Conn) ReadHashLines() ([]string, error) {
	var lines []string
	for {
		line, err := c.readLine()
		if err != nil {
			return nil, err
		}
		if line == "end" {
			return lines, nil
		}
		lines = append(lines, line)
	}
}

// SendObjectHeader writes "object <type> <hex> <size>".
func (c *Conn) SendObjectHeader(kind ObjectKind, h store.Hash, size int64) error {
	return c.writeLine(fmt.Sprintf("object %s %s %d", kind, h, size))
}

// SendObjectPayload writes exactly size bytes read from r, with no
// trailing newline (the size itself delimits the payload).
func (c *Conn) SendObjectPayload(r io.Reader, size int64) error {
	if _, err := io.CopyN(c.w, r, size); err != nil {
		return err
	}
	return c.w.Flush()
}

// ReadObjectHeader parses an "object <type> <hex> <size>" line.
func (c *Conn) ReadObjectHeader() (ObjectKind, store.Hash, int64, error) {
	line, err := c.readLine()
	if err != nil {
		return "", store.Hash{}, 0, err
	}
	fields := strings.Fields(line)
	if len(fields) != 4 || fields[0] != "object" {
		return "", store.Hash{}, 0, &store.TransportError{Message: "malformed object header: " + line}
	}
	h, err := store.ParseHash(fields[2])
	if err != nil {
		return "", store.Hash{}, 0, err
	}
	size, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return "", store.Hash{}, 0, &store.TransportError{Message: "malformed object size: " + line}
	}
	return ObjectKind(fields[1]), h, size, nil
}

// ReadObjectPayload reads exactly size bytes from the connection.
func (c *Conn) ReadObjectPayload(size int64) ([]byte, error) {
	buf := make([]byte, size)
	if _, err := io.ReadFull(c.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// SendOK / SendNotFound / SendEnd / ReadStatus are small fixed
// single-line responses the protocol uses throughout.
func (c *Conn) SendOK() error       { return c.writeLine("ok") }
func (c *Conn) SendNotFound() error { return c.writeLine("not-found") }
func (c *Conn) SendEnd() error      { return c.writeLine("end") }

func (c *Conn) ReadStatus() (string, error) { return c.readLine() }
