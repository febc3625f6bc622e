// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"zub/cmd/zub/cli"
	"zub/lib/store"
	"zub/lib/store/transport"
)

// serveCommand is the remote-helper entry point: `ssh host zub serve
// <path>` spawns this, and the spawning side speaks the wire protocol
// over its stdin/stdout. It is never invoked directly by a human.
func serveCommand() *cli.Command {
	return &cli.Command{
		Name:    "serve",
		Summary: "Speak the object-transfer protocol over stdin/stdout (used by push/pull)",
		Usage:   "zub serve <path>",
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("serve requires exactly one repository path")
			}
			repo, err := store.Open(args[0])
			if err != nil {
				return err
			}
			conn := transport.NewConn(stdioPipe{})
			return transport.Serve(repo, conn)
		},
	}
}

// stdioPipe adapts the process's own stdin/stdout into an
// io.ReadWriteCloser for transport.NewConn.
type stdioPipe struct{}

func (stdioPipe) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioPipe) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdioPipe) Close() error                { return nil }
