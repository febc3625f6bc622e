// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"zub/lib/store"
)

// sshProcess adapts a spawned SSH subprocess's stdin/stdout pipes
// into an io.ReadWriteCloser. Closing it closes stdin (signaling EOF
// to the remote side) and waits for the process to exit.
type sshProcess struct {
	stdin  io.WriteCloser
	stdout io.ReadCloser
	cmd    *exec.Cmd
}

func (p *sshProcess) Read(b []byte) (int, error)  { return p.stdout.Read(b) }
func (p *sshProcess) Write(b []byte) (int, error) { return p.stdin.Write(b) }

func (p *sshProcess) Close() error {
	stdinErr := p.stdin.Close()
	waitErr := p.cmd.Wait()
	if stdinErr != nil {
		return stdinErr
	}
	return waitErr
}

// DialSSH spawns `ssh <host> zub serve <remotePath>` and returns a
// connection ready for NewConn. The remote process is treated as
// nothing more than a byte channel speaking the same line-oriented
// protocol a local pipe or TCP socket would; this process never
// parses SSH's own framing, only the bytes that come back over it.
func DialSSH(ctx context.Context, host, remotePath string) (*Conn, func() error, error) {
	cmd := exec.CommandContext(ctx, "ssh", host, "zub", "serve", remotePath)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, &store.TransportError{Message: fmt.Sprintf("ssh stdin pipe: %v", err)}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, &store.TransportError{Message: fmt.Sprintf("ssh stdout pipe: %v", err)}
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, &store.RemoteConnectionError{Remote: host, Err: err}
	}

	proc := &sshProcess{stdin: stdin, stdout: stdout, cmd: cmd}
	conn := NewConn(proc)
	return conn, proc.Close, nil
}

// SSHPush opens an SSH connection to host, serves push against the
// repository at remotePath, and closes the connection when done.
func SSHPush(ctx context.Context, source *store.Repo, host, remotePath, ref string, opts PushOptions) (PushReport, error) {
	conn, closeConn, err := DialSSH(ctx, host, remotePath)
	if err != nil {
		return PushReport{}, err
	}
	defer closeConn()

	report, err := Push(source, conn, ref, opts)
	conn.SendCommand("quit")
	return report, err
}

// SSHPull opens an SSH connection to host, serves pull against the
// repository at remotePath, and closes the connection when done. The
// local destination is locked for the duration, since Pull writes
// objects and (unless FetchOnly) moves a local ref.
func SSHPull(ctx context.Context, dest *store.Repo, host, remotePath, ref string, opts PullOptions) (PullReport, error) {
	lock, err := dest.Lock()
	if err != nil {
		return PullReport{}, err
	}
	defer lock.Unlock()

	conn, closeConn, err := DialSSH(ctx, host, remotePath)
	if err != nil {
		return PullReport{}, err
	}
	defer closeConn()

	report, err := Pull(dest, conn, ref, opts)
	conn.SendCommand("quit")
	return report, err
}
