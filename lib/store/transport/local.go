// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"net"
	"path/filepath"

	"zub/lib/store"
)

// LocalPushReport is returned by LocalPush.
type LocalPushReport = PushReport

// LocalPullReport is returned by LocalPull.
type LocalPullReport = PullReport

// LocalPush transfers ref from source to dest, both open on the same
// filesystem, without spawning a subprocess or opening a socket: the
// server side runs in a goroutine connected to the client side by an
// in-memory pipe.
//
// source and dest are locked in a fixed order — by lexicographically
// comparing their root paths — regardless of which is conceptually
// the "source" and which the "destination", so two processes pushing
// in opposite directions between the same pair of repositories cannot
// deadlock each other by acquiring the two locks in reverse order.
func LocalPush(source, dest *store.Repo, ref string, opts PushOptions) (PushReport, error) {
	first, second, err := lockPairInOrder(source, dest)
	if err != nil {
		return PushReport{}, err
	}
	defer second.Unlock()
	defer first.Unlock()

	clientEnd, serverEnd := net.Pipe()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- Serve(dest, NewConn(serverEnd))
	}()

	conn := NewConn(clientEnd)
	report, err := Push(source, conn, ref, opts)
	conn.SendCommand("quit")
	conn.Close()
	<-serverErr

	return report, err
}

// LocalPull transfers ref from source to dest, mirroring LocalPush.
func LocalPull(dest, source *store.Repo, ref string, opts PullOptions) (PullReport, error) {
	first, second, err := lockPairInOrder(dest, source)
	if err != nil {
		return PullReport{}, err
	}
	defer second.Unlock()
	defer first.Unlock()

	clientEnd, serverEnd := net.Pipe()

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- Serve(source, NewConn(serverEnd))
	}()

	conn := NewConn(clientEnd)
	report, err := Pull(dest, conn, ref, opts)
	conn.SendCommand("quit")
	conn.Close()
	<-serverErr

	return report, err
}

// lockPairInOrder locks both repositories for the duration of a local
// transfer, always acquiring them in an order determined by comparing
// absolute root paths rather than by argument position. The first
// return value is the lock that was acquired first.
func lockPairInOrder(a, b *store.Repo) (first, second *store.RepoLock, err error) {
	aRoot, errA := filepath.Abs(a.Root)
	bRoot, errB := filepath.Abs(b.Root)
	if errA != nil || errB != nil {
		aRoot, bRoot = a.Root, b.Root
	}
	firstRepo, secondRepo := a, b
	if bRoot < aRoot {
		firstRepo, secondRepo = b, a
	}

	firstLock, err := firstRepo.Lock()
	if err != nil {
		return nil, nil, err
	}
	secondLock, err := secondRepo.Lock()
	if err != nil {
		firstLock.Unlock()
		return nil, nil, err
	}
	return firstLock, secondLock, nil
}
