// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for testability.
// Commit timestamps are the only place this module reads wall-clock
// time; everything else is either supplied by the caller or derived
// from content, so the Clock interface is kept to the single method
// that is actually exercised.
package clock

import "time"

// Clock abstracts time.Now for testability. Production code injects
// Real(); tests inject Fake(t) to pin the commit timestamp.
type Clock interface {
	Now() time.Time
}

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Fake returns a Clock that always reports t, for deterministic tests.
func Fake(t time.Time) Clock { return fakeClock{t} }

type fakeClock struct{ t time.Time }

func (f fakeClock) Now() time.Time { return f.t }
