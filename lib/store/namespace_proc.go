// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package store

import "os"

// CurrentUIDMap reads /proc/self/uid_map for the running process. If
// the file cannot be read (not running under Linux, or the process
// has no user namespace), it returns the identity mapping rather than
// an error, since a repository created outside a user namespace has
// nothing else to record.
func CurrentUIDMap() []MapEntry {
	return readProcIDMap("/proc/self/uid_map")
}

// CurrentGIDMap is the gid analog of CurrentUIDMap.
func CurrentGIDMap() []MapEntry {
	return readProcIDMap("/proc/self/gid_map")
}

func readProcIDMap(path string) []MapEntry {
	f, err := os.Open(path)
	if err != nil {
		return IdentityNsConfig().UIDMap
	}
	defer f.Close()

	entries, err := ParseIDMap(f)
	if err != nil || len(entries) == 0 {
		return IdentityNsConfig().UIDMap
	}
	return entries
}
