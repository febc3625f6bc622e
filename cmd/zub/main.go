// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// zub is the command-line interface to a content-addressed
// filesystem store: initializing repositories, committing and
// checking out directory trees with full POSIX metadata, diffing and
// merging history, and syncing objects between repositories over a
// local pipe or SSH.
package main

import (
	"fmt"
	"os"

	"zub/cmd/zub/commands"
)

func main() {
	if err := commands.Root().Execute(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
