// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the zub CLI's command tree: one *cli.Command
// per subcommand, assembled into the tree returned by Root.
package commands

import (
	"zub/cmd/zub/cli"
)

// Root builds and returns the complete zub CLI command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "zub",
		Description: `zub: content-addressed filesystem store and version control.

Commits directory trees (with full POSIX ownership, permissions, and
extended attributes) into a content-addressed object store, checks
them back out, diffs and merges history, and syncs objects between
repositories over a local pipe or SSH.`,
		Subcommands: []*cli.Command{
			initCommand(),
			commitCommand(),
			checkoutCommand(),
			diffCommand(),
			logCommand(),
			lsTreeCommand(),
			unionCommand(),
			fsckCommand(),
			gcCommand(),
			mapCommand(),
			statsCommand(),
			truncateCommand(),
			exportCommand(),
			pushCommand(),
			pullCommand(),
			serveCommand(),
		},
		Examples: []cli.Example{
			{Description: "Create a new repository", Command: "zub init /srv/repo"},
			{Description: "Commit a directory onto the main ref", Command: "zub commit --ref main --message 'snapshot' ./data"},
			{Description: "Check out the main ref into a directory", Command: "zub checkout main ./restore"},
			{Description: "Push main to a configured remote", Command: "zub push origin main"},
		},
	}
}
