// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"zub/cmd/zub/cli"
	"zub/lib/store/ops"
)

func truncateCommand() *cli.Command {
	var repoPath string

	flags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("truncate", pflag.ContinueOnError)
		fs.StringVar(&repoPath, "repo", "", "repository path (default: discover from cwd)")
		return fs
	}

	return &cli.Command{
		Name:    "truncate",
		Summary: "Move a ref back to an ancestor commit",
		Usage:   "zub truncate [--repo path] <ref> <ancestor-ref-or-hash>",
		Flags:   flags,
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("truncate requires a ref and an ancestor ref-or-hash")
			}
			repo, err := openRepo(repoPath)
			if err != nil {
				return err
			}

			ancestorHash, err := repo.ResolveRef(args[1])
			if err != nil {
				return err
			}

			lock, err := repo.Lock()
			if err != nil {
				return err
			}
			defer lock.Unlock()

			return ops.Truncate(repo, args[0], ancestorHash)
		},
	}
}
