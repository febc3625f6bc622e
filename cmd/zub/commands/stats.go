// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"zub/cmd/zub/cli"
	"zub/lib/store/ops"
)

func statsCommand() *cli.Command {
	var repoPath string

	flags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("stats", pflag.ContinueOnError)
		fs.StringVar(&repoPath, "repo", "", "repository path (default: discover from cwd)")
		return fs
	}

	return &cli.Command{
		Name:    "stats",
		Summary: "Report logical and stored size for a commit's tree",
		Usage:   "zub stats [--repo path] <ref-or-hash>",
		Flags:   flags,
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("stats requires a ref-or-hash argument")
			}
			repo, err := openRepo(repoPath)
			if err != nil {
				return err
			}

			commitHash, err := repo.ResolveRef(args[0])
			if err != nil {
				return err
			}
			commit, err := repo.ReadCommit(commitHash)
			if err != nil {
				return err
			}

			s, err := ops.StatsForTree(repo, commit.Tree)
			if err != nil {
				return err
			}
			fmt.Printf("logical bytes: %d\n", s.LogicalBytes)
			fmt.Printf("stored bytes:  %d\n", s.StoredBytes)
			fmt.Printf("directories:   %d\n", s.Directories)
			fmt.Printf("regular files: %d\n", s.Regular)
			fmt.Printf("symlinks:      %d\n", s.Symlinks)
			fmt.Printf("other nodes:   %d\n", s.Other)
			return nil
		},
	}
}
