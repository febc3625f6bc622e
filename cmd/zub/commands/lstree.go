// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"zub/cmd/zub/cli"
	"zub/lib/store/ops"
)

func lsTreeCommand() *cli.Command {
	var repoPath, subPath string
	var recursive bool

	flags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("ls-tree", pflag.ContinueOnError)
		fs.StringVar(&repoPath, "repo", "", "repository path (default: discover from cwd)")
		fs.StringVar(&subPath, "path", "", "subdirectory to list, relative to the tree root")
		fs.BoolVar(&recursive, "recursive", false, "list every descendant, not just immediate entries")
		return fs
	}

	return &cli.Command{
		Name:    "ls-tree",
		Summary: "List the entries of a commit's tree",
		Usage:   "zub ls-tree [--repo path] [--path sub] [--recursive] <ref-or-hash>",
		Flags:   flags,
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("ls-tree requires a ref-or-hash argument")
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

			var entries []ops.PathEntry
			if recursive {
				entries, err = ops.LsTreeRecursive(repo, commit.Tree, subPath)
			} else {
				entries, err = ops.LsTree(repo, commit.Tree, subPath)
			}
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%-12s %s\n", e.Kind.Type, e.Path)
			}
			return nil
		},
	}
}
