// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"zub/cmd/zub/cli"
	"zub/lib/store/ops"
)

func diffCommand() *cli.Command {
	var repoPath string

	flags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("diff", pflag.ContinueOnError)
		fs.StringVar(&repoPath, "repo", "", "repository path (default: discover from cwd)")
		return fs
	}

	return &cli.Command{
		Name:    "diff",
		Summary: "Show changed paths between two commits",
		Usage:   "zub diff [--repo path] <before-ref-or-hash> <after-ref-or-hash>",
		Flags:   flags,
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("diff requires a before and an after ref-or-hash")
			}
			repo, err := openRepo(repoPath)
			if err != nil {
				return err
			}

			beforeCommitHash, err := repo.ResolveRef(args[0])
			if err != nil {
				return err
			}
			afterCommitHash, err := repo.ResolveRef(args[1])
			if err != nil {
				return err
			}
			beforeCommit, err := repo.ReadCommit(beforeCommitHash)
			if err != nil {
				return err
			}
			afterCommit, err := repo.ReadCommit(afterCommitHash)
			if err != nil {
				return err
			}

			entries, err := ops.Diff(repo, beforeCommit.Tree, afterCommit.Tree)
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Printf("%-14s %s\n", e.Change, e.Path)
			}
			return nil
		},
	}
}
