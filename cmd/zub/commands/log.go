// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"zub/cmd/zub/cli"
	"zub/lib/store/ops"
)

func logCommand() *cli.Command {
	var repoPath string
	var maxCount int

	flags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("log", pflag.ContinueOnError)
		fs.StringVar(&repoPath, "repo", "", "repository path (default: discover from cwd)")
		fs.IntVar(&maxCount, "max-count", 0, "maximum number of commits to show (0 = unlimited)")
		return fs
	}

	return &cli.Command{
		Name:    "log",
		Summary: "Show commit history along first parents",
		Usage:   "zub log [--repo path] [--max-count N] <ref-or-hash>",
		Flags:   flags,
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("log requires a ref-or-hash argument")
			}
			repo, err := openRepo(repoPath)
			if err != nil {
				return err
			}

			startHash, err := repo.ResolveRef(args[0])
			if err != nil {
				return err
			}

			entries, err := ops.Log(repo, startHash, maxCount)
			if err != nil {
				return err
			}
			for _, e := range entries {
				when := time.Unix(e.Commit.Timestamp, 0).UTC().Format(time.RFC3339)
				fmt.Printf("commit %s\nAuthor: %s\nDate:   %s\n\n    %s\n\n", e.Hash, e.Commit.Author, when, e.Commit.Message)
			}
			return nil
		},
	}
}
