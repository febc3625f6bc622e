// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"zub/cmd/zub/cli"
	"zub/lib/clock"
	"zub/lib/store"
	"zub/lib/store/ops"
)

func commitCommand() *cli.Command {
	var repoPath, ref, message string

	flags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("commit", pflag.ContinueOnError)
		fs.StringVar(&repoPath, "repo", "", "repository path (default: discover from cwd)")
		fs.StringVar(&ref, "ref", "main", "ref to update with the new commit")
		fs.StringVar(&message, "message", "", "commit message")
		return fs
	}

	return &cli.Command{
		Name:    "commit",
		Summary: "Snapshot a directory into the repository",
		Usage:   "zub commit [--repo path] [--ref name] [--message text] <source-dir>",
		Flags:   flags,
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("commit requires exactly one source directory argument")
			}
			repo, err := openRepo(repoPath)
			if err != nil {
				return err
			}

			lock, err := repo.Lock()
			if err != nil {
				return err
			}
			defer lock.Unlock()

			var parents []store.Hash
			if hash, err := repo.ResolveRef(ref); err == nil {
				parents = []store.Hash{hash}
			}

			author := os.Getenv("USER")
			if author == "" {
				author = "unknown"
			}

			hash, err := ops.CommitAndUpdateRef(repo, ref, args[0], ops.CommitOptions{
				Author:  author,
				Message: message,
				Parents: parents,
				Clock:   clock.Real(),
			})
			if err != nil {
				return err
			}
			fmt.Printf("%s\n", hash)
			return nil
		},
	}
}
