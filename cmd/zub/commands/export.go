// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"zub/cmd/zub/cli"
	"zub/lib/store/ops"
)

func exportCommand() *cli.Command {
	var repoPath, outPath string

	flags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
		fs.StringVar(&repoPath, "repo", "", "repository path (default: discover from cwd)")
		fs.StringVar(&outPath, "out", "", "output tar path (default: write to stdout)")
		return fs
	}

	return &cli.Command{
		Name:    "export",
		Summary: "Stream a commit's tree out as a POSIX tar archive",
		Usage:   "zub export [--repo path] [--out file.tar] <ref-or-hash>",
		Flags:   flags,
		Run: func(args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("export requires a ref-or-hash argument")
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

			out := os.Stdout
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			return ops.Export(repo, commit.Tree, out)
		},
	}
}
