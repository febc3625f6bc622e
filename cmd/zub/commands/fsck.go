// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"zub/cmd/zub/cli"
	"zub/lib/store/ops"
)

func fsckCommand() *cli.Command {
	var repoPath string

	flags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("fsck", pflag.ContinueOnError)
		fs.StringVar(&repoPath, "repo", "", "repository path (default: discover from cwd)")
		return fs
	}

	return &cli.Command{
		Name:    "fsck",
		Summary: "Verify every stored object's hash and reachability",
		Usage:   "zub fsck [--repo path]",
		Flags:   flags,
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("fsck takes no positional arguments")
			}
			repo, err := openRepo(repoPath)
			if err != nil {
				return err
			}

			report, err := ops.Fsck(repo)
			if err != nil {
				return err
			}
			for _, h := range report.Corrupt {
				fmt.Printf("corrupt %s\n", h)
			}
			for _, h := range report.Dangling {
				fmt.Printf("dangling %s\n", h)
			}
			if len(report.Corrupt) > 0 {
				return fmt.Errorf("%d corrupt object(s) found", len(report.Corrupt))
			}
			return nil
		},
	}
}
