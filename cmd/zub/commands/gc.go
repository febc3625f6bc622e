// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"zub/cmd/zub/cli"
	"zub/lib/store/ops"
)

func gcCommand() *cli.Command {
	var repoPath string
	var dryRun bool

	flags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("gc", pflag.ContinueOnError)
		fs.StringVar(&repoPath, "repo", "", "repository path (default: discover from cwd)")
		fs.BoolVar(&dryRun, "dry-run", false, "report what would be removed without deleting anything")
		return fs
	}

	return &cli.Command{
		Name:    "gc",
		Summary: "Remove objects unreachable from any ref",
		Usage:   "zub gc [--repo path] [--dry-run]",
		Flags:   flags,
		Run: func(args []string) error {
			if len(args) != 0 {
				return fmt.Errorf("gc takes no positional arguments")
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

			report, err := ops.GC(repo, dryRun)
			if err != nil {
				return err
			}
			verb := "removed"
			if dryRun {
				verb = "would remove"
			}
			fmt.Printf("%s %d object(s), %d bytes\n", verb, len(report.Removed), report.BytesFreed)
			return nil
		},
	}
}
