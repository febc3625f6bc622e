// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"zub/cmd/zub/cli"
	"zub/lib/store"
	"zub/lib/store/transport"
)

func pullCommand() *cli.Command {
	var repoPath string
	var fetchOnly bool

	flags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("pull", pflag.ContinueOnError)
		fs.StringVar(&repoPath, "repo", "", "repository path (default: discover from cwd)")
		fs.BoolVar(&fetchOnly, "fetch-only", false, "retrieve objects without moving the local ref")
		return fs
	}

	return &cli.Command{
		Name:    "pull",
		Summary: "Fetch a ref's history from a configured remote",
		Usage:   "zub pull [--repo path] [--fetch-only] <remote> <ref>",
		Flags:   flags,
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("pull requires a remote name and a ref")
			}
			repo, err := openRepo(repoPath)
			if err != nil {
				return err
			}

			remote, err := repo.Config.Remote(args[0])
			if err != nil {
				return err
			}
			target, err := transport.ParseTarget(remote.Name, remote.URL)
			if err != nil {
				return err
			}

			opts := transport.PullOptions{FetchOnly: fetchOnly}

			if target.Local {
				sourceRepo, err := store.Open(target.Path)
				if err != nil {
					return err
				}
				report, err := transport.LocalPull(repo, sourceRepo, args[1], opts)
				if err != nil {
					return err
				}
				fmt.Printf("transferred %d object(s)\n", report.Transferred)
				return nil
			}

			report, err := transport.SSHPull(context.Background(), repo, target.Host, target.Path, args[1], opts)
			if err != nil {
				return err
			}
			fmt.Printf("transferred %d object(s)\n", report.Transferred)
			return nil
		},
	}
}
