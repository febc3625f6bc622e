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

func pushCommand() *cli.Command {
	var repoPath string
	var force bool

	flags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("push", pflag.ContinueOnError)
		fs.StringVar(&repoPath, "repo", "", "repository path (default: discover from cwd)")
		fs.BoolVar(&force, "force", false, "skip the fast-forward check")
		return fs
	}

	return &cli.Command{
		Name:    "push",
		Summary: "Send a ref's history to a configured remote",
		Usage:   "zub push [--repo path] [--force] <remote> <ref>",
		Flags:   flags,
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("push requires a remote name and a ref")
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

			opts := transport.PushOptions{Force: force}

			if target.Local {
				destRepo, err := store.Open(target.Path)
				if err != nil {
					return err
				}
				report, err := transport.LocalPush(repo, destRepo, args[1], opts)
				if err != nil {
					return err
				}
				fmt.Printf("transferred %d object(s)\n", report.Transferred)
				return nil
			}

			report, err := transport.SSHPush(context.Background(), repo, target.Host, target.Path, args[1], opts)
			if err != nil {
				return err
			}
			fmt.Printf("transferred %d object(s)\n", report.Transferred)
			return nil
		},
	}
}
