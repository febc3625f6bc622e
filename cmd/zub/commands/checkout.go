// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"zub/cmd/zub/cli"
	"zub/lib/store/ops"
)

func checkoutCommand() *cli.Command {
	var repoPath string
	var force, noHardlink, preserveSparse bool

	flags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("checkout", pflag.ContinueOnError)
		fs.StringVar(&repoPath, "repo", "", "repository path (default: discover from cwd)")
		fs.BoolVar(&force, "force", false, "allow checking out into a non-empty directory")
		fs.BoolVar(&noHardlink, "no-hardlink", false, "always copy file content instead of hardlinking into the object store")
		fs.BoolVar(&preserveSparse, "sparse", false, "reconstruct sparse files as sparse on disk")
		return fs
	}

	return &cli.Command{
		Name:    "checkout",
		Summary: "Materialize a ref or commit hash into a directory",
		Usage:   "zub checkout [--repo path] [flags] <ref-or-hash> <target-dir>",
		Flags:   flags,
		Run: func(args []string) error {
			if len(args) != 2 {
				return fmt.Errorf("checkout requires a ref-or-hash and a target directory")
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

			return ops.Checkout(repo, commit.Tree, args[1], ops.CheckoutOptions{
				Force:          force,
				Hardlink:       !noHardlink,
				PreserveSparse: preserveSparse,
			})
		},
	}
}
