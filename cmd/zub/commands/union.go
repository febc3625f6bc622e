// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"zub/cmd/zub/cli"
	"zub/lib/store"
	"zub/lib/store/ops"
)

func unionCommand() *cli.Command {
	var repoPath, ref, message, policyName string

	flags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("union", pflag.ContinueOnError)
		fs.StringVar(&repoPath, "repo", "", "repository path (default: discover from cwd)")
		fs.StringVar(&ref, "ref", "main", "ref to update with the merge commit")
		fs.StringVar(&message, "message", "", "merge commit message")
		fs.StringVar(&policyName, "policy", "last-wins", "conflict policy: first-wins, last-wins, or strict")
		return fs
	}

	return &cli.Command{
		Name:    "union",
		Summary: "Merge two or more commits into one",
		Usage:   "zub union [--repo path] [flags] <ref-or-hash>...",
		Flags:   flags,
		Run: func(args []string) error {
			if len(args) < 2 {
				return fmt.Errorf("union requires at least two ref-or-hash arguments")
			}
			repo, err := openRepo(repoPath)
			if err != nil {
				return err
			}

			var policy ops.ConflictPolicy
			switch policyName {
			case "first-wins":
				policy = ops.FirstWins
			case "last-wins":
				policy = ops.LastWins
			case "strict":
				policy = ops.Strict
			default:
				return fmt.Errorf("unknown policy %q: want first-wins, last-wins, or strict", policyName)
			}

			var treeHashes, commitHashes []store.Hash
			for _, arg := range args {
				commitHash, err := repo.ResolveRef(arg)
				if err != nil {
					return err
				}
				commit, err := repo.ReadCommit(commitHash)
				if err != nil {
					return err
				}
				commitHashes = append(commitHashes, commitHash)
				treeHashes = append(treeHashes, commit.Tree)
			}

			lock, err := repo.Lock()
			if err != nil {
				return err
			}
			defer lock.Unlock()

			mergeHash, err := ops.UnionTrees(repo, treeHashes, commitHashes, ops.UnionOptions{Policy: policy}, "zub union", message)
			if err != nil {
				return err
			}
			if err := repo.WriteRef(ref, mergeHash); err != nil {
				return err
			}
			fmt.Printf("%s\n", mergeHash)
			return nil
		},
	}
}
