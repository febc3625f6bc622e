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

// mapCommand rewrites every stored blob's on-disk ownership from one
// namespace mapping to another, in place, leaving content hashes
// untouched. Useful after a repository's namespace configuration
// changes (e.g. a container's user-namespace range was reassigned) to
// bring already-stored objects' real ownership back in line with the
// current mapping.
func mapCommand() *cli.Command {
	var repoPath, fromConfigPath, toConfigPath string
	var force, dryRun bool

	flags := func() *pflag.FlagSet {
		fs := pflag.NewFlagSet("map", pflag.ContinueOnError)
		fs.StringVar(&repoPath, "repo", "", "repository path (default: discover from cwd)")
		fs.StringVar(&fromConfigPath, "from-config", "", "config.toml whose [namespace] blobs are currently chowned under (default: the repository's own)")
		fs.StringVar(&toConfigPath, "to-config", "", "config.toml whose [namespace] ownership should be rewritten to (default: the process's current user-namespace mapping)")
		fs.BoolVar(&force, "force", false, "skip blobs unmapped by the target namespace instead of failing")
		fs.BoolVar(&dryRun, "dry-run", false, "report what would change without chowning anything")
		return fs
	}

	return &cli.Command{
		Name:    "map",
		Summary: "Rewrite stored blob ownership from one namespace to another",
		Usage:   "zub map [--repo path] [--from-config file] [--to-config file] [--force] [--dry-run]",
		Flags:   flags,
		Run: func(args []string) error {
			repo, err := openRepo(repoPath)
			if err != nil {
				return err
			}

			oldNs, err := loadNamespace(fromConfigPath, repo.Config.Namespace)
			if err != nil {
				return err
			}
			newNs := store.NsConfig{UIDMap: store.CurrentUIDMap(), GIDMap: store.CurrentGIDMap()}
			if toConfigPath != "" {
				newNs, err = loadNamespace(toConfigPath, newNs)
				if err != nil {
					return err
				}
			}

			lock, err := repo.Lock()
			if err != nil {
				return err
			}
			defer lock.Unlock()

			stats, err := ops.Map(repo, oldNs, newNs, ops.MapOptions{Force: force, DryRun: dryRun})
			if err != nil {
				return err
			}

			if !dryRun && stats.Remapped > 0 {
				repo.Config.Namespace = newNs
				if err := repo.Save(); err != nil {
					return err
				}
			}

			fmt.Printf("total=%d remapped=%d skipped_unmapped_source=%d skipped_unmapped_target=%d\n",
				stats.Total, stats.Remapped, stats.SkippedUnmappedSource, stats.SkippedUnmappedTarget)
			return nil
		},
	}
}

func loadNamespace(configPath string, fallback store.NsConfig) (store.NsConfig, error) {
	if configPath == "" {
		return fallback, nil
	}
	cfg, err := store.LoadConfig(configPath)
	if err != nil {
		return store.NsConfig{}, err
	}
	return cfg.Namespace, nil
}
