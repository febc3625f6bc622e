// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"os"
	"path/filepath"

	"zub/lib/store"
)

// openRepo resolves the repository rooted at path, or — if path is
// empty — discovers one starting from the current directory. A
// ".zub" entry found while walking up is honored as a shortcut: if
// it is a symlink, it is followed to its target and that target
// becomes the repository root; this lookup happens only here, in the
// CLI layer, never inside store.Open itself.
func openRepo(path string) (*store.Repo, error) {
	if path != "" {
		return store.Open(path)
	}

	root, err := discoverRoot()
	if err != nil {
		return nil, err
	}
	return store.Open(root)
}

func discoverRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		marker := filepath.Join(dir, ".zub")
		if info, err := os.Lstat(marker); err == nil {
			if info.Mode()&os.ModeSymlink != 0 {
				target, err := os.Readlink(marker)
				if err != nil {
					return "", err
				}
				if !filepath.IsAbs(target) {
					target = filepath.Join(dir, target)
				}
				return target, nil
			}
			return marker, nil
		}

		if _, err := os.Stat(filepath.Join(dir, "config.toml")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", &store.NoRepoError{Path: dir}
		}
		dir = parent
	}
}
