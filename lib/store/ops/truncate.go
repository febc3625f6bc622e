// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ops

import (
	"fmt"

	"zub/lib/store"
)

// Truncate rewrites ref to point directly at ancestorHash, after
// confirming ancestorHash is genuinely reachable from the ref's
// current tip by following parents[0] — refusing to "truncate" onto a
// commit that is not actually part of the ref's own first-parent
// history. This does not delete any object; GC reclaims commits that
// become unreachable as a result. Must be called under the
// repository lock, since it mutates a ref.
func Truncate(repo *store.Repo, ref string, ancestorHash store.Hash) error {
	tip, err := repo.ResolveRef(ref)
	if err != nil {
		return err
	}

	current := tip
	for {
		if current == ancestorHash {
			return repo.WriteRef(ref, ancestorHash)
		}
		commit, err := repo.ReadCommit(current)
		if err != nil {
			return err
		}
		if len(commit.Parents) == 0 {
			return fmt.Errorf("%s is not reachable via parents[0] from %s", ancestorHash, ref)
		}
		current = commit.Parents[0]
	}
}
