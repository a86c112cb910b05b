package main

import "github.com/muse-vcs/muse/pkg/muse"

// Exit code taxonomy: 0 success, 1 user/retriable error, 2 repo-not-found, 3
// internal error. CasMismatch is a retriable contention condition between
// scripting agents racing the same ref, not a bug, so it is grouped with the
// user-error class rather than falling through to the internal default.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return 0
	case muse.IsNotARepository(err):
		return 2
	case muse.IsUserError(err), muse.IsMergeInProgress(err), muse.IsNoCommonAncestor(err), muse.IsCasMismatch(err):
		return 1
	case muse.IsInternal(err), muse.IsRepoCorrupt(err), muse.IsMissingObject(err):
		return 3
	default:
		return 3
	}
}
