package muse

import (
	"github.com/muse-vcs/muse/modules/commitstore"
	"github.com/muse-vcs/muse/modules/snapstore"
	"github.com/muse-vcs/muse/modules/tracelog"
)

// RebaseResult reports how far a Rebase call got.
type RebaseResult struct {
	Rebased       []commitstore.CommitID // new commit IDs, oldest first, for every commit successfully replayed
	ConflictAt    commitstore.CommitID    // the original commit where replay stopped, if any
	ConflictPaths []string
}

// Rebase replays commits (oldest first) onto newBase, producing a new
// plumbing commit for each: the same commit's content change is re-applied
// against the evolving new parent using the merge engine's three-way apply
// rule, with the commit's own original-parent manifest as base, the
// evolving new-parent manifest as ours, and the commit's own manifest as
// theirs. Replay stops at the first commit whose apply produces conflict
// paths, returning everything rebased so far.
func (r *Repository) Rebase(commits []commitstore.CommitID, newBase commitstore.CommitID) (RebaseResult, error) {
	var result RebaseResult
	err := r.withLock(func() error {
		if r.mergeInProgress() {
			return &MergeInProgressError{}
		}
		parent := newBase
		parentManifest, err := r.manifestOf(newBase)
		if err != nil {
			return err
		}

		for _, original := range commits {
			oc, err := r.getCommit(original)
			if err != nil {
				return err
			}
			originalParentManifest := snapstore.Manifest{}
			if p, ok := oc.FirstParent(); ok {
				originalParentManifest, err = r.manifestOf(p)
				if err != nil {
					return err
				}
			}
			ownManifest, err := r.manifestOf(original)
			if err != nil {
				return err
			}

			diff := computeThreeWayDiff(originalParentManifest, parentManifest, ownManifest)
			if len(diff.conflictPaths) > 0 {
				result.ConflictAt = original
				result.ConflictPaths = diff.conflictPaths
				return NewUserError("rebase stopped: commit %s conflicts with %s at %v", original, parent, diff.conflictPaths)
			}
			merged := applyMerge(originalParentManifest, parentManifest, ownManifest, diff)

			snapshotID, err := r.snapshots.Put(merged)
			if err != nil {
				return err
			}
			newID, err := r.commits.CreateCommit([]commitstore.CommitID{parent}, r.repoID, snapshotID, oc.Message, oc.Author, oc.Branch, nil, oc.Metadata)
			if err != nil {
				return err
			}
			result.Rebased = append(result.Rebased, newID)
			parent = newID
			parentManifest = merged
		}
		tracelog.Infof("muse: rebased %d commit(s) onto %s", len(result.Rebased), newBase)
		return nil
	})
	return result, err
}
