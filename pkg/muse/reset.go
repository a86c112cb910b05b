package muse

import (
	"github.com/muse-vcs/muse/modules/refstore"
	"github.com/muse-vcs/muse/modules/tracelog"
)

// ResetMode selects how far Reset reaches: soft only moves the branch ref,
// hard also restores the working tree. Mixed is accepted for CLI
// familiarity but behaves identically to soft: this data model has no
// staging index to partially reset.
type ResetMode int

const (
	ResetSoft ResetMode = iota
	ResetMixed
	ResetHard
)

// Reset moves the current branch ref to the commit resolved from ref. In
// ResetHard mode the working tree is also replaced with the target
// commit's snapshot, deleting any file not present in it.
func (r *Repository) Reset(ref string, mode ResetMode) error {
	return r.withLock(func() error {
		if r.mergeInProgress() {
			return &MergeInProgressError{}
		}
		branch, err := r.CurrentBranch()
		if err != nil {
			return err
		}
		branchRef := refstore.HeadsPrefix + branch
		oldID, err := r.refs.ReadRef(branchRef)
		if err != nil {
			return err
		}
		targetID, err := r.Revision(ref)
		if err != nil {
			return err
		}
		if err := r.refs.CompareAndSwapRef(branchRef, oldID, targetID); err != nil {
			return err
		}
		tracelog.Infof("muse: reset branch %q from %s to %s", branch, oldID, targetID)

		if mode != ResetHard {
			return nil
		}
		manifest, err := r.manifestOf(targetID)
		if err != nil {
			return err
		}
		return r.restoreWorkdir(manifest)
	})
}
