package muse

import (
	"github.com/muse-vcs/muse/modules/refstore"
	"github.com/muse-vcs/muse/modules/snapstore"
	"github.com/muse-vcs/muse/modules/tracelog"
)

// CheckoutResult describes the outcome of a Checkout call.
type CheckoutResult struct {
	AlreadyOnBranch bool
	Created         bool // a new branch was created at the current HEAD commit
}

// Checkout switches HEAD to branch. When create is true, branch must not
// already exist; it is created at the current HEAD commit and HEAD is
// switched to it. When force is false, switching away requires a clean
// working tree (no uncommitted changes against the current HEAD snapshot).
func (r *Repository) Checkout(branch string, create, force bool) (CheckoutResult, error) {
	var result CheckoutResult
	err := r.withLock(func() error {
		if r.mergeInProgress() {
			return &MergeInProgressError{}
		}
		current, err := r.CurrentBranch()
		if err != nil {
			return err
		}

		if create {
			exists, err := r.branchExists(branch)
			if err != nil {
				return err
			}
			if exists {
				return NewUserError("branch %q already exists", branch)
			}
			head, err := r.refs.ResolveHEAD()
			if err != nil {
				return err
			}
			if err := r.refs.WriteRef(refstore.HeadsPrefix+branch, head); err != nil {
				return err
			}
			if err := r.refs.WriteHEAD(refstore.HeadsPrefix + branch); err != nil {
				return err
			}
			tracelog.Infof("muse: created and switched to branch %q", branch)
			result.Created = true
			return nil
		}

		if branch == current {
			result.AlreadyOnBranch = true
			return nil
		}
		exists, err := r.branchExists(branch)
		if err != nil {
			return err
		}
		if !exists {
			return NewUserError("branch %q does not exist", branch)
		}

		if !force {
			manifest, err := r.headManifest()
			if err != nil {
				return err
			}
			diff, err := Diff(r.workDir, manifest)
			if err != nil {
				return err
			}
			if diff.Dirty() {
				return NewUserError("cannot switch branches: working tree has uncommitted changes (use force)")
			}
		}

		targetID, err := r.refs.ReadRef(refstore.HeadsPrefix + branch)
		if err != nil {
			return err
		}
		targetManifest := snapstore.Manifest{}
		if targetID != "" {
			targetManifest, err = r.manifestOf(targetID)
			if err != nil {
				return err
			}
		}
		if err := r.restoreWorkdir(targetManifest); err != nil {
			return err
		}
		if err := r.refs.WriteHEAD(refstore.HeadsPrefix + branch); err != nil {
			return err
		}
		tracelog.Infof("muse: switched to branch %q", branch)
		return nil
	})
	return result, err
}
