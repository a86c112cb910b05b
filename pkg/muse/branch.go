package muse

import (
	"strings"

	"github.com/muse-vcs/muse/modules/commitstore"
	"github.com/muse-vcs/muse/modules/refstore"
	"github.com/muse-vcs/muse/modules/tracelog"
)

// Branch describes one refs/heads/ entry.
type Branch struct {
	Name   string
	Commit commitstore.CommitID
	Head   bool
}

// ListBranches returns every branch sorted by name, flagging the one HEAD
// currently points at.
func (r *Repository) ListBranches() ([]Branch, error) {
	names, err := r.refs.ListRefs(refstore.HeadsPrefix)
	if err != nil {
		return nil, err
	}
	current, err := r.CurrentBranch()
	if err != nil {
		return nil, err
	}
	branches := make([]Branch, 0, len(names))
	for _, name := range names {
		id, err := r.refs.ReadRef(name)
		if err != nil {
			return nil, err
		}
		short := strings.TrimPrefix(name, refstore.HeadsPrefix)
		branches = append(branches, Branch{Name: short, Commit: id, Head: short == current})
	}
	return branches, nil
}

func (r *Repository) branchExists(name string) (bool, error) {
	names, err := r.refs.ListRefs(refstore.HeadsPrefix)
	if err != nil {
		return false, err
	}
	target := refstore.HeadsPrefix + name
	for _, n := range names {
		if n == target {
			return true, nil
		}
	}
	return false, nil
}

// CreateBranch creates a new branch named name pointing at startPoint
// (resolved via Revision), without moving HEAD.
func (r *Repository) CreateBranch(name, startPoint string) error {
	return r.withLock(func() error {
		exists, err := r.branchExists(name)
		if err != nil {
			return err
		}
		if exists {
			return NewUserError("branch %q already exists", name)
		}
		id, err := r.Revision(startPoint)
		if err != nil {
			return err
		}
		if err := r.refs.WriteRef(refstore.HeadsPrefix+name, id); err != nil {
			return err
		}
		tracelog.Infof("muse: created branch %q at %s", name, id)
		return nil
	})
}

// DeleteBranch removes a branch ref. Deleting the current branch is
// rejected.
func (r *Repository) DeleteBranch(name string) error {
	return r.withLock(func() error {
		current, err := r.CurrentBranch()
		if err != nil {
			return err
		}
		if name == current {
			return NewUserError("cannot delete the currently checked-out branch %q", name)
		}
		exists, err := r.branchExists(name)
		if err != nil {
			return err
		}
		if !exists {
			return NewUserError("branch %q does not exist", name)
		}
		if err := r.refs.DeleteRef(refstore.HeadsPrefix + name); err != nil {
			return err
		}
		tracelog.Infof("muse: deleted branch %q", name)
		return nil
	})
}
