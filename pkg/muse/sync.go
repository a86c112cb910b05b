package muse

import (
	"github.com/muse-vcs/muse/modules/commitstore"
	"github.com/muse-vcs/muse/modules/objstore"
	"github.com/muse-vcs/muse/modules/refstore"
	"github.com/muse-vcs/muse/modules/snapstore"
	"github.com/muse-vcs/muse/modules/tracelog"
)

// SyncDelta carries everything a push/pull transport needs to bring the
// other side up to date with one branch: the commits the other side lacks
// (parents before children), their snapshots, and the object bytes those
// snapshots reference. The transport itself lives outside this module; the
// engine only assembles and ingests the data.
type SyncDelta struct {
	Branch    string
	Head      commitstore.CommitID
	Commits   []*commitstore.Commit
	Snapshots map[snapstore.SnapshotID]snapstore.Manifest
	Objects   map[objstore.ObjectID][]byte
}

// MissingFrom assembles the delta between branch's local tip and a peer
// that already has haveCommits and haveObjects. Commits are ordered so
// every parent precedes its children, letting the receiving side ingest
// them in a single pass.
func (r *Repository) MissingFrom(branch string, haveCommits []commitstore.CommitID, haveObjects []objstore.ObjectID) (*SyncDelta, error) {
	head, err := r.refs.ReadRef(refstore.HeadsPrefix + branch)
	if err != nil {
		return nil, err
	}
	if head == "" {
		return nil, NewUserError("branch %q has no commits", branch)
	}

	have := make(map[commitstore.CommitID]struct{}, len(haveCommits))
	for _, id := range haveCommits {
		have[id] = struct{}{}
	}
	haveObj := make(map[objstore.ObjectID]struct{}, len(haveObjects))
	for _, id := range haveObjects {
		haveObj[id] = struct{}{}
	}

	missing, err := r.missingCommitsTopo(head, have)
	if err != nil {
		return nil, err
	}

	delta := &SyncDelta{
		Branch:    branch,
		Head:      head,
		Commits:   missing,
		Snapshots: make(map[snapstore.SnapshotID]snapstore.Manifest),
		Objects:   make(map[objstore.ObjectID][]byte),
	}
	for _, c := range missing {
		if _, ok := delta.Snapshots[c.SnapshotID]; ok {
			continue
		}
		manifest, err := r.snapshots.Get(c.SnapshotID)
		if err != nil {
			return nil, tracelog.Internal(NewInternalError("commit "+string(c.ID)+" references missing snapshot "+string(c.SnapshotID), err))
		}
		delta.Snapshots[c.SnapshotID] = manifest
		for _, objID := range manifest {
			if _, ok := haveObj[objID]; ok {
				continue
			}
			if _, ok := delta.Objects[objID]; ok {
				continue
			}
			b, err := r.objects.Get(objID)
			if err != nil {
				return nil, err
			}
			delta.Objects[objID] = b
		}
	}
	return delta, nil
}

// missingCommitsTopo returns every ancestor of head absent from have, in an
// order where each commit's parents appear before the commit itself.
func (r *Repository) missingCommitsTopo(head commitstore.CommitID, have map[commitstore.CommitID]struct{}) ([]*commitstore.Commit, error) {
	var ordered []*commitstore.Commit
	done := make(map[commitstore.CommitID]struct{})

	type frame struct {
		id       commitstore.CommitID
		expanded bool
	}
	stack := []frame{{id: head}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if _, ok := done[top.id]; ok {
			stack = stack[:len(stack)-1]
			continue
		}
		if _, ok := have[top.id]; ok {
			done[top.id] = struct{}{}
			stack = stack[:len(stack)-1]
			continue
		}
		c, err := r.getCommit(top.id)
		if err != nil {
			return nil, err
		}
		if !top.expanded {
			top.expanded = true
			for _, p := range c.Parents {
				if _, ok := done[p]; !ok {
					stack = append(stack, frame{id: p})
				}
			}
			continue
		}
		done[top.id] = struct{}{}
		ordered = append(ordered, c)
		stack = stack[:len(stack)-1]
	}
	return ordered, nil
}

// Ingest applies a delta received from a peer: objects first, then
// snapshots, then commits in the delta's parents-first order, and finally
// the remote-tracking ref for the peer the delta came from. Every store
// write is idempotent, so re-ingesting a delta after a partial failure is
// safe.
func (r *Repository) Ingest(remote string, delta *SyncDelta) error {
	return r.withLock(func() error {
		for _, b := range delta.Objects {
			if _, err := r.objects.Put(b); err != nil {
				return err
			}
		}
		for _, manifest := range delta.Snapshots {
			if _, err := r.snapshots.Put(manifest); err != nil {
				return err
			}
		}
		for _, c := range delta.Commits {
			for _, p := range c.Parents {
				if !r.commits.Has(p) {
					return tracelog.Internal(NewInternalError("ingested commit "+string(c.ID)+" references unknown parent "+string(p), nil))
				}
			}
			id, err := r.commits.CreateCommit(c.Parents, c.RepoID, c.SnapshotID, c.Message, c.Author, c.Branch, c.CommittedAt, c.Metadata)
			if err != nil {
				return err
			}
			if id != c.ID {
				return tracelog.Internal(NewInternalError("ingested commit "+string(c.ID)+" rehashed to "+string(id), nil))
			}
		}
		if remote != "" {
			if err := r.refs.WriteRef(refstore.RemotesPrefix+remote+"/"+delta.Branch, delta.Head); err != nil {
				return err
			}
		}
		tracelog.Infof("muse: ingested %d commit(s), %d object(s) for %s/%s", len(delta.Commits), len(delta.Objects), remote, delta.Branch)
		return nil
	})
}

// reachableObjects walks every ref (heads, tags, remotes), every commit
// reachable from them, and every snapshot those commits name, collecting
// the full set of object IDs a repository must retain.
func (r *Repository) reachableObjects() (map[objstore.ObjectID]struct{}, error) {
	names, err := r.refs.ListRefs("refs/")
	if err != nil {
		return nil, err
	}
	reachable := make(map[objstore.ObjectID]struct{})
	seenCommits := make(map[commitstore.CommitID]struct{})
	seenSnapshots := make(map[snapstore.SnapshotID]struct{})

	var queue []commitstore.CommitID
	for _, name := range names {
		tip, err := r.refs.ReadRef(name)
		if err != nil {
			return nil, err
		}
		if tip == "" {
			continue
		}
		if _, ok := seenCommits[tip]; !ok {
			seenCommits[tip] = struct{}{}
			queue = append(queue, tip)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		c, err := r.getCommit(id)
		if err != nil {
			return nil, err
		}
		if _, ok := seenSnapshots[c.SnapshotID]; !ok {
			seenSnapshots[c.SnapshotID] = struct{}{}
			manifest, err := r.snapshots.Get(c.SnapshotID)
			if err != nil {
				return nil, tracelog.Internal(NewInternalError("commit "+string(c.ID)+" references missing snapshot "+string(c.SnapshotID), err))
			}
			for _, objID := range manifest {
				reachable[objID] = struct{}{}
			}
		}
		for _, p := range c.Parents {
			if _, ok := seenCommits[p]; !ok {
				seenCommits[p] = struct{}{}
				queue = append(queue, p)
			}
		}
	}
	return reachable, nil
}

// Prune removes every object unreachable from any ref, returning how many
// were deleted. An operator-triggered maintenance pass; no ordinary
// operation calls it.
func (r *Repository) Prune() (int, error) {
	var removed int
	err := r.withLock(func() error {
		reachable, err := r.reachableObjects()
		if err != nil {
			return err
		}
		removed, err = r.objects.Prune(reachable)
		return err
	})
	return removed, err
}
