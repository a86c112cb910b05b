package muse

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/muse-vcs/muse/modules/commitstore"
	"github.com/muse-vcs/muse/modules/refstore"
	"github.com/muse-vcs/muse/modules/snapstore"
	"github.com/muse-vcs/muse/modules/tracelog"
)

// ingestWorkdir walks the working tree, puts every file's bytes into the
// object store, and returns the resulting manifest.
func (r *Repository) ingestWorkdir() (snapstore.Manifest, error) {
	paths, err := walkWorkdir(r.workDir)
	if err != nil {
		return nil, err
	}
	manifest := make(snapstore.Manifest, len(paths))
	for _, p := range paths {
		f, err := os.Open(filepath.Join(r.workDir, filepath.FromSlash(p)))
		if err != nil {
			return nil, err
		}
		id, err := r.objects.PutReader(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		manifest[p] = id
		tracelog.Debugf("muse: ingested %s -> %s", p, id)
	}
	return manifest, nil
}

// CommitResult describes the outcome of a Commit call.
type CommitResult struct {
	CommitID commitstore.CommitID
	NoChange bool // true when HEAD's snapshot already matched the workdir
}

// Commit implements the commit pipeline: ingest the working tree, build and
// store its manifest, and, unless the result is identical to HEAD's
// snapshot, create a new timestamped commit and advance the current
// branch. When a merge is in progress, Commit instead finishes it: the
// workdir becomes the merge commit's tree and the commit takes both the
// "ours" and "theirs" sides as parents (see commitMergeResolution).
func (r *Repository) Commit(message, author string, metadata commitstore.Metadata) (CommitResult, error) {
	var result CommitResult
	err := r.withLock(func() error {
		ms, err := r.readMergeState()
		if err != nil {
			return err
		}
		if ms != nil {
			return r.commitMergeResolution(ms, message, author, metadata, &result)
		}
		branch, err := r.CurrentBranch()
		if err != nil {
			return err
		}
		manifest, err := r.ingestWorkdir()
		if err != nil {
			return err
		}
		if len(manifest) == 0 {
			return NewUserError("nothing to commit: working tree is empty")
		}
		snapshotID, err := r.snapshots.Put(manifest)
		if err != nil {
			return err
		}

		branchRef := refstore.HeadsPrefix + branch
		headID, err := r.refs.ReadRef(branchRef)
		if err != nil {
			return err
		}

		var parents []commitstore.CommitID
		if headID != "" {
			headCommit, err := r.getCommit(headID)
			if err != nil {
				return err
			}
			if headCommit.SnapshotID == snapshotID {
				result = CommitResult{CommitID: headID, NoChange: true}
				return nil
			}
			parents = []commitstore.CommitID{headID}
		}

		now := time.Now().UTC()
		newID, err := r.commits.CreateCommit(parents, r.repoID, snapshotID, message, author, branch, &now, metadata)
		if err != nil {
			return err
		}
		if err := r.refs.CompareAndSwapRef(branchRef, headID, newID); err != nil {
			return err
		}
		result = CommitResult{CommitID: newID}
		return nil
	})
	return result, err
}

// Amend replaces the current branch's HEAD with a new commit whose parent
// is HEAD's own parent (not HEAD), orphaning the original commit. When
// message is "", the original HEAD's message is kept (the "no-edit" form).
func (r *Repository) Amend(message, author string, metadata commitstore.Metadata) (CommitResult, error) {
	var result CommitResult
	err := r.withLock(func() error {
		if r.mergeInProgress() {
			return &MergeInProgressError{}
		}
		branch, err := r.CurrentBranch()
		if err != nil {
			return err
		}
		branchRef := refstore.HeadsPrefix + branch
		headID, err := r.refs.ReadRef(branchRef)
		if err != nil {
			return err
		}
		if headID == "" {
			return NewUserError("cannot amend: branch %q has no commits", branch)
		}
		headCommit, err := r.getCommit(headID)
		if err != nil {
			return err
		}
		manifest, err := r.ingestWorkdir()
		if err != nil {
			return err
		}
		if len(manifest) == 0 {
			return NewUserError("nothing to commit: working tree is empty")
		}
		snapshotID, err := r.snapshots.Put(manifest)
		if err != nil {
			return err
		}

		msg := message
		if msg == "" {
			msg = headCommit.Message
		}
		var parents []commitstore.CommitID
		if grandparent, ok := headCommit.FirstParent(); ok {
			parents = []commitstore.CommitID{grandparent}
		}
		meta := metadata
		if meta == nil {
			meta = headCommit.Metadata
		}

		now := time.Now().UTC()
		newID, err := r.commits.CreateCommit(parents, r.repoID, snapshotID, msg, author, branch, &now, meta)
		if err != nil {
			return err
		}
		if err := r.refs.CompareAndSwapRef(branchRef, headID, newID); err != nil {
			return err
		}
		result = CommitResult{CommitID: newID}
		return nil
	})
	return result, err
}

// commitMergeResolution finishes a conflicted merge: the current workdir
// (as the user left it after resolving conflict markers) becomes the merge
// commit's tree, and the commit takes both ms.OursCommit and ms.TheirsCommit
// as parents. MERGE_STATE.json is deleted only once the commit and ref
// update both succeed.
func (r *Repository) commitMergeResolution(ms *MergeState, message, author string, metadata commitstore.Metadata, result *CommitResult) error {
	branch, err := r.CurrentBranch()
	if err != nil {
		return err
	}
	manifest, err := r.ingestWorkdir()
	if err != nil {
		return err
	}
	if len(manifest) == 0 {
		return NewUserError("nothing to commit: working tree is empty")
	}
	snapshotID, err := r.snapshots.Put(manifest)
	if err != nil {
		return err
	}
	if message == "" {
		message = fmt.Sprintf("Merge %s into %s", ms.OtherBranch, branch)
	}

	now := time.Now().UTC()
	newID, err := r.commits.CreateCommit([]commitstore.CommitID{ms.OursCommit, ms.TheirsCommit}, r.repoID, snapshotID, message, author, branch, &now, metadata)
	if err != nil {
		return err
	}
	branchRef := refstore.HeadsPrefix + branch
	if err := r.refs.CompareAndSwapRef(branchRef, ms.OursCommit, newID); err != nil {
		return err
	}
	if err := r.clearMergeState(); err != nil {
		return err
	}
	tracelog.Infof("muse: merge commit %s resolves conflicts from %q", newID, ms.OtherBranch)
	*result = CommitResult{CommitID: newID}
	return nil
}
