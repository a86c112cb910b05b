package muse

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
	"github.com/emirpasic/gods/sets/hashset"

	"github.com/muse-vcs/muse/modules/commitstore"
	"github.com/muse-vcs/muse/modules/refstore"
	"github.com/muse-vcs/muse/modules/snapstore"
	"github.com/muse-vcs/muse/modules/tracelog"
)

// MergeState is the transient record of an in-progress conflicted merge,
// persisted at .muse/MERGE_STATE.json. Its presence blocks amend, reset, and
// checkout until the conflicts are resolved (by a commit) or the merge is
// aborted.
type MergeState struct {
	BaseCommit    commitstore.CommitID `json:"base_commit"`
	OursCommit    commitstore.CommitID `json:"ours_commit"`
	TheirsCommit  commitstore.CommitID `json:"theirs_commit"`
	ConflictPaths []string             `json:"conflict_paths"`
	OtherBranch   string               `json:"other_branch"`
}

func (r *Repository) readMergeState() (*MergeState, error) {
	data, err := os.ReadFile(r.mergeStatePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var ms MergeState
	if err := json.Unmarshal(data, &ms); err != nil {
		return nil, &RepoCorruptError{Detail: "MERGE_STATE.json malformed: " + err.Error()}
	}
	return &ms, nil
}

func (r *Repository) writeMergeState(ms MergeState) error {
	data, err := json.MarshalIndent(ms, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(r.mergeStatePath(), data, 0o644)
}

func (r *Repository) clearMergeState() error {
	if err := os.Remove(r.mergeStatePath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// MergeStatus returns the current merge state, or nil if no merge is in
// progress.
func (r *Repository) MergeStatus() (*MergeState, error) {
	return r.readMergeState()
}

// MergeAbort discards MERGE_STATE.json. The working tree is left exactly as
// the user left it: the engine never silently reverts the workdir on abort.
func (r *Repository) MergeAbort() error {
	return r.withLock(func() error {
		if !r.mergeInProgress() {
			return NewUserError("no merge in progress")
		}
		return r.clearMergeState()
	})
}

// ancestorSet returns the full set (by BFS over every parent link) of
// commits reachable from start, start itself included.
func (r *Repository) ancestorSet(start commitstore.CommitID) (*hashset.Set, error) {
	seen := hashset.New(string(start))
	queue := linkedlistqueue.New()
	queue.Enqueue(start)
	for !queue.Empty() {
		v, _ := queue.Dequeue()
		id := v.(commitstore.CommitID)
		c, err := r.getCommit(id)
		if err != nil {
			return nil, err
		}
		for _, p := range c.Parents {
			if !seen.Contains(string(p)) {
				seen.Add(string(p))
				queue.Enqueue(p)
			}
		}
	}
	return seen, nil
}

// MergeBase computes the lowest common ancestor of a and b: BFS from a
// marking every ancestor, then BFS from b returning the first ancestor of b
// that is also marked. LCA(a, a) = a. Disjoint histories report
// NoCommonAncestorError.
func (r *Repository) MergeBase(a, b commitstore.CommitID) (commitstore.CommitID, error) {
	if a == b {
		return a, nil
	}
	ancestorsOfA, err := r.ancestorSet(a)
	if err != nil {
		return "", err
	}

	seenB := hashset.New(string(b))
	queue := linkedlistqueue.New()
	queue.Enqueue(b)
	for !queue.Empty() {
		v, _ := queue.Dequeue()
		id := v.(commitstore.CommitID)
		if ancestorsOfA.Contains(string(id)) {
			return id, nil
		}
		c, err := r.getCommit(id)
		if err != nil {
			return "", err
		}
		for _, p := range c.Parents {
			if !seenB.Contains(string(p)) {
				seenB.Add(string(p))
				queue.Enqueue(p)
			}
		}
	}
	return "", &NoCommonAncestorError{A: string(a), B: string(b)}
}

// changedPaths returns every path where variant disagrees with base: added,
// removed, or pointing at a different object.
func changedPaths(base, variant snapstore.Manifest) map[string]struct{} {
	changed := make(map[string]struct{})
	for p, id := range base {
		if vid, ok := variant[p]; !ok || vid != id {
			changed[p] = struct{}{}
		}
	}
	for p := range variant {
		if _, ok := base[p]; !ok {
			changed[p] = struct{}{}
		}
	}
	return changed
}

// threeWayDiff is the result of comparing ours and theirs against a common
// base manifest.
type threeWayDiff struct {
	oursChanged   map[string]struct{}
	theirsChanged map[string]struct{}
	conflictPaths []string
}

// computeThreeWayDiff classifies every path changed by either side.
// conflictPaths is the subset changed on both sides where the two results
// actually disagree; an identical change on both sides is not a conflict.
func computeThreeWayDiff(base, ours, theirs snapstore.Manifest) threeWayDiff {
	oursChanged := changedPaths(base, ours)
	theirsChanged := changedPaths(base, theirs)

	var conflicts []string
	for p := range oursChanged {
		if _, ok := theirsChanged[p]; !ok {
			continue
		}
		oid, oOk := ours[p]
		tid, tOk := theirs[p]
		if oOk != tOk || (oOk && tOk && oid != tid) {
			conflicts = append(conflicts, p)
		}
	}
	sort.Strings(conflicts)
	return threeWayDiff{oursChanged: oursChanged, theirsChanged: theirsChanged, conflictPaths: conflicts}
}

// applyMerge produces the merged manifest: unchanged paths keep base,
// one-sided changes take that side, and conflict paths keep base pending
// user resolution.
func applyMerge(base, ours, theirs snapstore.Manifest, diff threeWayDiff) snapstore.Manifest {
	conflictSet := make(map[string]struct{}, len(diff.conflictPaths))
	for _, p := range diff.conflictPaths {
		conflictSet[p] = struct{}{}
	}

	allPaths := make(map[string]struct{}, len(base)+len(ours)+len(theirs))
	for p := range base {
		allPaths[p] = struct{}{}
	}
	for p := range ours {
		allPaths[p] = struct{}{}
	}
	for p := range theirs {
		allPaths[p] = struct{}{}
	}

	merged := make(snapstore.Manifest, len(allPaths))
	for p := range allPaths {
		_, oursChanged := diff.oursChanged[p]
		_, theirsChanged := diff.theirsChanged[p]
		_, conflict := conflictSet[p]

		var source snapstore.Manifest
		switch {
		case conflict:
			source = base
		case theirsChanged:
			source = theirs
		case oursChanged:
			source = ours
		default:
			source = base
		}
		if id, ok := source[p]; ok {
			merged[p] = id
		}
	}
	return merged
}

// MergeResult describes the outcome of Merge.
type MergeResult struct {
	CommitID        commitstore.CommitID // set when the merge completed without conflict
	Conflicts       []string              // set when the merge left MERGE_STATE.json pending
	AlreadyUpToDate bool
}

// Merge merges otherRef into the current branch: computes the merge-base,
// diffs all three manifests, restores the working tree to the merged
// result, and either commits immediately (no conflicts) or persists
// MERGE_STATE.json for the user to resolve.
func (r *Repository) Merge(otherRef, author string, metadata commitstore.Metadata) (*MergeResult, error) {
	var result *MergeResult
	err := r.withLock(func() error {
		if r.mergeInProgress() {
			return &MergeInProgressError{}
		}
		branch, err := r.CurrentBranch()
		if err != nil {
			return err
		}
		branchRef := refstore.HeadsPrefix + branch
		oursID, err := r.refs.ReadRef(branchRef)
		if err != nil {
			return err
		}
		if oursID == "" {
			return NewUserError("cannot merge: branch %q has no commits", branch)
		}
		theirsID, err := r.Revision(otherRef)
		if err != nil {
			return err
		}
		if theirsID == oursID {
			result = &MergeResult{AlreadyUpToDate: true}
			return nil
		}

		baseID, err := r.MergeBase(oursID, theirsID)
		if err != nil {
			return err
		}

		baseManifest, err := r.manifestOf(baseID)
		if err != nil {
			return err
		}
		oursManifest, err := r.manifestOf(oursID)
		if err != nil {
			return err
		}
		theirsManifest, err := r.manifestOf(theirsID)
		if err != nil {
			return err
		}

		diff := computeThreeWayDiff(baseManifest, oursManifest, theirsManifest)
		merged := applyMerge(baseManifest, oursManifest, theirsManifest, diff)

		if err := r.restoreWorkdir(merged); err != nil {
			return err
		}

		if len(diff.conflictPaths) > 0 {
			ms := MergeState{
				BaseCommit:    baseID,
				OursCommit:    oursID,
				TheirsCommit:  theirsID,
				ConflictPaths: diff.conflictPaths,
				OtherBranch:   otherRef,
			}
			if err := r.writeMergeState(ms); err != nil {
				return err
			}
			tracelog.Warnf("muse: merge of %s into %s left %d conflict(s)", otherRef, branch, len(diff.conflictPaths))
			result = &MergeResult{Conflicts: diff.conflictPaths}
			return nil
		}

		mergedID, err := r.snapshots.Put(merged)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		message := fmt.Sprintf("Merge %s into %s", otherRef, branch)
		newID, err := r.commits.CreateCommit([]commitstore.CommitID{oursID, theirsID}, r.repoID, mergedID, message, author, branch, &now, metadata)
		if err != nil {
			return err
		}
		if err := r.refs.CompareAndSwapRef(branchRef, oursID, newID); err != nil {
			return err
		}
		result = &MergeResult{CommitID: newID}
		return nil
	})
	return result, err
}
