package muse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/muse-vcs/muse/modules/commitstore"
)

func TestResetHardRestoresSnapshot(t *testing.T) {
	r := newTestRepo(t)
	writeWorkdirFile(t, r, "track.mid", "V1")
	c1, err := r.Commit("c1", "tester", nil)
	require.NoError(t, err)

	writeWorkdirFile(t, r, "track.mid", "V2")
	writeWorkdirFile(t, r, "extra.mid", "Z")
	_, err = r.Commit("c2", "tester", nil)
	require.NoError(t, err)

	require.NoError(t, r.Reset(string(c1.CommitID), ResetHard))

	branch, err := r.CurrentBranch()
	require.NoError(t, err)
	head, err := r.refs.ReadRef("refs/heads/" + branch)
	require.NoError(t, err)
	require.Equal(t, c1.CommitID, head)

	data, err := os.ReadFile(filepath.Join(r.WorkDir(), "track.mid"))
	require.NoError(t, err)
	require.Equal(t, "V1", string(data))

	_, err = os.Stat(filepath.Join(r.WorkDir(), "extra.mid"))
	require.True(t, os.IsNotExist(err))
}

func TestResetSoftLeavesWorkdirUntouched(t *testing.T) {
	r := newTestRepo(t)
	writeWorkdirFile(t, r, "track.mid", "V1")
	c1, err := r.Commit("c1", "tester", nil)
	require.NoError(t, err)

	writeWorkdirFile(t, r, "track.mid", "V2")
	_, err = r.Commit("c2", "tester", nil)
	require.NoError(t, err)

	require.NoError(t, r.Reset(string(c1.CommitID), ResetSoft))

	data, err := os.ReadFile(filepath.Join(r.WorkDir(), "track.mid"))
	require.NoError(t, err)
	require.Equal(t, "V2", string(data))
}

func TestCheckoutRequiresCleanTreeUnlessForced(t *testing.T) {
	r := newTestRepo(t)
	writeWorkdirFile(t, r, "a.mid", "X")
	_, err := r.Commit("base", "tester", nil)
	require.NoError(t, err)

	_, err = r.Checkout("other", true, false)
	require.NoError(t, err)
	_, err = r.Checkout("main", false, false)
	require.NoError(t, err)

	writeWorkdirFile(t, r, "a.mid", "dirty")
	_, err = r.Checkout("other", false, false)
	require.Error(t, err)
	require.True(t, IsUserError(err))

	_, err = r.Checkout("other", false, true)
	require.NoError(t, err)
}

func TestBranchCreateAndDelete(t *testing.T) {
	r := newTestRepo(t)
	writeWorkdirFile(t, r, "a.mid", "X")
	_, err := r.Commit("base", "tester", nil)
	require.NoError(t, err)

	require.NoError(t, r.CreateBranch("feature", "HEAD"))
	branches, err := r.ListBranches()
	require.NoError(t, err)
	require.Len(t, branches, 2)

	require.NoError(t, r.DeleteBranch("feature"))
	branches, err = r.ListBranches()
	require.NoError(t, err)
	require.Len(t, branches, 1)
}

func TestRebaseReplaysLinearCommits(t *testing.T) {
	r := newTestRepo(t)
	writeWorkdirFile(t, r, "shared.mid", "base")
	base, err := r.Commit("base", "tester", nil)
	require.NoError(t, err)

	_, err = r.Checkout("feature", true, false)
	require.NoError(t, err)
	writeWorkdirFile(t, r, "feature.mid", "f1")
	f1, err := r.Commit("f1", "tester", nil)
	require.NoError(t, err)
	writeWorkdirFile(t, r, "feature.mid", "f2")
	f2, err := r.Commit("f2", "tester", nil)
	require.NoError(t, err)

	_, err = r.Checkout("main", false, false)
	require.NoError(t, err)
	writeWorkdirFile(t, r, "shared.mid", "updated")
	newBase, err := r.Commit("advance main", "tester", nil)
	require.NoError(t, err)

	result, err := r.Rebase([]commitstore.CommitID{f1.CommitID, f2.CommitID}, newBase.CommitID)
	require.NoError(t, err)
	require.Len(t, result.Rebased, 2)
	require.Empty(t, result.ConflictPaths)
	_ = base
}
