package muse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/muse-vcs/muse/modules/commitstore"
)

func TestCommitContentAddressedIdentity(t *testing.T) {
	r := newTestRepo(t)
	writeWorkdirFile(t, r, "a.mid", "V1")

	first, err := r.Commit("first", "tester", nil)
	require.NoError(t, err)
	require.False(t, first.NoChange)

	c1, err := r.getCommit(first.CommitID)
	require.NoError(t, err)
	require.Empty(t, c1.Parents)

	writeWorkdirFile(t, r, "a.mid", "V2")
	second, err := r.Commit("second", "tester", nil)
	require.NoError(t, err)
	require.NotEqual(t, first.CommitID, second.CommitID)

	c2, err := r.getCommit(second.CommitID)
	require.NoError(t, err)
	require.Equal(t, []commitstore.CommitID{first.CommitID}, c2.Parents)
	require.NotEqual(t, c1.SnapshotID, c2.SnapshotID)
}

func TestCommitNoChangeIsReportedCleanly(t *testing.T) {
	r := newTestRepo(t)
	writeWorkdirFile(t, r, "a.mid", "V1")

	first, err := r.Commit("first", "tester", nil)
	require.NoError(t, err)

	again, err := r.Commit("first again", "tester", nil)
	require.NoError(t, err)
	require.True(t, again.NoChange)
	require.Equal(t, first.CommitID, again.CommitID)
}

func TestCommitDeduplicatesIdenticalContent(t *testing.T) {
	r := newTestRepo(t)
	writeWorkdirFile(t, r, "a.mid", "SHARED")
	writeWorkdirFile(t, r, "copy.mid", "SHARED")

	result, err := r.Commit("dedup", "tester", nil)
	require.NoError(t, err)

	c, err := r.getCommit(result.CommitID)
	require.NoError(t, err)
	manifest, err := r.snapshots.Get(c.SnapshotID)
	require.NoError(t, err)
	require.Equal(t, manifest["a.mid"], manifest["copy.mid"])
}

func TestCommitRejectsEmptyWorkdir(t *testing.T) {
	r := newTestRepo(t)
	_, err := r.Commit("empty", "tester", nil)
	require.Error(t, err)
	require.True(t, IsUserError(err))
}

func TestAmendPreservesGrandparent(t *testing.T) {
	r := newTestRepo(t)
	writeWorkdirFile(t, r, "track.mid", "V1")
	c1, err := r.Commit("c1", "tester", nil)
	require.NoError(t, err)

	writeWorkdirFile(t, r, "track.mid", "V2")
	c2, err := r.Commit("c2", "tester", nil)
	require.NoError(t, err)

	writeWorkdirFile(t, r, "track.mid", "V3")
	amended, err := r.Amend("c2 amended", "tester", nil)
	require.NoError(t, err)
	require.NotEqual(t, c2.CommitID, amended.CommitID)

	amendedCommit, err := r.getCommit(amended.CommitID)
	require.NoError(t, err)
	require.Equal(t, []commitstore.CommitID{c1.CommitID}, amendedCommit.Parents)

	branch, err := r.CurrentBranch()
	require.NoError(t, err)
	head, err := r.refs.ReadRef("refs/heads/" + branch)
	require.NoError(t, err)
	require.Equal(t, amended.CommitID, head)
}
