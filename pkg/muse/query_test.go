package muse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogFiltersByAuthorAndTagPrefix(t *testing.T) {
	r := newTestRepo(t)
	writeWorkdirFile(t, r, "a.mid", "V1")
	c1, err := r.Commit("first", "alice", nil)
	require.NoError(t, err)
	require.NoError(t, r.Annotate(string(c1.CommitID), "emotion:joyful"))

	writeWorkdirFile(t, r, "a.mid", "V2")
	_, err = r.Commit("second", "bob", nil)
	require.NoError(t, err)

	head, err := r.Revision("HEAD")
	require.NoError(t, err)

	all, err := r.Log(context.Background(), head, LogOptions{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	onlyAlice, err := r.Log(context.Background(), head, LogOptions{AuthorSubstr: "alice"})
	require.NoError(t, err)
	require.Len(t, onlyAlice, 1)
	require.Equal(t, c1.CommitID, onlyAlice[0].Commit.ID)

	tagged, err := r.Log(context.Background(), head, LogOptions{TagPrefix: "emotion:"})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	require.Equal(t, []string{"emotion:joyful"}, tagged[0].Tags)

	limited, err := r.Log(context.Background(), head, LogOptions{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestStatusReportsBranchAndDirtyFiles(t *testing.T) {
	r := newTestRepo(t)
	writeWorkdirFile(t, r, "a.mid", "V1")
	_, err := r.Commit("first", "tester", nil)
	require.NoError(t, err)

	status, err := r.Status()
	require.NoError(t, err)
	require.Equal(t, "main", status.Branch)
	require.False(t, status.Diff.Dirty())

	writeWorkdirFile(t, r, "b.mid", "new")
	status, err = r.Status()
	require.NoError(t, err)
	require.True(t, status.Diff.Dirty())
}
