package muse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/muse-vcs/muse/modules/commitstore"
	"github.com/muse-vcs/muse/modules/objstore"
)

func TestMissingFromAndIngestRoundTrip(t *testing.T) {
	src := newTestRepo(t)
	writeWorkdirFile(t, src, "a.mid", "V1")
	c1, err := src.Commit("first", "tester", nil)
	require.NoError(t, err)
	writeWorkdirFile(t, src, "a.mid", "V2")
	c2, err := src.Commit("second", "tester", nil)
	require.NoError(t, err)

	delta, err := src.MissingFrom("main", nil, nil)
	require.NoError(t, err)
	require.Equal(t, c2.CommitID, delta.Head)
	require.Len(t, delta.Commits, 2)
	require.Equal(t, c1.CommitID, delta.Commits[0].ID, "parents must precede children")
	require.Equal(t, c2.CommitID, delta.Commits[1].ID)
	require.Len(t, delta.Objects, 2)

	dst := newTestRepo(t)
	require.NoError(t, dst.Ingest("origin", delta))

	got, err := dst.commits.GetCommit(c2.CommitID)
	require.NoError(t, err)
	require.Equal(t, "second", got.Message)

	tracking, err := dst.refs.ReadRef("refs/remotes/origin/main")
	require.NoError(t, err)
	require.Equal(t, c2.CommitID, tracking)

	manifest, err := dst.snapshots.Get(got.SnapshotID)
	require.NoError(t, err)
	b, err := dst.objects.Get(manifest["a.mid"])
	require.NoError(t, err)
	require.Equal(t, "V2", string(b))
}

func TestMissingFromSkipsWhatThePeerAlreadyHas(t *testing.T) {
	src := newTestRepo(t)
	writeWorkdirFile(t, src, "a.mid", "V1")
	c1, err := src.Commit("first", "tester", nil)
	require.NoError(t, err)
	writeWorkdirFile(t, src, "a.mid", "V2")
	c2, err := src.Commit("second", "tester", nil)
	require.NoError(t, err)

	v1ID := objstore.Hash([]byte("V1"))
	delta, err := src.MissingFrom("main", []commitstore.CommitID{c1.CommitID}, []objstore.ObjectID{v1ID})
	require.NoError(t, err)
	require.Len(t, delta.Commits, 1)
	require.Equal(t, c2.CommitID, delta.Commits[0].ID)
	_, hasV1 := delta.Objects[v1ID]
	require.False(t, hasV1)
}

func TestIngestIsIdempotent(t *testing.T) {
	src := newTestRepo(t)
	writeWorkdirFile(t, src, "a.mid", "V1")
	_, err := src.Commit("first", "tester", nil)
	require.NoError(t, err)

	delta, err := src.MissingFrom("main", nil, nil)
	require.NoError(t, err)

	dst := newTestRepo(t)
	require.NoError(t, dst.Ingest("origin", delta))
	require.NoError(t, dst.Ingest("origin", delta))
}

func TestPruneRemovesOrphanedObjects(t *testing.T) {
	r := newTestRepo(t)
	writeWorkdirFile(t, r, "keep.mid", "KEEP")
	c1, err := r.Commit("keep", "tester", nil)
	require.NoError(t, err)

	writeWorkdirFile(t, r, "orphan.mid", "ORPHAN")
	_, err = r.Commit("orphan", "tester", nil)
	require.NoError(t, err)

	require.NoError(t, r.Reset(string(c1.CommitID), ResetHard))

	orphanID := objstore.Hash([]byte("ORPHAN"))
	require.True(t, r.objects.Has(orphanID))

	removed, err := r.Prune()
	require.NoError(t, err)
	require.Equal(t, 1, removed)
	require.False(t, r.objects.Has(orphanID))
	require.True(t, r.objects.Has(objstore.Hash([]byte("KEEP"))))
}
