package refstore

import (
	"testing"

	"github.com/muse-vcs/muse/modules/commitstore"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.WriteRef("refs/heads/main", commitstore.CommitID("abc123")))
	got, err := s.ReadRef("refs/heads/main")
	require.NoError(t, err)
	require.Equal(t, commitstore.CommitID("abc123"), got)
}

func TestReadMissingRefIsEmptyNotError(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	got, err := s.ReadRef("refs/heads/nope")
	require.NoError(t, err)
	require.Equal(t, commitstore.CommitID(""), got)
}

func TestInvalidRefNameRejected(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	err = s.WriteRef("../escape", commitstore.CommitID("x"))
	require.True(t, IsInvalidRefName(err))
}

func TestCompareAndSwapSucceedsAndFails(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.CompareAndSwapRef("refs/heads/main", "", commitstore.CommitID("c1")))
	err = s.CompareAndSwapRef("refs/heads/main", "", commitstore.CommitID("c2"))
	require.True(t, IsCasMismatch(err))

	require.NoError(t, s.CompareAndSwapRef("refs/heads/main", commitstore.CommitID("c1"), commitstore.CommitID("c2")))
	got, err := s.ReadRef("refs/heads/main")
	require.NoError(t, err)
	require.Equal(t, commitstore.CommitID("c2"), got)
}

func TestDeleteRefPrunesEmptyDirs(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.WriteRef("refs/remotes/origin/main", commitstore.CommitID("c1")))
	require.NoError(t, s.DeleteRef("refs/remotes/origin/main"))

	refs, err := s.ListRefs(RemotesPrefix)
	require.NoError(t, err)
	require.Empty(t, refs)
}

func TestHeadResolution(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.WriteHEAD("refs/heads/main"))
	require.NoError(t, s.WriteRef("refs/heads/main", commitstore.CommitID("deadbeef")))

	id, err := s.ResolveHEAD()
	require.NoError(t, err)
	require.Equal(t, commitstore.CommitID("deadbeef"), id)
}

func TestListRefsByPrefix(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.WriteRef("refs/heads/main", commitstore.CommitID("c1")))
	require.NoError(t, s.WriteRef("refs/heads/feature", commitstore.CommitID("c2")))
	require.NoError(t, s.WriteRef("refs/tags/v1", commitstore.CommitID("c1")))

	heads, err := s.ListRefs(HeadsPrefix)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"refs/heads/feature", "refs/heads/main"}, heads)
}
