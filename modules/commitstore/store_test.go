package commitstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCreateCommitIsIdempotentForPlumbing(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	id1, err := s.CreateCommit(nil, "repo", "snap1", "msg", "author", "main", nil, nil)
	require.NoError(t, err)
	id2, err := s.CreateCommit(nil, "repo", "snap1", "msg", "author", "main", nil, nil)
	require.NoError(t, err)
	require.Equal(t, id1, id2)
}

func TestTimestampedCommitsDifferPerInvocation(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Second)

	id1, err := s.CreateCommit(nil, "repo", "snap1", "msg", "author", "main", &t1, nil)
	require.NoError(t, err)
	id2, err := s.CreateCommit(nil, "repo", "snap1", "msg", "author", "main", &t2, nil)
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)
}

func TestGetAndWalkParents(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	root, err := s.CreateCommit(nil, "repo", "snap-root", "root", "a", "main", nil, nil)
	require.NoError(t, err)
	child, err := s.CreateCommit([]CommitID{root}, "repo", "snap-child", "child", "a", "main", nil, nil)
	require.NoError(t, err)

	chain, err := s.WalkParents(child, 0)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	require.Equal(t, child, chain[0].ID)
	require.Equal(t, root, chain[1].ID)
}

func TestFindByPrefix(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	id, err := s.CreateCommit(nil, "repo", "snap1", "msg", "author", "main", nil, nil)
	require.NoError(t, err)

	matches, err := s.FindByPrefix(string(id)[:6])
	require.NoError(t, err)
	require.Contains(t, matches, id)
}

func TestGetMissingReturnsNotFound(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	_, err = s.GetCommit(CommitID("0000000000000000000000000000000000000000000000000000000000000000"[:64]))
	require.True(t, IsNotFound(err))
}
