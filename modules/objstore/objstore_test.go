package objstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutIsIdempotentAndReadable(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	id1, err := s.Put([]byte("hello"))
	require.NoError(t, err)
	id2, err := s.Put([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, id1, id2)

	got, err := s.Get(id1)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)
}

func TestGetMissingReturnsMissingObjectError(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	_, err = s.Get(Hash([]byte("never stored")))
	require.Error(t, err)
	require.True(t, IsMissingObject(err))
}

func TestDeduplicatesIdenticalContent(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	idA, err := s.Put([]byte("SHARED"))
	require.NoError(t, err)
	idB, err := s.Put([]byte("SHARED"))
	require.NoError(t, err)
	require.Equal(t, idA, idB)
	require.Equal(t, Hash([]byte("SHARED")), idA)
}

func TestSearchByPrefix(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	id, err := s.Put([]byte("content"))
	require.NoError(t, err)

	matches, err := s.Search(string(id)[:6])
	require.NoError(t, err)
	require.Contains(t, matches, id)
}

func TestPruneRemovesUnreachable(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	keep, err := s.Put([]byte("keep"))
	require.NoError(t, err)
	_, err = s.Put([]byte("drop"))
	require.NoError(t, err)

	removed, err := s.Prune(map[ObjectID]struct{}{keep: {}})
	require.NoError(t, err)
	require.Equal(t, 1, removed)
	require.True(t, s.Has(keep))
}
