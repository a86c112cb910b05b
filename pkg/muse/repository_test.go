package muse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitCreatesRepositoryLayout(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir, WithDefaultBranch("trunk"), WithUser("Ada", "ada@example.com"))
	require.NoError(t, err)
	require.NotEmpty(t, r.RepoID())

	branch, err := r.CurrentBranch()
	require.NoError(t, err)
	require.Equal(t, "trunk", branch)
	require.Equal(t, "Ada", r.Config().User.Name)
}

func TestInitRejectsExistingRepository(t *testing.T) {
	dir := t.TempDir()
	_, err := Init(dir)
	require.NoError(t, err)

	_, err = Init(dir)
	require.Error(t, err)
	require.True(t, IsUserError(err))
}

func TestOpenFindsRepositoryFromSubdirectory(t *testing.T) {
	dir := t.TempDir()
	r, err := Init(dir)
	require.NoError(t, err)

	opened, err := Open(r.WorkDir())
	require.NoError(t, err)
	require.Equal(t, r.RepoID(), opened.RepoID())
}

func TestOpenReportsNotARepository(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(dir)
	require.Error(t, err)
	require.True(t, IsNotARepository(err))
}
