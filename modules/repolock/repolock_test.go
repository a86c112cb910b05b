package repolock

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTryAcquireFailsWhileHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "muse.lock")
	l1 := New(path)
	release, err := l1.Acquire()
	require.NoError(t, err)
	defer release()

	l2 := New(path)
	_, ok, err := l2.TryAcquire()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAcquireReleaseAllowsReacquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), "muse.lock")
	l := New(path)
	release, err := l.Acquire()
	require.NoError(t, err)
	release()

	release2, err := l.Acquire()
	require.NoError(t, err)
	release2()
}
