package muse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestRepo initializes a fresh repository under a t.TempDir() fixture.
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	dir := t.TempDir()
	r, err := Init(dir, WithUser("Test Author", "author@example.com"))
	require.NoError(t, err)
	return r
}

// writeWorkdirFile writes content at a POSIX-relative path inside r's
// working tree, creating parent directories as needed.
func writeWorkdirFile(t *testing.T, r *Repository, path, content string) {
	t.Helper()
	full := filepath.Join(r.WorkDir(), filepath.FromSlash(path))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
}

func removeWorkdirFile(t *testing.T, r *Repository, path string) {
	t.Helper()
	require.NoError(t, os.Remove(filepath.Join(r.WorkDir(), filepath.FromSlash(path))))
}
