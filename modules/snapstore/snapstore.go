// Package snapstore implements the snapshot store: immutable path→object_id
// manifests keyed by a platform-independent hash of their sorted entries.
package snapstore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/muse-vcs/muse/modules/objstore"
)

// SnapshotID is a 64-char lowercase hex SHA-256 digest of a manifest.
type SnapshotID string

// Manifest maps a POSIX-relative path to the object ID of its content.
type Manifest map[string]objstore.ObjectID

// Paths returns the manifest's paths in sorted (byte-wise) order.
func (m Manifest) Paths() []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// ID computes the snapshot ID for m: sort entries by path using byte-wise
// ordering, render each as "path:object_id", join with "\n", and SHA-256
// the result. This exact serialization is the on-disk contract; changing it
// changes every snapshot_id produced by this implementation.
func (m Manifest) ID() SnapshotID {
	paths := m.Paths()
	lines := make([]string, 0, len(paths))
	for _, p := range paths {
		lines = append(lines, p+":"+string(m[p]))
	}
	sum := sha256.Sum256([]byte(strings.Join(lines, "\n")))
	return SnapshotID(hex.EncodeToString(sum[:]))
}

// MissingSnapshotError reports that a referenced snapshot is absent from
// the store.
type MissingSnapshotError struct {
	ID string
}

func (e *MissingSnapshotError) Error() string {
	return "snapshot '" + e.ID + "' not found"
}

func IsMissingSnapshot(err error) bool {
	var target *MissingSnapshotError
	return errors.As(err, &target)
}

// Store persists manifests as JSON files keyed by their snapshot ID,
// sharded the same way the object store is, since a repository may
// accumulate one snapshot per commit.
type Store struct {
	root string
}

func Open(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

func (s *Store) shardDir(id SnapshotID) string {
	return filepath.Join(s.root, string(id)[:2])
}

func (s *Store) path(id SnapshotID) string {
	return filepath.Join(s.shardDir(id), string(id)[2:]+".json")
}

// Has reports whether a snapshot with the given ID is stored.
func (s *Store) Has(id SnapshotID) bool {
	_, err := os.Stat(s.path(id))
	return err == nil
}

// Put stores m and returns its snapshot ID. Idempotent: re-putting the same
// manifest content is a no-op.
func (s *Store) Put(m Manifest) (SnapshotID, error) {
	id := m.ID()
	if s.Has(id) {
		return id, nil
	}
	if err := os.MkdirAll(s.shardDir(id), 0o755); err != nil {
		return "", err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(s.shardDir(id), "snap-*.tmp")
	if err != nil {
		return "", err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	if err := os.Rename(tmpPath, s.path(id)); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	return id, nil
}

// Get returns the manifest stored under id, or a *MissingSnapshotError.
func (s *Store) Get(id SnapshotID) (Manifest, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &MissingSnapshotError{ID: string(id)}
		}
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
