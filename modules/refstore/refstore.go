// Package refstore implements the ref store: small text files under
// .muse/refs/ holding a commit ID, written atomically and supporting
// compare-and-swap updates for contended scripting agents.
package refstore

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/muse-vcs/muse/modules/commitstore"
	"github.com/muse-vcs/muse/modules/tracelog"
)

const (
	HeadsPrefix   = "refs/heads/"
	TagsPrefix    = "refs/tags/"
	RemotesPrefix = "refs/remotes/"
)

// InvalidRefNameError reports a ref name outside the heads/tags/remotes
// namespaces.
type InvalidRefNameError struct {
	Name string
}

func (e *InvalidRefNameError) Error() string {
	return "invalid ref name: " + e.Name
}

func IsInvalidRefName(err error) bool {
	var target *InvalidRefNameError
	return errors.As(err, &target)
}

// CasMismatchError reports that CompareAndSwapRef's expected value did not
// match the ref's current value.
type CasMismatchError struct {
	Name     string
	Expected commitstore.CommitID
	Actual   commitstore.CommitID
}

func (e *CasMismatchError) Error() string {
	return "ref '" + e.Name + "' CAS mismatch: expected '" + string(e.Expected) + "' got '" + string(e.Actual) + "'"
}

func IsCasMismatch(err error) bool {
	var target *CasMismatchError
	return errors.As(err, &target)
}

func validate(name string) error {
	if strings.HasPrefix(name, HeadsPrefix) || strings.HasPrefix(name, TagsPrefix) || strings.HasPrefix(name, RemotesPrefix) {
		return nil
	}
	return &InvalidRefNameError{Name: name}
}

// Store manages ref files rooted at a .muse directory.
type Store struct {
	root string // the .muse directory
}

func Open(root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, "refs", "heads"), 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(root, "refs", "tags"), 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(root, "refs", "remotes"), 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

func (s *Store) pathFor(name string) string {
	return filepath.Join(s.root, filepath.FromSlash(name))
}

// ReadRef returns the commit ID stored at name, or "" if the ref exists but
// is empty (no commits yet) or does not exist at all.
func (s *Store) ReadRef(name string) (commitstore.CommitID, error) {
	if err := validate(name); err != nil {
		return "", err
	}
	data, err := os.ReadFile(s.pathFor(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return commitstore.CommitID(strings.TrimSpace(string(data))), nil
}

// WriteRef writes id to name unconditionally, creating parent directories
// as needed, via an atomic temp-then-rename.
func (s *Store) WriteRef(name string, id commitstore.CommitID) error {
	if err := validate(name); err != nil {
		return err
	}
	path := s.pathFor(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ref-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(string(id)); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	tracelog.Infof("refstore: %s -> %s", name, id)
	return nil
}

// CompareAndSwapRef atomically updates name to new only if its current
// value equals expected ("" matches a missing or empty ref).
func (s *Store) CompareAndSwapRef(name string, expected, new commitstore.CommitID) error {
	current, err := s.ReadRef(name)
	if err != nil {
		return err
	}
	if current != expected {
		return &CasMismatchError{Name: name, Expected: expected, Actual: current}
	}
	return s.WriteRef(name, new)
}

// DeleteRef removes name, pruning now-empty parent directories under refs/.
func (s *Store) DeleteRef(name string) error {
	if err := validate(name); err != nil {
		return err
	}
	path := s.pathFor(name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	s.pruneEmptyDirs(filepath.Dir(path))
	return nil
}

func (s *Store) pruneEmptyDirs(dir string) {
	refsRoot := filepath.Join(s.root, "refs")
	for {
		if dir == refsRoot || !strings.HasPrefix(dir, refsRoot) {
			return
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// ListRefs returns every ref name beginning with prefix, sorted.
func (s *Store) ListRefs(prefix string) ([]string, error) {
	var base string
	switch {
	case strings.HasPrefix(prefix, HeadsPrefix):
		base = filepath.Join(s.root, "refs", "heads")
	case strings.HasPrefix(prefix, TagsPrefix):
		base = filepath.Join(s.root, "refs", "tags")
	case strings.HasPrefix(prefix, RemotesPrefix):
		base = filepath.Join(s.root, "refs", "remotes")
	default:
		base = filepath.Join(s.root, "refs")
	}
	var names []string
	_ = filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(s.root, path)
		if relErr != nil {
			return nil
		}
		name := filepath.ToSlash(rel)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	sort.Strings(names)
	return names, nil
}

// ReadHEAD returns the branch ref name HEAD points at (e.g.
// "refs/heads/main").
func (s *Store) ReadHEAD() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.root, "HEAD"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// WriteHEAD points the HEAD symbolic ref at branchRef.
func (s *Store) WriteHEAD(branchRef string) error {
	path := filepath.Join(s.root, "HEAD")
	tmp, err := os.CreateTemp(s.root, ".head-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(branchRef); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

// ResolveHEAD dereferences HEAD once and reads the resulting branch ref,
// returning the commit ID it points at (possibly "").
func (s *Store) ResolveHEAD() (commitstore.CommitID, error) {
	branchRef, err := s.ReadHEAD()
	if err != nil {
		return "", err
	}
	return s.ReadRef(branchRef)
}
