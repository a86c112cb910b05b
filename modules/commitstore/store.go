package commitstore

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/muse-vcs/muse/modules/snapstore"
	"github.com/muse-vcs/muse/modules/tracelog"
)

// NotFoundError reports that a referenced commit does not exist.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return "commit '" + e.ID + "' not found"
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

type wireCommit struct {
	RepoID      string               `json:"repo_id"`
	Branch      string               `json:"branch"`
	Parents     []CommitID           `json:"parents"`
	SnapshotID  snapstore.SnapshotID `json:"snapshot_id"`
	Message     string               `json:"message"`
	Author      string               `json:"author"`
	CommittedAt *time.Time           `json:"committed_at,omitempty"`
	Metadata    Metadata             `json:"metadata,omitempty"`
}

// Store persists commits as JSON files keyed by commit ID, sharded two
// hex characters deep like the object and snapshot stores.
type Store struct {
	root string
}

func Open(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

func (s *Store) shardDir(id CommitID) string {
	return filepath.Join(s.root, string(id)[:2])
}

func (s *Store) path(id CommitID) string {
	return filepath.Join(s.shardDir(id), string(id)[2:]+".json")
}

// Has reports whether a commit with the given ID is stored.
func (s *Store) Has(id CommitID) bool {
	_, err := os.Stat(s.path(id))
	return err == nil
}

// CreateCommit derives the commit ID from its fields and persists it.
// Idempotent: if the derived ID already exists, the existing commit is
// returned unchanged and no write occurs.
func (s *Store) CreateCommit(parents []CommitID, repoID string, snapshotID snapstore.SnapshotID, message, author, branch string, timestamp *time.Time, metadata Metadata) (CommitID, error) {
	id := DeriveID(parents, snapshotID, message, author, timestamp)
	if s.Has(id) {
		return id, nil
	}
	wc := wireCommit{
		RepoID:      repoID,
		Branch:      branch,
		Parents:     parents,
		SnapshotID:  snapshotID,
		Message:     message,
		Author:      author,
		CommittedAt: timestamp,
		Metadata:    metadata,
	}
	data, err := json.Marshal(wc)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.shardDir(id), 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(s.shardDir(id), "commit-*.tmp")
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
	tracelog.Infof("commitstore: created commit %s on branch %q", id, branch)
	return id, nil
}

// GetCommit returns the commit stored under id, or a *NotFoundError.
func (s *Store) GetCommit(id CommitID) (*Commit, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{ID: string(id)}
		}
		return nil, err
	}
	var wc wireCommit
	if err := json.Unmarshal(data, &wc); err != nil {
		return nil, err
	}
	return &Commit{
		ID:          id,
		RepoID:      wc.RepoID,
		Branch:      wc.Branch,
		Parents:     wc.Parents,
		SnapshotID:  wc.SnapshotID,
		Message:     wc.Message,
		Author:      wc.Author,
		CommittedAt: wc.CommittedAt,
		Metadata:    wc.Metadata,
	}, nil
}

// WalkParents returns up to limit commits starting at start and following
// first-parent links, newest first. limit <= 0 means unbounded.
func (s *Store) WalkParents(start CommitID, limit int) ([]*Commit, error) {
	var out []*Commit
	cur := start
	for cur != "" {
		if limit > 0 && len(out) >= limit {
			break
		}
		c, err := s.GetCommit(cur)
		if err != nil {
			return out, err
		}
		out = append(out, c)
		next, ok := c.FirstParent()
		if !ok {
			break
		}
		cur = next
	}
	return out, nil
}

// FindByPrefix returns every stored commit ID with the given hex prefix.
func (s *Store) FindByPrefix(prefix string) ([]CommitID, error) {
	var matches []CommitID
	if len(prefix) < 2 {
		err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || !strings.HasSuffix(path, ".json") {
				return err
			}
			id := commitIDFromPath(s.root, path)
			if strings.HasPrefix(string(id), prefix) {
				matches = append(matches, id)
			}
			return nil
		})
		sort.Slice(matches, func(i, j int) bool { return matches[i] < matches[j] })
		return matches, err
	}
	shard := filepath.Join(s.root, prefix[:2])
	if _, err := os.Stat(shard); os.IsNotExist(err) {
		return matches, nil
	}
	err := filepath.WalkDir(shard, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".json") {
			return err
		}
		id := prefix[:2] + strings.TrimSuffix(filepath.Base(path), ".json")
		if strings.HasPrefix(id, prefix) {
			matches = append(matches, CommitID(id))
		}
		return nil
	})
	sort.Slice(matches, func(i, j int) bool { return matches[i] < matches[j] })
	return matches, err
}

func commitIDFromPath(root, path string) CommitID {
	rel, _ := filepath.Rel(root, path)
	rel = strings.TrimSuffix(rel, ".json")
	return CommitID(strings.ReplaceAll(rel, string(filepath.Separator), ""))
}
