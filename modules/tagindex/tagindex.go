// Package tagindex implements the many-to-many commit↔tag mapping: a
// commit may carry multiple tags, a tag may be applied to multiple
// commits, and re-adding an existing tag is a no-op.
package tagindex

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/muse-vcs/muse/modules/commitstore"
)

// Store persists the tag index as two complementary on-disk maps: one
// keyed by commit (for "what tags does this commit carry") and one keyed
// by tag (for "which commits carry this tag"), so both lookup directions
// are O(1) file reads instead of a full scan.
type Store struct {
	root string // .muse/tags
}

func Open(root string) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, "by-commit"), 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(root, "by-tag"), 0o755); err != nil {
		return nil, err
	}
	return &Store{root: root}, nil
}

func (s *Store) byCommitPath(id commitstore.CommitID) string {
	return filepath.Join(s.root, "by-commit", string(id)+".json")
}

func (s *Store) byTagPath(tag string) string {
	return filepath.Join(s.root, "by-tag", sanitizeTagFilename(tag)+".json")
}

// sanitizeTagFilename replaces the namespace separator so tags like
// "emotion:joyful" don't collide with path separators on any OS.
func sanitizeTagFilename(tag string) string {
	return strings.ReplaceAll(tag, ":", "__")
}

func readStrings(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func writeStrings(path string, values []string) error {
	sort.Strings(values)
	data, err := json.Marshal(values)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "tag-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
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

func insertUnique(values []string, v string) ([]string, bool) {
	for _, existing := range values {
		if existing == v {
			return values, false
		}
	}
	return append(values, v), true
}

func removeValue(values []string, v string) []string {
	out := values[:0]
	for _, existing := range values {
		if existing != v {
			out = append(out, existing)
		}
	}
	return out
}

// Add attaches tag to commit. Idempotent: adding the same tag twice leaves
// exactly one entry in each direction.
func (s *Store) Add(commit commitstore.CommitID, tag string) error {
	tags, err := readStrings(s.byCommitPath(commit))
	if err != nil {
		return err
	}
	tags, changed := insertUnique(tags, tag)
	if changed {
		if err := writeStrings(s.byCommitPath(commit), tags); err != nil {
			return err
		}
	}
	commits, err := readStrings(s.byTagPath(tag))
	if err != nil {
		return err
	}
	commits, changed = insertUnique(commits, string(commit))
	if changed {
		if err := writeStrings(s.byTagPath(tag), commits); err != nil {
			return err
		}
	}
	return nil
}

// Remove detaches tag from commit, if present.
func (s *Store) Remove(commit commitstore.CommitID, tag string) error {
	tags, err := readStrings(s.byCommitPath(commit))
	if err != nil {
		return err
	}
	if err := writeStrings(s.byCommitPath(commit), removeValue(tags, tag)); err != nil {
		return err
	}
	commits, err := readStrings(s.byTagPath(tag))
	if err != nil {
		return err
	}
	return writeStrings(s.byTagPath(tag), removeValue(commits, string(commit)))
}

// TagsFor returns the tags attached to commit.
func (s *Store) TagsFor(commit commitstore.CommitID) ([]string, error) {
	return readStrings(s.byCommitPath(commit))
}

// CommitsFor returns the commits carrying tag.
func (s *Store) CommitsFor(tag string) ([]commitstore.CommitID, error) {
	raw, err := readStrings(s.byTagPath(tag))
	if err != nil {
		return nil, err
	}
	out := make([]commitstore.CommitID, len(raw))
	for i, r := range raw {
		out[i] = commitstore.CommitID(r)
	}
	return out, nil
}

// BulkTagsFor returns a map from commit to its tags for every commit in
// ids, in a single pass, so a caller enriching a whole history walk never
// pays one file read per commit per tag namespace (avoiding N+1 lookups).
func (s *Store) BulkTagsFor(ids []commitstore.CommitID) (map[commitstore.CommitID][]string, error) {
	out := make(map[commitstore.CommitID][]string, len(ids))
	for _, id := range ids {
		tags, err := s.TagsFor(id)
		if err != nil {
			return nil, err
		}
		out[id] = tags
	}
	return out, nil
}

// FirstWithPrefix returns the first tag on commit whose namespace matches
// prefix (e.g. "emotion:"), stripped of the prefix, or "" if none.
func FirstWithPrefix(tags []string, prefix string) string {
	for _, t := range tags {
		if strings.HasPrefix(t, prefix) {
			return strings.TrimPrefix(t, prefix)
		}
	}
	return ""
}
