// Package commitstore implements the commit DAG: commit rows addressed by a
// SHA-256 ID derived from their parents, snapshot, message, and either a
// timestamp (user-visible commits) or the author (plumbing commits).
package commitstore

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/muse-vcs/muse/modules/snapstore"
)

// CommitID is a 64-char lowercase hex SHA-256 digest.
type CommitID string

// TimeFormat is the exact RFC 3339 rendering used inside the timestamped
// commit-ID hash; it must never change without invalidating every existing
// commit_id produced by this implementation.
const TimeFormat = "2006-01-02T15:04:05Z"

// Metadata is the open-ended domain-annotation map carried on a commit
// (tempo_bpm, section, emotion, ...).
type Metadata map[string]any

// TempoBPM returns the tempo_bpm annotation, Go ok-idiom style.
func (m Metadata) TempoBPM() (float64, bool) {
	if m == nil {
		return 0, false
	}
	v, ok := m["tempo_bpm"]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// Commit is a node in the commit DAG.
type Commit struct {
	ID              CommitID
	RepoID          string
	Branch          string
	Parents         []CommitID // 0, 1 (normal), or 2 (merge)
	SnapshotID      snapstore.SnapshotID
	Message         string
	Author          string
	CommittedAt     *time.Time // nil for plumbing commits
	Metadata        Metadata
}

func sortedParentIDs(parents []CommitID) []string {
	ids := make([]string, len(parents))
	for i, p := range parents {
		ids[i] = string(p)
	}
	sort.Strings(ids)
	return ids
}

// DeriveID computes the commit ID for the given fields. When timestamp is
// non-nil the timestamped (user-visible) scheme is used; otherwise the
// plumbing scheme (idempotent, no timestamp) is used. The serialization is
// the on-disk contract and must be reproduced byte-for-byte:
//
//	timestamped: SHA256(parents joined "|" + "\x00" + snapshot_id + "\x00" + message + "\x00" + timestamp_iso)
//	plumbing:    SHA256(parents joined "|" + "\x00" + snapshot_id + "\x00" + message + "\x00" + author)
func DeriveID(parents []CommitID, snapshotID snapstore.SnapshotID, message, author string, timestamp *time.Time) CommitID {
	joined := strings.Join(sortedParentIDs(parents), "|")
	var h [32]byte
	if timestamp != nil {
		iso := timestamp.UTC().Format(TimeFormat)
		h = sha256.Sum256([]byte(joined + "\x00" + string(snapshotID) + "\x00" + message + "\x00" + iso))
	} else {
		h = sha256.Sum256([]byte(joined + "\x00" + string(snapshotID) + "\x00" + message + "\x00" + author))
	}
	return CommitID(hex.EncodeToString(h[:]))
}

// IsMerge reports whether c has two parents.
func (c *Commit) IsMerge() bool {
	return len(c.Parents) == 2
}

// FirstParent returns c's first parent and true, or the zero value and
// false for a root commit.
func (c *Commit) FirstParent() (CommitID, bool) {
	if len(c.Parents) == 0 {
		return "", false
	}
	return c.Parents[0], true
}
