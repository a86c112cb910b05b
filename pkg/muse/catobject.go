package muse

import (
	"encoding/json"

	"github.com/muse-vcs/muse/modules/commitstore"
	"github.com/muse-vcs/muse/modules/objstore"
	"github.com/muse-vcs/muse/modules/snapstore"
)

// ObjectKind discriminates the four kinds of content-addressed data a
// repository stores, since they share no behavior beyond "looked up by a
// 64-char hex key".
type ObjectKind string

const (
	KindBlob     ObjectKind = "blob"
	KindSnapshot ObjectKind = "snapshot"
	KindCommit   ObjectKind = "commit"
	KindUnknown  ObjectKind = "unknown"
)

// CatObject looks up id against each store in turn (blob, snapshot, commit)
// and returns its kind and raw JSON/byte payload, for inspection tooling.
// An abbreviated hex ID (4–63 chars) is expanded first, against blobs and
// commits; an ambiguous prefix is reported with its candidates.
func (r *Repository) CatObject(id string) (ObjectKind, []byte, error) {
	if len(id) >= 4 && len(id) < 64 && isHexDigits(id) {
		expanded, err := r.expandObjectPrefix(id)
		if err != nil {
			return KindUnknown, nil, err
		}
		id = expanded
	}
	if r.objects.Has(objstore.ObjectID(id)) {
		b, err := r.objects.Get(objstore.ObjectID(id))
		return KindBlob, b, err
	}
	if r.snapshots.Has(snapstore.SnapshotID(id)) {
		m, err := r.snapshots.Get(snapstore.SnapshotID(id))
		if err != nil {
			return KindSnapshot, nil, err
		}
		data, err := json.Marshal(m)
		return KindSnapshot, data, err
	}
	if r.commits.Has(commitstore.CommitID(id)) {
		c, err := r.getCommit(commitstore.CommitID(id))
		if err != nil {
			return KindCommit, nil, err
		}
		data, err := json.Marshal(c)
		return KindCommit, data, err
	}
	return KindUnknown, nil, NewUserError("no object, snapshot, or commit found for %q", id)
}

// expandObjectPrefix resolves an abbreviated ID against the blob and commit
// stores.
func (r *Repository) expandObjectPrefix(prefix string) (string, error) {
	var candidates []string
	blobs, err := r.objects.Search(prefix)
	if err != nil {
		return "", err
	}
	for _, b := range blobs {
		candidates = append(candidates, string(b))
	}
	commits, err := r.commits.FindByPrefix(prefix)
	if err != nil {
		return "", err
	}
	for _, c := range commits {
		candidates = append(candidates, string(c))
	}
	switch len(candidates) {
	case 0:
		return "", NewUserError("no object, snapshot, or commit found for %q", prefix)
	case 1:
		return candidates[0], nil
	default:
		return "", NewUserError("ambiguous prefix %q: candidates %v", prefix, candidates)
	}
}
