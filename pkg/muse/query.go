package muse

import (
	"context"
	"strings"
	"time"

	"github.com/muse-vcs/muse/modules/commitstore"
	"github.com/muse-vcs/muse/modules/tagindex"
)

// LogEntry enriches a commit with its tags for display.
type LogEntry struct {
	Commit *commitstore.Commit
	Tags   []string
}

// LogOptions filters a history walk.
type LogOptions struct {
	Limit        int    // <= 0 means unbounded
	Since, Until *time.Time
	AuthorSubstr string
	TagPrefix    string // e.g. "emotion:" restricts to commits carrying a tag in that namespace
}

// Log walks start's first-parent history (newest first), applying filters
// and attaching tags in a single batched lookup. Honors ctx cancellation
// between commit fetches.
func (r *Repository) Log(ctx context.Context, start commitstore.CommitID, opts LogOptions) ([]LogEntry, error) {
	var walked []*commitstore.Commit
	cur := start
	for cur != "" {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		c, err := r.getCommit(cur)
		if err != nil {
			return nil, err
		}
		if passesFilter(c, opts) {
			walked = append(walked, c)
		}
		next, ok := c.FirstParent()
		if !ok {
			break
		}
		cur = next
	}

	ids := make([]commitstore.CommitID, len(walked))
	for i, c := range walked {
		ids[i] = c.ID
	}
	tagsByCommit, err := r.tags.BulkTagsFor(ids)
	if err != nil {
		return nil, err
	}

	entries := make([]LogEntry, 0, len(walked))
	for _, c := range walked {
		if opts.TagPrefix != "" && tagindex.FirstWithPrefix(tagsByCommit[c.ID], opts.TagPrefix) == "" {
			continue
		}
		entries = append(entries, LogEntry{Commit: c, Tags: tagsByCommit[c.ID]})
		if opts.Limit > 0 && len(entries) >= opts.Limit {
			break
		}
	}
	return entries, nil
}

func passesFilter(c *commitstore.Commit, opts LogOptions) bool {
	if opts.Since != nil && (c.CommittedAt == nil || c.CommittedAt.Before(*opts.Since)) {
		return false
	}
	if opts.Until != nil && (c.CommittedAt == nil || c.CommittedAt.After(*opts.Until)) {
		return false
	}
	if opts.AuthorSubstr != "" && !strings.Contains(strings.ToLower(c.Author), strings.ToLower(opts.AuthorSubstr)) {
		return false
	}
	return true
}

// Status reports the working tree's diff against HEAD's snapshot, and the
// current branch name.
type Status struct {
	Branch string
	Diff   DiffResult
}

// Status computes the repository's current status.
func (r *Repository) Status() (Status, error) {
	branch, err := r.CurrentBranch()
	if err != nil {
		return Status{}, err
	}
	manifest, err := r.headManifest()
	if err != nil {
		return Status{}, err
	}
	diff, err := Diff(r.workDir, manifest)
	if err != nil {
		return Status{}, err
	}
	return Status{Branch: branch, Diff: diff}, nil
}
