package muse

import (
	"strconv"
	"strings"

	"github.com/muse-vcs/muse/modules/commitstore"
	"github.com/muse-vcs/muse/modules/refstore"
)

func isHexDigits(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return false
		}
	}
	return true
}

// Revision resolves a user-supplied ref string to a commit ID, following
// the fixed resolution order: HEAD, HEAD~N, full hash, hex prefix, bare
// branch name.
func (r *Repository) Revision(ref string) (commitstore.CommitID, error) {
	switch {
	case ref == "HEAD":
		id, err := r.refs.ResolveHEAD()
		if err != nil {
			return "", err
		}
		if id == "" {
			return "", NewUserError("HEAD has no commits yet")
		}
		return id, nil

	case strings.HasPrefix(ref, "HEAD~"):
		n, err := strconv.Atoi(ref[len("HEAD~"):])
		if err != nil || n < 0 {
			return "", NewUserError("cannot resolve revision %q", ref)
		}
		head, err := r.refs.ResolveHEAD()
		if err != nil {
			return "", err
		}
		if head == "" {
			return "", NewUserError("HEAD has no commits yet")
		}
		return r.resolveAncestor(head, n)

	case len(ref) == 64 && isHexDigits(ref):
		if _, err := r.getCommit(commitstore.CommitID(ref)); err != nil {
			if commitstore.IsNotFound(err) {
				return "", NewUserError("unknown revision %q", ref)
			}
			return "", err
		}
		return commitstore.CommitID(ref), nil

	case len(ref) >= 4 && len(ref) < 64 && isHexDigits(ref):
		matches, err := r.commits.FindByPrefix(ref)
		if err != nil {
			return "", err
		}
		switch len(matches) {
		case 0:
			return "", NewUserError("unknown revision %q", ref)
		case 1:
			return matches[0], nil
		default:
			return "", NewUserError("ambiguous revision %q: candidates %v", ref, matches)
		}

	default:
		id, err := r.refs.ReadRef(refstore.HeadsPrefix + ref)
		if err != nil {
			return "", err
		}
		if id == "" {
			return "", NewUserError("unknown revision or branch %q", ref)
		}
		return id, nil
	}
}

// resolveAncestor walks n first-parent steps back from start.
func (r *Repository) resolveAncestor(start commitstore.CommitID, n int) (commitstore.CommitID, error) {
	cur := start
	for i := 0; i < n; i++ {
		c, err := r.getCommit(cur)
		if err != nil {
			return "", err
		}
		parent, ok := c.FirstParent()
		if !ok {
			return "", NewUserError("cannot resolve %d generations back from %s: history ends at %s", n, start, c.ID)
		}
		cur = parent
	}
	return cur, nil
}
