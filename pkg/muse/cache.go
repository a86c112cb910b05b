package muse

import (
	"github.com/dgraph-io/ristretto/v2"
	"github.com/muse-vcs/muse/modules/commitstore"
	"github.com/muse-vcs/muse/modules/tracelog"
)

// commitCache fronts disk reads of hot commits during history walks and
// merge-base computation. A miss always falls through to disk, so
// correctness never depends on the cache being warm or even present.
type commitCache struct {
	c *ristretto.Cache[string, *commitstore.Commit]
}

func newCommitCache() *commitCache {
	c, err := ristretto.NewCache(&ristretto.Config[string, *commitstore.Commit]{
		NumCounters: 10_000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		tracelog.Warnf("muse: commit cache disabled: %v", err)
		return &commitCache{}
	}
	return &commitCache{c: c}
}

func (cc *commitCache) get(id commitstore.CommitID) (*commitstore.Commit, bool) {
	if cc.c == nil {
		return nil, false
	}
	return cc.c.Get(string(id))
}

func (cc *commitCache) set(c *commitstore.Commit) {
	if cc.c == nil {
		return
	}
	cc.c.Set(string(c.ID), c, 1)
}

// getCommit is the cache-fronted commit lookup every internal consumer
// should use instead of calling the commit store directly.
func (r *Repository) getCommit(id commitstore.CommitID) (*commitstore.Commit, error) {
	if c, ok := r.cache.get(id); ok {
		return c, nil
	}
	c, err := r.commits.GetCommit(id)
	if err != nil {
		return nil, err
	}
	r.cache.set(c)
	return c, nil
}
