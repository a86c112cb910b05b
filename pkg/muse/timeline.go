package muse

import (
	"github.com/muse-vcs/muse/modules/commitstore"
	"github.com/muse-vcs/muse/modules/tagindex"
)

// TimelineEntry enriches one commit with its tag-derived musical metadata.
type TimelineEntry struct {
	Commit  *commitstore.Commit
	Emotion string
	Section string
	Track   string
}

// TimelineResult is the oldest-first history walk plus the derived arcs.
type TimelineResult struct {
	Entries      []TimelineEntry
	EmotionArc   []string // unique emotion labels in first-appearance order
	SectionOrder []string // unique section labels in first-appearance order
}

// Timeline walks start's first-parent history, oldest first, enriching
// each commit with its emotion/section/track tags fetched via a single
// batched lookup across the whole walked set.
func (r *Repository) Timeline(start commitstore.CommitID) (TimelineResult, error) {
	var newestFirst []*commitstore.Commit
	cur := start
	for cur != "" {
		c, err := r.getCommit(cur)
		if err != nil {
			return TimelineResult{}, err
		}
		newestFirst = append(newestFirst, c)
		next, ok := c.FirstParent()
		if !ok {
			break
		}
		cur = next
	}

	ids := make([]commitstore.CommitID, len(newestFirst))
	for i, c := range newestFirst {
		ids[i] = c.ID
	}
	tagsByCommit, err := r.tags.BulkTagsFor(ids)
	if err != nil {
		return TimelineResult{}, err
	}

	var result TimelineResult
	seenEmotion := make(map[string]struct{})
	seenSection := make(map[string]struct{})
	for i := len(newestFirst) - 1; i >= 0; i-- {
		c := newestFirst[i]
		tags := tagsByCommit[c.ID]
		emotion := tagindex.FirstWithPrefix(tags, "emotion:")
		section := tagindex.FirstWithPrefix(tags, "section:")
		track := tagindex.FirstWithPrefix(tags, "track:")
		result.Entries = append(result.Entries, TimelineEntry{Commit: c, Emotion: emotion, Section: section, Track: track})
		if emotion != "" {
			if _, ok := seenEmotion[emotion]; !ok {
				seenEmotion[emotion] = struct{}{}
				result.EmotionArc = append(result.EmotionArc, emotion)
			}
		}
		if section != "" {
			if _, ok := seenSection[section]; !ok {
				seenSection[section] = struct{}{}
				result.SectionOrder = append(result.SectionOrder, section)
			}
		}
	}
	return result, nil
}
