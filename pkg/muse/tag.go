package muse

import (
	"strings"

	"github.com/muse-vcs/muse/modules/commitstore"
	"github.com/muse-vcs/muse/modules/refstore"
	"github.com/muse-vcs/muse/modules/tracelog"
)

// Tag describes one refs/tags/ entry: a stable label on a single historical
// commit, distinct from the many-to-many emotion/section/track annotations
// in the tag index.
type Tag struct {
	Name   string
	Commit commitstore.CommitID
}

// CreateTag creates refs/tags/<name> pointing at the commit resolved from
// ref.
func (r *Repository) CreateTag(name, ref string) error {
	return r.withLock(func() error {
		tagRef := refstore.TagsPrefix + name
		existing, err := r.refs.ReadRef(tagRef)
		if err != nil {
			return err
		}
		if existing != "" {
			return NewUserError("tag %q already exists", name)
		}
		id, err := r.Revision(ref)
		if err != nil {
			return err
		}
		if err := r.refs.WriteRef(tagRef, id); err != nil {
			return err
		}
		tracelog.Infof("muse: created tag %q at %s", name, id)
		return nil
	})
}

// DeleteTag removes refs/tags/<name>.
func (r *Repository) DeleteTag(name string) error {
	return r.withLock(func() error {
		tagRef := refstore.TagsPrefix + name
		existing, err := r.refs.ReadRef(tagRef)
		if err != nil {
			return err
		}
		if existing == "" {
			return NewUserError("tag %q does not exist", name)
		}
		return r.refs.DeleteRef(tagRef)
	})
}

// ListTags returns every refs/tags/ entry, sorted by name.
func (r *Repository) ListTags() ([]Tag, error) {
	names, err := r.refs.ListRefs(refstore.TagsPrefix)
	if err != nil {
		return nil, err
	}
	tags := make([]Tag, 0, len(names))
	for _, name := range names {
		id, err := r.refs.ReadRef(name)
		if err != nil {
			return nil, err
		}
		tags = append(tags, Tag{Name: strings.TrimPrefix(name, refstore.TagsPrefix), Commit: id})
	}
	return tags, nil
}

// Annotate attaches a namespaced annotation (e.g. "emotion:joyful") to a
// commit via the many-to-many tag index. Idempotent.
func (r *Repository) Annotate(ref, annotation string) error {
	return r.withLock(func() error {
		id, err := r.Revision(ref)
		if err != nil {
			return err
		}
		return r.tags.Add(id, annotation)
	})
}

// RemoveAnnotation detaches annotation from the commit resolved from ref.
func (r *Repository) RemoveAnnotation(ref, annotation string) error {
	return r.withLock(func() error {
		id, err := r.Revision(ref)
		if err != nil {
			return err
		}
		return r.tags.Remove(id, annotation)
	})
}

// AnnotationsOn returns every annotation attached to the commit resolved
// from ref.
func (r *Repository) AnnotationsOn(ref string) ([]string, error) {
	id, err := r.Revision(ref)
	if err != nil {
		return nil, err
	}
	return r.tags.TagsFor(id)
}

// CommitsWithAnnotation returns every commit carrying annotation.
func (r *Repository) CommitsWithAnnotation(annotation string) ([]commitstore.CommitID, error) {
	return r.tags.CommitsFor(annotation)
}
