package muse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCreateAndDeleteTag(t *testing.T) {
	r := newTestRepo(t)
	writeWorkdirFile(t, r, "a.mid", "X")
	c, err := r.Commit("base", "tester", nil)
	require.NoError(t, err)

	require.NoError(t, r.CreateTag("v1.0", "HEAD"))
	tags, err := r.ListTags()
	require.NoError(t, err)
	require.Len(t, tags, 1)
	require.Equal(t, c.CommitID, tags[0].Commit)

	err = r.CreateTag("v1.0", "HEAD")
	require.Error(t, err)
	require.True(t, IsUserError(err))

	require.NoError(t, r.DeleteTag("v1.0"))
	tags, err = r.ListTags()
	require.NoError(t, err)
	require.Empty(t, tags)
}

func TestAnnotateIsIdempotentAndManyToMany(t *testing.T) {
	r := newTestRepo(t)
	writeWorkdirFile(t, r, "a.mid", "X")
	c1, err := r.Commit("one", "tester", nil)
	require.NoError(t, err)
	writeWorkdirFile(t, r, "a.mid", "Y")
	c2, err := r.Commit("two", "tester", nil)
	require.NoError(t, err)

	require.NoError(t, r.Annotate(string(c1.CommitID), "emotion:joyful"))
	require.NoError(t, r.Annotate(string(c1.CommitID), "emotion:joyful"))
	require.NoError(t, r.Annotate(string(c2.CommitID), "emotion:joyful"))

	anns, err := r.AnnotationsOn(string(c1.CommitID))
	require.NoError(t, err)
	require.Equal(t, []string{"emotion:joyful"}, anns)

	commits, err := r.CommitsWithAnnotation("emotion:joyful")
	require.NoError(t, err)
	require.Len(t, commits, 2)

	require.NoError(t, r.RemoveAnnotation(string(c1.CommitID), "emotion:joyful"))
	anns, err = r.AnnotationsOn(string(c1.CommitID))
	require.NoError(t, err)
	require.Empty(t, anns)
}
