package muse

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDivergenceScoresPerDimension(t *testing.T) {
	r := newTestRepo(t)
	writeWorkdirFile(t, r, "drum_loop.mid", "base")
	writeWorkdirFile(t, r, "chorus.mid", "base")
	_, err := r.Commit("base", "tester", nil)
	require.NoError(t, err)

	_, err = r.Checkout("branch-a", true, false)
	require.NoError(t, err)
	writeWorkdirFile(t, r, "drum_loop.mid", "a-version")
	_, err = r.Commit("a changes rhythm", "tester", nil)
	require.NoError(t, err)

	_, err = r.Checkout("main", false, false)
	require.NoError(t, err)
	_, err = r.Checkout("branch-b", true, false)
	require.NoError(t, err)
	writeWorkdirFile(t, r, "chorus.mid", "b-version")
	_, err = r.Commit("b changes structure", "tester", nil)
	require.NoError(t, err)

	result, err := r.Divergence("branch-a", "branch-b", "")
	require.NoError(t, err)
	require.Len(t, result.Dimensions, 5)

	byName := map[string]DivergenceDimensionResult{}
	for _, d := range result.Dimensions {
		byName[d.Dimension] = d
	}
	require.Equal(t, DivergenceHigh, byName["rhythmic"].Level)
	require.Equal(t, DivergenceHigh, byName["structural"].Level)
	require.Equal(t, DivergenceNone, byName["melodic"].Level)
}
