package muse

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/muse-vcs/muse/modules/commitstore"
)

func TestTempoPrefersMetadataOverMIDIScan(t *testing.T) {
	r := newTestRepo(t)
	writeWorkdirFile(t, r, "track.mid", string(midiWithTempo(t, 120)))
	c, err := r.Commit("a", "tester", commitstore.Metadata{"tempo_bpm": 128.0})
	require.NoError(t, err)

	result, err := r.Tempo(string(c.CommitID))
	require.NoError(t, err)
	require.True(t, result.Known)
	require.Equal(t, "metadata", result.Source)
	require.Equal(t, 128.0, result.BPM)
}

func TestTempoFallsBackToMIDIScan(t *testing.T) {
	r := newTestRepo(t)
	writeWorkdirFile(t, r, "track.mid", string(midiWithTempo(t, 90)))
	c, err := r.Commit("a", "tester", nil)
	require.NoError(t, err)

	result, err := r.Tempo(string(c.CommitID))
	require.NoError(t, err)
	require.True(t, result.Known)
	require.Equal(t, "midi", result.Source)
	require.Equal(t, "track.mid", result.Path)
	require.InDelta(t, 90.0, result.BPM, 0.01)
}

func TestTempoHistoryTracksSignedDelta(t *testing.T) {
	r := newTestRepo(t)
	writeWorkdirFile(t, r, "a.mid", "X")
	c1, err := r.Commit("a", "tester", commitstore.Metadata{"tempo_bpm": 100.0})
	require.NoError(t, err)

	writeWorkdirFile(t, r, "a.mid", "Y")
	c2, err := r.Commit("b", "tester", commitstore.Metadata{"tempo_bpm": 130.0})
	require.NoError(t, err)
	_ = c1

	history, err := r.TempoHistory(c2.CommitID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.NotNil(t, history[0].DeltaBPM)
	require.InDelta(t, 30.0, *history[0].DeltaBPM, 0.0001)
	require.Nil(t, history[1].DeltaBPM)
}

func TestTempoHistoryDeltaNilAcrossUnannotatedGap(t *testing.T) {
	r := newTestRepo(t)
	writeWorkdirFile(t, r, "a.mid", "X")
	_, err := r.Commit("oldest", "tester", commitstore.Metadata{"tempo_bpm": 100.0})
	require.NoError(t, err)

	writeWorkdirFile(t, r, "a.mid", "Y")
	_, err = r.Commit("middle, no tempo annotation", "tester", nil)
	require.NoError(t, err)

	writeWorkdirFile(t, r, "a.mid", "Z")
	newest, err := r.Commit("newest", "tester", commitstore.Metadata{"tempo_bpm": 130.0})
	require.NoError(t, err)

	history, err := r.TempoHistory(newest.CommitID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.NotNil(t, history[0].EffectiveBPM)
	require.Nil(t, history[0].DeltaBPM, "immediately older commit has no annotated tempo, so delta must not skip ahead to the oldest commit")
	require.Nil(t, history[1].EffectiveBPM)
	require.NotNil(t, history[2].EffectiveBPM)
}

// midiWithTempo builds a minimal byte sequence carrying a Set Tempo
// meta-event (FF 51 03) encoding bpm, detectable by tempoFromMIDI.
func midiWithTempo(t *testing.T, bpm float64) []byte {
	t.Helper()
	usPerBeat := int(60_000_000.0 / bpm)
	return []byte{
		'M', 'T', 'h', 'd',
		0xFF, 0x51, 0x03,
		byte(usPerBeat >> 16), byte(usPerBeat >> 8), byte(usPerBeat),
	}
}
