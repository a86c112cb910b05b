package muse

import (
	"math"
	"strings"

	"github.com/muse-vcs/muse/modules/commitstore"
)

// tempoMetaEvent is the three-byte status prefix of a MIDI Set Tempo
// meta-event (FF 51 03), followed by a big-endian 3-byte
// microseconds-per-quarter-note value.
var tempoMetaEvent = []byte{0xFF, 0x51, 0x03}

// tempoFromMIDI scans raw for the first Set Tempo meta-event and returns
// the BPM it encodes.
func tempoFromMIDI(raw []byte) (float64, bool) {
	for i := 0; i+6 <= len(raw); i++ {
		if raw[i] == tempoMetaEvent[0] && raw[i+1] == tempoMetaEvent[1] && raw[i+2] == tempoMetaEvent[2] {
			usPerBeat := int(raw[i+3])<<16 | int(raw[i+4])<<8 | int(raw[i+5])
			if usPerBeat == 0 {
				continue
			}
			bpm := 60_000_000.0 / float64(usPerBeat)
			return math.Round(bpm*100) / 100, true
		}
	}
	return 0, false
}

func isMIDIPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".mid") || strings.HasSuffix(lower, ".midi")
}

// TempoResult is the outcome of a single-commit Tempo lookup.
type TempoResult struct {
	BPM    float64
	Known  bool
	Source string // "metadata" or "midi"
	Path   string // the MIDI file the tempo was found in, when Source == "midi"
}

// Tempo resolves the effective tempo for the commit named by ref: an
// explicit tempo_bpm metadata annotation takes precedence; otherwise the
// commit's snapshot is scanned, in sorted path order, for the first MIDI
// file carrying a Set Tempo meta-event.
func (r *Repository) Tempo(ref string) (TempoResult, error) {
	id, err := r.Revision(ref)
	if err != nil {
		return TempoResult{}, err
	}
	c, err := r.getCommit(id)
	if err != nil {
		return TempoResult{}, err
	}
	if bpm, ok := c.Metadata.TempoBPM(); ok {
		return TempoResult{BPM: bpm, Known: true, Source: "metadata"}, nil
	}

	manifest, err := r.snapshots.Get(c.SnapshotID)
	if err != nil {
		return TempoResult{}, err
	}
	for _, path := range manifest.Paths() {
		if !isMIDIPath(path) {
			continue
		}
		raw, err := r.objects.Get(manifest[path])
		if err != nil {
			return TempoResult{}, err
		}
		if bpm, ok := tempoFromMIDI(raw); ok {
			return TempoResult{BPM: bpm, Known: true, Source: "midi", Path: path}, nil
		}
	}
	return TempoResult{}, nil
}

// TempoHistoryEntry is one row of a TempoHistory report.
type TempoHistoryEntry struct {
	Commit       commitstore.CommitID
	Message      string
	EffectiveBPM *float64 // read only from explicit metadata annotations
	DeltaBPM     *float64 // signed change vs. the immediately older commit's effective BPM
}

// TempoHistory walks start's first-parent history, newest first, reporting
// each commit's explicitly-annotated tempo (auto-detected MIDI tempo is
// never persisted, so it never appears here) and its signed delta against
// the immediately adjacent older commit. DeltaBPM is nil whenever that
// specific neighbor has no annotated tempo, even if an earlier ancestor
// does; it never searches further back.
func (r *Repository) TempoHistory(start commitstore.CommitID) ([]TempoHistoryEntry, error) {
	commits, err := r.commits.WalkParents(start, 0)
	if err != nil {
		return nil, err
	}

	entries := make([]TempoHistoryEntry, len(commits))
	for i, c := range commits {
		entry := TempoHistoryEntry{Commit: c.ID, Message: c.Message}
		if bpm, ok := c.Metadata.TempoBPM(); ok {
			v := bpm
			entry.EffectiveBPM = &v
		}
		entries[i] = entry
	}
	for i := 0; i+1 < len(entries); i++ {
		if entries[i].EffectiveBPM == nil || entries[i+1].EffectiveBPM == nil {
			continue
		}
		delta := *entries[i].EffectiveBPM - *entries[i+1].EffectiveBPM
		entries[i].DeltaBPM = &delta
	}
	return entries, nil
}
