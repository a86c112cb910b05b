package muse

import (
	"fmt"
	"math"

	"github.com/muse-vcs/muse/modules/commitstore"
	"github.com/muse-vcs/muse/modules/tagindex"
	"github.com/muse-vcs/muse/modules/tracelog"
)

// EmotionVector is a point in 4-dimensional emotional space, each
// dimension clamped to [0.0, 1.0].
type EmotionVector struct {
	Energy   float64
	Valence  float64
	Tension  float64
	Darkness float64
}

// emotionCatalogue is the canonical label -> vector table. Labels not
// present here are treated as unknown (falls back to tempo inference).
var emotionCatalogue = map[string]EmotionVector{
	"joyful":      {0.80, 0.90, 0.20, 0.10},
	"melancholic": {0.30, 0.30, 0.40, 0.60},
	"anxious":     {0.60, 0.20, 0.80, 0.50},
	"cinematic":   {0.55, 0.50, 0.50, 0.40},
	"peaceful":    {0.20, 0.70, 0.10, 0.20},
	"dramatic":    {0.80, 0.30, 0.70, 0.60},
	"hopeful":     {0.60, 0.70, 0.30, 0.20},
	"tense":       {0.70, 0.20, 0.90, 0.50},
	"dark":        {0.40, 0.20, 0.50, 0.80},
	"euphoric":    {0.90, 0.90, 0.30, 0.10},
	"serene":      {0.25, 0.65, 0.15, 0.25},
	"epic":        {0.85, 0.55, 0.65, 0.45},
	"mysterious":  {0.35, 0.40, 0.60, 0.55},
	"aggressive":  {0.90, 0.25, 0.85, 0.70},
	"nostalgic":   {0.35, 0.50, 0.35, 0.50},
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// inferEmotionFromTempo derives a neutral-midpoint vector when no
// tempo_bpm is known, or the formula-based vector otherwise.
func inferEmotionFromTempo(bpm float64, known bool) EmotionVector {
	if !known {
		return EmotionVector{0.5, 0.5, 0.5, 0.5}
	}
	energy := clamp01((bpm - 60) / 120)
	valence := clamp01(0.3 + energy*0.4)
	tension := clamp01(0.2 + energy*0.5)
	darkness := clamp01(0.7 - energy*0.6)
	return EmotionVector{
		Energy:   round4(energy),
		Valence:  round4(valence),
		Tension:  round4(tension),
		Darkness: round4(darkness),
	}
}

// emotionFor resolves a commit's effective emotion vector and label,
// preferring an explicit emotion: tag, falling back to tempo-based
// inference. label is "" when no explicit tag was found.
func (r *Repository) emotionFor(tags []string, metadata commitstore.Metadata) (EmotionVector, string) {
	if label := tagindex.FirstWithPrefix(tags, "emotion:"); label != "" {
		if v, ok := emotionCatalogue[label]; ok {
			return v, label
		}
	}
	bpm, ok := metadata.TempoBPM()
	return inferEmotionFromTempo(bpm, ok), ""
}

func (v EmotionVector) sub(o EmotionVector) [4]float64 {
	return [4]float64{v.Energy - o.Energy, v.Valence - o.Valence, v.Tension - o.Tension, v.Darkness - o.Darkness}
}

func drift(a, b EmotionVector) float64 {
	d := a.sub(b)
	sum := d[0]*d[0] + d[1]*d[1] + d[2]*d[2] + d[3]*d[3]
	return round4(math.Sqrt(sum))
}

// EmotionDiffResult is the output of EmotionDiff.
type EmotionDiffResult struct {
	CommitA, CommitB string
	VectorA, VectorB EmotionVector
	LabelA, LabelB   string // "" when the vector was inferred, not tagged
	Source           string // "explicit_tags", "mixed", or "inferred"
	Drift            float64
	Narrative        string
	Track, Section   string // accepted filter parameters, recorded but not yet computation-scoping; see component docs
}

func magnitudeBucket(d float64) (string, string) {
	switch {
	case d < 0.05:
		return "minimal", "Emotional character unchanged."
	case d < 0.25:
		return "subtle", "Slight emotional shift."
	case d < 0.50:
		return "moderate", "Noticeable emotional change."
	case d < 0.80:
		return "significant", "Strong emotional shift — compositional direction changed."
	default:
		return "major", "Dramatic emotional departure — a fundamentally different mood."
	}
}

func dominantDimension(a, b EmotionVector) string {
	d := a.sub(b)
	names := [4]string{"energy", "valence", "tension", "darkness"}
	best := 0
	for i := 1; i < 4; i++ {
		if math.Abs(d[i]) > math.Abs(d[best]) {
			best = i
		}
	}
	if math.Abs(d[best]) < 0.02 {
		return "no dominant shift"
	}
	return names[best]
}

func labelOrInferred(label string) string {
	if label == "" {
		return "(inferred)"
	}
	return label
}

// EmotionDiff computes the emotional drift between the commits resolved
// from refA and refB, optionally scoped (for forward compatibility only;
// see component docs) by track/section.
func (r *Repository) EmotionDiff(refA, refB, track, section string) (EmotionDiffResult, error) {
	idA, err := r.Revision(refA)
	if err != nil {
		return EmotionDiffResult{}, err
	}
	idB, err := r.Revision(refB)
	if err != nil {
		return EmotionDiffResult{}, err
	}
	cA, err := r.getCommit(idA)
	if err != nil {
		return EmotionDiffResult{}, err
	}
	cB, err := r.getCommit(idB)
	if err != nil {
		return EmotionDiffResult{}, err
	}
	tagsA, err := r.tags.TagsFor(idA)
	if err != nil {
		return EmotionDiffResult{}, err
	}
	tagsB, err := r.tags.TagsFor(idB)
	if err != nil {
		return EmotionDiffResult{}, err
	}

	vecA, labelA := r.emotionFor(tagsA, cA.Metadata)
	vecB, labelB := r.emotionFor(tagsB, cB.Metadata)

	var source string
	switch {
	case labelA != "" && labelB != "":
		source = "explicit_tags"
	case labelA != "" || labelB != "":
		source = "mixed"
	default:
		source = "inferred"
	}

	d := drift(vecA, vecB)
	_, narrativeBase := magnitudeBucket(d)
	dom := dominantDimension(vecA, vecB)
	narrative := fmt.Sprintf("%s Transition %s → %s, dominant dimension: %s.", narrativeBase, labelOrInferred(labelA), labelOrInferred(labelB), dom)
	if source != "explicit_tags" {
		narrative += " [inferred from metadata]"
	}

	tracelog.Debugf("muse: emotion-diff %s..%s drift=%.4f source=%s", idA, idB, d, source)
	return EmotionDiffResult{
		CommitA: string(idA), CommitB: string(idB),
		VectorA: vecA, VectorB: vecB,
		LabelA: labelA, LabelB: labelB,
		Source: source, Drift: d, Narrative: narrative,
		Track: track, Section: section,
	}, nil
}
