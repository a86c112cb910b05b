package muse

import (
	"fmt"
	"strings"

	"github.com/muse-vcs/muse/modules/commitstore"
)

// DivergenceLevel quantizes a per-dimension divergence score.
type DivergenceLevel string

const (
	DivergenceNone DivergenceLevel = "NONE"
	DivergenceLow  DivergenceLevel = "LOW"
	DivergenceMed  DivergenceLevel = "MED"
	DivergenceHigh DivergenceLevel = "HIGH"
)

func quantizeDivergence(score float64) DivergenceLevel {
	switch {
	case score >= 0.70:
		return DivergenceHigh
	case score >= 0.40:
		return DivergenceMed
	case score >= 0.15:
		return DivergenceLow
	default:
		return DivergenceNone
	}
}

type divergenceDimension struct {
	name     string
	keywords []string
}

var divergenceDimensions = []divergenceDimension{
	{"melodic", []string{"melody", "lead", "solo"}},
	{"harmonic", []string{"chord", "harmony", "key"}},
	{"rhythmic", []string{"drum", "beat", "groove", "rhythm"}},
	{"structural", []string{"chorus", "verse", "intro", "bridge", "section"}},
	{"dynamic", []string{"mix", "master", "vol", "level", "dynamic"}},
}

func matchesKeywords(path string, keywords []string) bool {
	lower := strings.ToLower(path)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// DivergenceDimensionResult is one row of a Divergence report.
type DivergenceDimensionResult struct {
	Dimension   string
	Score       float64
	Level       DivergenceLevel
	SummaryA    string
	SummaryB    string
}

// DivergenceResult is the full report across all dimensions.
type DivergenceResult struct {
	BranchA, BranchB string
	Base             string
	Dimensions       []DivergenceDimensionResult
}

// Divergence compares branchA and branchB's tip manifests against their
// merge-base (or an explicit base override when baseOverride != ""),
// scoring each of five keyword-matched dimensions by the symmetric
// difference between what changed on each side.
func (r *Repository) Divergence(branchA, branchB, baseOverride string) (DivergenceResult, error) {
	idA, err := r.Revision(branchA)
	if err != nil {
		return DivergenceResult{}, err
	}
	idB, err := r.Revision(branchB)
	if err != nil {
		return DivergenceResult{}, err
	}

	var baseID commitstore.CommitID
	if baseOverride != "" {
		resolved, err := r.Revision(baseOverride)
		if err != nil {
			return DivergenceResult{}, err
		}
		baseID = resolved
	} else {
		base, err := r.MergeBase(idA, idB)
		if err != nil {
			return DivergenceResult{}, err
		}
		baseID = base
	}

	baseManifest, err := r.manifestOf(baseID)
	if err != nil {
		return DivergenceResult{}, err
	}
	manifestA, err := r.manifestOf(idA)
	if err != nil {
		return DivergenceResult{}, err
	}
	manifestB, err := r.manifestOf(idB)
	if err != nil {
		return DivergenceResult{}, err
	}

	changedA := changedPaths(baseManifest, manifestA)
	changedB := changedPaths(baseManifest, manifestB)

	result := DivergenceResult{BranchA: branchA, BranchB: branchB, Base: string(baseID)}
	for _, dim := range divergenceDimensions {
		matchA := filterPaths(changedA, dim.keywords)
		matchB := filterPaths(changedB, dim.keywords)
		union := unionSet(matchA, matchB)
		symDiff := symmetricDiff(matchA, matchB)

		var score float64
		if len(union) > 0 {
			score = float64(len(symDiff)) / float64(len(union))
		}
		result.Dimensions = append(result.Dimensions, DivergenceDimensionResult{
			Dimension: dim.name,
			Score:     round4(score),
			Level:     quantizeDivergence(score),
			SummaryA:  fmt.Sprintf("%d %s file(s) changed", len(matchA), dim.name),
			SummaryB:  fmt.Sprintf("%d %s file(s) changed", len(matchB), dim.name),
		})
	}
	return result, nil
}

func filterPaths(paths map[string]struct{}, keywords []string) map[string]struct{} {
	out := make(map[string]struct{})
	for p := range paths {
		if matchesKeywords(p, keywords) {
			out[p] = struct{}{}
		}
	}
	return out
}

func unionSet(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for p := range a {
		out[p] = struct{}{}
	}
	for p := range b {
		out[p] = struct{}{}
	}
	return out
}

func symmetricDiff(a, b map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	for p := range a {
		if _, ok := b[p]; !ok {
			out[p] = struct{}{}
		}
	}
	for p := range b {
		if _, ok := a[p]; !ok {
			out[p] = struct{}{}
		}
	}
	return out
}
