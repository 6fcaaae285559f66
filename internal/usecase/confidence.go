package usecase

import (
	"sort"

	"docqa-orchestrator/internal/domain"
)

const (
	// weakBestMatch marks the distance beyond which even the best passage is
	// too far to trust.
	weakBestMatch = 0.45
	// strongBestMatch is the distance below which the best passage counts as
	// a strong hit.
	strongBestMatch = 0.30
	// clearGap is the separation between the best and second-best distances
	// that signals one passage standing out.
	clearGap = 0.08
)

// EstimateConfidence maps the post-consolidation distance set to a discrete
// label. Stateless and deterministic. Defined for non-empty input; callers
// with an empty context use domain.ConfidenceLow directly, and empty input
// here degrades to the same.
func EstimateConfidence(distances []float64) domain.Confidence {
	if len(distances) == 0 {
		return domain.ConfidenceLow
	}

	sorted := make([]float64, len(distances))
	copy(sorted, distances)
	sort.Float64s(sorted)

	d1 := sorted[0]
	if d1 > weakBestMatch {
		return domain.ConfidenceLow
	}
	if len(sorted) >= 2 {
		d2 := sorted[1]
		if d2-d1 > clearGap && d1 < strongBestMatch {
			return domain.ConfidenceHigh
		}
	}
	return domain.ConfidenceMedium
}
