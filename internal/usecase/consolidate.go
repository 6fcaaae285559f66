package usecase

import (
	"sort"

	"docqa-orchestrator/internal/domain"
)

const (
	// DefaultFinalK caps how many passages reach the generator.
	DefaultFinalK = 5
	// DefaultRelevanceThreshold is the distance at or above which a passage
	// is dropped when the gate is enabled.
	DefaultRelevanceThreshold = 0.5
)

// ConsolidateOptions controls the relevance gate and the final cap.
type ConsolidateOptions struct {
	RelevanceThreshold float64
	ThresholdEnabled   bool
	FinalK             int
}

// DefaultConsolidateOptions returns the threshold-then-cap configuration.
func DefaultConsolidateOptions() ConsolidateOptions {
	return ConsolidateOptions{
		RelevanceThreshold: DefaultRelevanceThreshold,
		ThresholdEnabled:   true,
		FinalK:             DefaultFinalK,
	}
}

// Consolidate deduplicates, ranks, gates, and caps a flat retrieval result.
//
// Dedup keeps the first occurrence of each (source, chunk_index) key, so the
// kept distance is whichever sub-query retrieved the passage first, not the
// best distance. Ranking is a stable ascending sort on distance, preserving
// encounter order on ties. The hard cap always applies last, regardless of
// threshold mode. The result may legitimately be empty.
func Consolidate(flat []domain.RankedPassage, opts ConsolidateOptions) []domain.RankedPassage {
	finalK := opts.FinalK
	if finalK <= 0 {
		finalK = DefaultFinalK
	}

	seen := make(map[domain.PassageKey]struct{}, len(flat))
	deduped := make([]domain.RankedPassage, 0, len(flat))
	for _, rp := range flat {
		key := rp.Passage.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, rp)
	}

	sort.SliceStable(deduped, func(i, j int) bool {
		return deduped[i].Distance < deduped[j].Distance
	})

	if opts.ThresholdEnabled {
		gated := deduped[:0]
		for _, rp := range deduped {
			if rp.Distance >= opts.RelevanceThreshold {
				continue
			}
			gated = append(gated, rp)
		}
		deduped = gated
	}

	if len(deduped) > finalK {
		deduped = deduped[:finalK]
	}
	return deduped
}
