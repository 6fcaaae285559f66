package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"docqa-orchestrator/internal/domain"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PartialPolicy decides what happens when one sub-query retrieval fails.
type PartialPolicy string

const (
	// PartialPolicyFailFast aborts the whole request on the first failure.
	PartialPolicyFailFast PartialPolicy = "fail_fast"
	// PartialPolicySkip drops the failed sub-query and continues with the
	// rest. Opt-in degraded mode; the skip is logged, never silent.
	PartialPolicySkip PartialPolicy = "skip"
)

// distanceSentinel stands in for min/max/avg when a sub-query retrieved
// nothing.
const distanceSentinel = 999

// SubQueryStats is the per-sub-query retrieval breakdown, computed before
// consolidation.
type SubQueryStats struct {
	SubQuery     string
	PassageCount int
	MinDistance  float64
	MaxDistance  float64
	AvgDistance  float64
}

// RetrievePassagesInput defines one fan-out retrieval round.
type RetrievePassagesInput struct {
	SubQueries  []string
	TopN        int
	IngestionID *uuid.UUID
}

// RetrievePassagesOutput is the flat concatenation of all sub-query results,
// in sub-query order, plus the per-sub-query breakdown.
type RetrievePassagesOutput struct {
	Passages []domain.RankedPassage
	Stats    []SubQueryStats
}

// RetrievePassagesUsecase embeds each sub-query and searches the passage
// store, concurrently up to a configured fan-out limit.
type RetrievePassagesUsecase interface {
	Execute(ctx context.Context, input RetrievePassagesInput) (*RetrievePassagesOutput, error)
}

type retrievePassagesUsecase struct {
	encoder     domain.VectorEncoder
	passageRepo domain.PassageRepository
	fanOutLimit int
	policy      PartialPolicy
	logger      *slog.Logger
}

// NewRetrievePassagesUsecase creates a retrieval coordinator. fanOutLimit
// bounds concurrent embed+search calls; values below 1 mean no bound.
func NewRetrievePassagesUsecase(
	encoder domain.VectorEncoder,
	passageRepo domain.PassageRepository,
	fanOutLimit int,
	policy PartialPolicy,
	logger *slog.Logger,
) RetrievePassagesUsecase {
	if policy == "" {
		policy = PartialPolicyFailFast
	}
	return &retrievePassagesUsecase{
		encoder:     encoder,
		passageRepo: passageRepo,
		fanOutLimit: fanOutLimit,
		policy:      policy,
		logger:      logger,
	}
}

func (u *retrievePassagesUsecase) Execute(ctx context.Context, input RetrievePassagesInput) (*RetrievePassagesOutput, error) {
	if len(input.SubQueries) == 0 {
		return nil, fmt.Errorf("no sub-queries to retrieve")
	}
	if input.TopN <= 0 {
		return nil, fmt.Errorf("topN must be positive, got %d", input.TopN)
	}

	// Indexed by sub-query position so the flat output preserves sub-query
	// order regardless of goroutine completion order.
	perSubQuery := make([][]domain.RankedPassage, len(input.SubQueries))

	g, gctx := errgroup.WithContext(ctx)
	if u.fanOutLimit > 0 {
		g.SetLimit(u.fanOutLimit)
	}

	for i, subQuery := range input.SubQueries {
		g.Go(func() error {
			results, err := u.retrieveOne(gctx, subQuery, input.TopN, input.IngestionID)
			if err != nil {
				if u.policy == PartialPolicySkip {
					u.logger.Warn("sub_query_retrieval_skipped",
						slog.String("sub_query", subQuery),
						slog.String("error", err.Error()))
					return nil
				}
				return err
			}
			perSubQuery[i] = results
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var flat []domain.RankedPassage
	stats := make([]SubQueryStats, 0, len(input.SubQueries))
	for i, results := range perSubQuery {
		flat = append(flat, results...)
		stats = append(stats, computeStats(input.SubQueries[i], results))
	}

	u.logger.Info("retrieval_completed",
		slog.Int("sub_query_count", len(input.SubQueries)),
		slog.Int("passage_count", len(flat)))

	return &RetrievePassagesOutput{Passages: flat, Stats: stats}, nil
}

func (u *retrievePassagesUsecase) retrieveOne(ctx context.Context, subQuery string, topN int, ingestionID *uuid.UUID) ([]domain.RankedPassage, error) {
	embeddings, err := u.encoder.Encode(ctx, []string{subQuery})
	if err != nil {
		return nil, &domain.EmbeddingError{Err: err}
	}
	if len(embeddings) != 1 {
		return nil, &domain.EmbeddingError{Err: fmt.Errorf("expected 1 embedding, got %d", len(embeddings))}
	}

	results, err := u.passageRepo.Search(ctx, embeddings[0], topN, ingestionID)
	if err != nil {
		return nil, &domain.PassageStoreError{Err: err}
	}
	return results, nil
}

func computeStats(subQuery string, results []domain.RankedPassage) SubQueryStats {
	stats := SubQueryStats{
		SubQuery:     subQuery,
		PassageCount: len(results),
		MinDistance:  distanceSentinel,
		MaxDistance:  distanceSentinel,
		AvgDistance:  distanceSentinel,
	}
	if len(results) == 0 {
		return stats
	}

	min, max, sum := results[0].Distance, results[0].Distance, 0.0
	for _, rp := range results {
		if rp.Distance < min {
			min = rp.Distance
		}
		if rp.Distance > max {
			max = rp.Distance
		}
		sum += rp.Distance
	}
	stats.MinDistance = min
	stats.MaxDistance = max
	stats.AvgDistance = sum / float64(len(results))
	return stats
}
