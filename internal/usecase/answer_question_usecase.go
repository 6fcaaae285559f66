package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"docqa-orchestrator/internal/domain"

	"github.com/google/uuid"
)

// AnswerQuestionInput encapsulates the parameters that drive one answer
// request.
type AnswerQuestionInput struct {
	Query      string
	OnlyLatest bool
	Debug      bool
}

// AnswerQuestionOutput is the assembled response: answer text, one citation
// per consolidated passage in the same order, the confidence label, and the
// optional debug trace.
type AnswerQuestionOutput struct {
	Answer     string
	Citations  []domain.Citation
	Confidence domain.Confidence
	Debug      *AnswerDebug
}

// AnswerDebug surfaces retrieval and generation metadata for troubleshooting.
// Attaching it never alters the answer, citations, or confidence.
type AnswerDebug struct {
	RetrievalSetID string
	SubQueries     []string
	Retrieval      []SubQueryStats
	Model          string
	InputTokens    int
	OutputTokens   int
}

// AnswerQuestionUsecase defines the contract for generating grounded answers.
type AnswerQuestionUsecase interface {
	Execute(ctx context.Context, input AnswerQuestionInput) (*AnswerQuestionOutput, error)
}

type answerQuestionUsecase struct {
	retrieve      RetrievePassagesUsecase
	promptBuilder PromptBuilder
	generator     domain.Generator
	ingestionRepo domain.IngestionRepository
	consolidate   ConsolidateOptions
	topN          int
	logger        *slog.Logger
}

// NewAnswerQuestionUsecase wires together the components of the answer
// pipeline. topN is the per-sub-query retrieval depth.
func NewAnswerQuestionUsecase(
	retrieve RetrievePassagesUsecase,
	promptBuilder PromptBuilder,
	generator domain.Generator,
	ingestionRepo domain.IngestionRepository,
	consolidate ConsolidateOptions,
	topN int,
	logger *slog.Logger,
) AnswerQuestionUsecase {
	return &answerQuestionUsecase{
		retrieve:      retrieve,
		promptBuilder: promptBuilder,
		generator:     generator,
		ingestionRepo: ingestionRepo,
		consolidate:   consolidate,
		topN:          topN,
		logger:        logger,
	}
}

func (u *answerQuestionUsecase) Execute(ctx context.Context, input AnswerQuestionInput) (*AnswerQuestionOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, fmt.Errorf("query is required")
	}

	retrievalSetID := uuid.NewString()
	subQueries := DecomposeQuery(input.Query)

	u.logger.Info("query_decomposed",
		slog.String("retrieval_set_id", retrievalSetID),
		slog.Int("sub_query_count", len(subQueries)))

	var scope *uuid.UUID
	if input.OnlyLatest {
		latest, err := u.ingestionRepo.LatestID(ctx)
		if err != nil {
			return nil, &domain.PassageStoreError{Err: fmt.Errorf("resolve latest ingestion: %w", err)}
		}
		if latest == nil {
			// Nothing has ever been ingested; the context is necessarily empty.
			u.logger.Warn("no_ingestion_found", slog.String("retrieval_set_id", retrievalSetID))
			return u.emptyContextAnswer(input, subQueries, retrievalSetID, nil), nil
		}
		scope = latest
	}

	retrieved, err := u.retrieve.Execute(ctx, RetrievePassagesInput{
		SubQueries:  subQueries,
		TopN:        u.topN,
		IngestionID: scope,
	})
	if err != nil {
		return nil, err
	}

	consolidated := Consolidate(retrieved.Passages, u.consolidate)
	if len(consolidated) == 0 {
		u.logger.Info("empty_context",
			slog.String("retrieval_set_id", retrievalSetID),
			slog.Int("raw_passage_count", len(retrieved.Passages)))
		return u.emptyContextAnswer(input, subQueries, retrievalSetID, retrieved.Stats), nil
	}

	prompt, err := u.promptBuilder.Build(consolidated, subQueries)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	completion, err := u.generator.Complete(ctx, prompt.System, prompt.User)
	if err != nil {
		return nil, &domain.GenerationError{Err: err}
	}
	answer := strings.TrimSpace(completion.Text)
	if answer == "" {
		return nil, &domain.GenerationError{Err: fmt.Errorf("empty completion from model %s", completion.Model)}
	}

	citations := make([]domain.Citation, len(consolidated))
	distances := make([]float64, len(consolidated))
	for i, rp := range consolidated {
		citations[i] = domain.Citation{
			Source:     rp.Passage.Source,
			ChunkIndex: rp.Passage.ChunkIndex,
		}
		distances[i] = rp.Distance
	}

	output := &AnswerQuestionOutput{
		Answer:     answer,
		Citations:  citations,
		Confidence: EstimateConfidence(distances),
	}
	if input.Debug {
		output.Debug = &AnswerDebug{
			RetrievalSetID: retrievalSetID,
			SubQueries:     subQueries,
			Retrieval:      retrieved.Stats,
			Model:          completion.Model,
			InputTokens:    completion.InputTokens,
			OutputTokens:   completion.OutputTokens,
		}
	}

	u.logger.Info("answer_generated",
		slog.String("retrieval_set_id", retrievalSetID),
		slog.Int("citation_count", len(citations)),
		slog.String("confidence", string(output.Confidence)))

	return output, nil
}

// emptyContextAnswer is the fixed unknown-answer path: definite response,
// empty citations, low confidence, no generator call.
func (u *answerQuestionUsecase) emptyContextAnswer(input AnswerQuestionInput, subQueries []string, retrievalSetID string, stats []SubQueryStats) *AnswerQuestionOutput {
	output := &AnswerQuestionOutput{
		Answer:     UnknownAnswer,
		Citations:  []domain.Citation{},
		Confidence: domain.ConfidenceLow,
	}
	if input.Debug {
		output.Debug = &AnswerDebug{
			RetrievalSetID: retrievalSetID,
			SubQueries:     subQueries,
			Retrieval:      stats,
		}
	}
	return output
}
