package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"docqa-orchestrator/internal/domain"
	"docqa-orchestrator/internal/usecase"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	answerUsecase usecase.AnswerQuestionUsecase
	ingestionRepo domain.IngestionRepository
	logger        *slog.Logger
}

func NewHandler(
	answerUsecase usecase.AnswerQuestionUsecase,
	ingestionRepo domain.IngestionRepository,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		answerUsecase: answerUsecase,
		ingestionRepo: ingestionRepo,
		logger:        logger,
	}
}

// RegisterRoutes mounts the API under /v1.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/v1/answer", h.Answer)
	e.GET("/v1/ingestions", h.ListIngestions)
}

type answerRequest struct {
	Query      string `json:"query"`
	OnlyLatest bool   `json:"only_latest"`
	Debug      bool   `json:"debug"`
}

type citationResponse struct {
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunk_index"`
}

type answerDebugResponse struct {
	RetrievalSetID string               `json:"retrieval_set_id"`
	SubQueries     []string             `json:"sub_queries"`
	Retrieval      []subQueryStats      `json:"retrieval"`
	Generation     *generationDebugInfo `json:"generation,omitempty"`
}

type subQueryStats struct {
	SubQuery     string  `json:"sub_query"`
	PassageCount int     `json:"passage_count"`
	MinDistance  float64 `json:"min_distance"`
	MaxDistance  float64 `json:"max_distance"`
	AvgDistance  float64 `json:"avg_distance"`
}

type generationDebugInfo struct {
	Model        string `json:"model"`
	InputTokens  int    `json:"input_tokens"`
	OutputTokens int    `json:"output_tokens"`
}

type answerResponse struct {
	Answer     string               `json:"answer"`
	Citations  []citationResponse   `json:"citations"`
	Confidence string               `json:"confidence"`
	Debug      *answerDebugResponse `json:"debug,omitempty"`
}

// Answer runs the retrieval and generation pipeline for one question.
// (POST /v1/answer)
func (h *Handler) Answer(ctx echo.Context) error {
	var req answerRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Query == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "query is required"})
	}

	output, err := h.answerUsecase.Execute(ctx.Request().Context(), usecase.AnswerQuestionInput{
		Query:      req.Query,
		OnlyLatest: req.OnlyLatest,
		Debug:      req.Debug,
	})
	if err != nil {
		return h.answerError(ctx, err)
	}

	citations := make([]citationResponse, 0, len(output.Citations))
	for _, c := range output.Citations {
		citations = append(citations, citationResponse{
			Source:     c.Source,
			ChunkIndex: c.ChunkIndex,
		})
	}

	resp := answerResponse{
		Answer:     output.Answer,
		Citations:  citations,
		Confidence: string(output.Confidence),
	}
	if output.Debug != nil {
		resp.Debug = buildDebugResponse(output.Debug)
	}

	return ctx.JSON(http.StatusOK, resp)
}

func buildDebugResponse(d *usecase.AnswerDebug) *answerDebugResponse {
	stats := make([]subQueryStats, 0, len(d.Retrieval))
	for _, s := range d.Retrieval {
		stats = append(stats, subQueryStats{
			SubQuery:     s.SubQuery,
			PassageCount: s.PassageCount,
			MinDistance:  s.MinDistance,
			MaxDistance:  s.MaxDistance,
			AvgDistance:  s.AvgDistance,
		})
	}
	resp := &answerDebugResponse{
		RetrievalSetID: d.RetrievalSetID,
		SubQueries:     d.SubQueries,
		Retrieval:      stats,
	}
	if d.Model != "" {
		resp.Generation = &generationDebugInfo{
			Model:        d.Model,
			InputTokens:  d.InputTokens,
			OutputTokens: d.OutputTokens,
		}
	}
	return resp
}

// answerError maps upstream failures onto 502 and everything else onto 500.
func (h *Handler) answerError(ctx echo.Context, err error) error {
	var (
		embErr   *domain.EmbeddingError
		genErr   *domain.GenerationError
		storeErr *domain.PassageStoreError
	)
	switch {
	case errors.As(err, &embErr):
		h.logger.Error("answer_failed", slog.String("stage", "embedding"), slog.String("error", err.Error()))
		return ctx.JSON(http.StatusBadGateway, map[string]string{"error": "embedding service unavailable"})
	case errors.As(err, &genErr):
		h.logger.Error("answer_failed", slog.String("stage", "generation"), slog.String("error", err.Error()))
		return ctx.JSON(http.StatusBadGateway, map[string]string{"error": "generation service unavailable"})
	case errors.As(err, &storeErr):
		h.logger.Error("answer_failed", slog.String("stage", "passage_store"), slog.String("error", err.Error()))
		return ctx.JSON(http.StatusBadGateway, map[string]string{"error": "passage store unavailable"})
	default:
		h.logger.Error("answer_failed", slog.String("stage", "pipeline"), slog.String("error", err.Error()))
		return ctx.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

type ingestionResponse struct {
	IngestionID     string `json:"ingestion_id"`
	IngestedAt      string `json:"ingested_at"`
	ChunksProcessed int    `json:"chunks_processed"`
}

// ListIngestions returns all recorded ingestion batches, newest first.
// (GET /v1/ingestions)
func (h *Handler) ListIngestions(ctx echo.Context) error {
	ingestions, err := h.ingestionRepo.List(ctx.Request().Context())
	if err != nil {
		h.logger.Error("list_ingestions_failed", slog.String("error", err.Error()))
		return ctx.JSON(http.StatusBadGateway, map[string]string{"error": "passage store unavailable"})
	}

	resp := make([]ingestionResponse, 0, len(ingestions))
	for _, ing := range ingestions {
		resp = append(resp, ingestionResponse{
			IngestionID:     ing.ID.String(),
			IngestedAt:      ing.IngestedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
			ChunksProcessed: ing.ChunksProcessed,
		})
	}

	return ctx.JSON(http.StatusOK, map[string]any{"ingestions": resp})
}
