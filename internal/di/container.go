package di

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"docqa-orchestrator/internal/adapter/httpapi"
	"docqa-orchestrator/internal/adapter/ollama"
	"docqa-orchestrator/internal/adapter/repository"
	"docqa-orchestrator/internal/domain"
	"docqa-orchestrator/internal/infra/config"
	"docqa-orchestrator/internal/infra/httpclient"
	"docqa-orchestrator/internal/usecase"
)

// ApplicationComponents holds all wired dependencies for the application.
type ApplicationComponents struct {
	// Repositories
	PassageRepo   domain.PassageRepository
	IngestionRepo domain.IngestionRepository

	// Usecases
	AnswerUsecase usecase.AnswerQuestionUsecase
	IngestUsecase usecase.IngestDocumentUsecase

	// HTTP layer
	Handler *httpapi.Handler
}

// NewApplicationComponents wires all dependencies from config and database pool.
func NewApplicationComponents(cfg *config.Config, pool *pgxpool.Pool, log *slog.Logger) (*ApplicationComponents, error) {
	// Repositories
	passageRepo := repository.NewPassageRepository(pool)
	ingestionRepo := repository.NewIngestionRepository(pool)
	txManager := repository.NewPostgresTransactionManager(pool)

	// Shared HTTP clients with connection pooling
	embedderHTTP := httpclient.NewPooledClient(time.Duration(cfg.Embedder.Timeout) * time.Second)
	generatorHTTP := httpclient.NewPooledClient(time.Duration(cfg.Generator.Timeout) * time.Second)

	// External clients
	embedder, err := ollama.NewEmbedder(cfg.Embedder.URL, cfg.Embedder.Model, embedderHTTP)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	generator := ollama.NewGenerator(cfg.Generator.URL, cfg.Generator.Model, generatorHTTP)

	// Retrieval pipeline
	retrieveUsecase := usecase.NewRetrievePassagesUsecase(
		embedder, passageRepo,
		cfg.Retrieval.FanOutLimit,
		usecase.PartialPolicy(cfg.Retrieval.PartialPolicy),
		log,
	)

	consolidate := usecase.ConsolidateOptions{
		RelevanceThreshold: cfg.Retrieval.RelevanceThreshold,
		ThresholdEnabled:   cfg.Retrieval.ThresholdEnabled,
		FinalK:             cfg.Retrieval.FinalK,
	}
	promptBuilder := usecase.NewGroundedPromptBuilder()
	answerUsecase := usecase.NewAnswerQuestionUsecase(
		retrieveUsecase, promptBuilder, generator, ingestionRepo,
		consolidate, cfg.Retrieval.TopN, log,
	)

	// Ingestion pipeline
	chunker, err := domain.NewChunker(cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("invalid chunker config: %w", err)
	}
	var limiter *rate.Limiter
	if cfg.Ingest.EmbedRatePerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Ingest.EmbedRatePerSec), 1)
	}
	ingestUsecase := usecase.NewIngestDocumentUsecase(
		chunker, embedder, passageRepo, ingestionRepo, txManager, limiter, log,
	)

	handler := httpapi.NewHandler(answerUsecase, ingestionRepo, log)

	return &ApplicationComponents{
		PassageRepo:   passageRepo,
		IngestionRepo: ingestionRepo,
		AnswerUsecase: answerUsecase,
		IngestUsecase: ingestUsecase,
		Handler:       handler,
	}, nil
}
