package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"docqa-orchestrator/internal/domain"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"golang.org/x/time/rate"
)

// embedBatchSize is how many chunks go to the embedding service per call.
const embedBatchSize = 16

// IngestDocument is one raw document to ingest: its stable source identifier
// (e.g. file path) and full text.
type IngestDocument struct {
	Source string
	Text   string
}

// IngestInput is a batch of documents ingested under one batch id.
type IngestInput struct {
	Documents []IngestDocument
}

// IngestOutput reports the completed batch.
type IngestOutput struct {
	Ingestion domain.Ingestion
}

// IngestDocumentUsecase chunks, embeds, and persists documents, then records
// the batch metadata. This is the offline path; the answer pipeline only
// reads what it writes.
type IngestDocumentUsecase interface {
	Execute(ctx context.Context, input IngestInput) (*IngestOutput, error)
}

type ingestDocumentUsecase struct {
	chunker       domain.Chunker
	encoder       domain.VectorEncoder
	passageRepo   domain.PassageRepository
	ingestionRepo domain.IngestionRepository
	txManager     domain.TransactionManager
	limiter       *rate.Limiter
	logger        *slog.Logger
}

// NewIngestDocumentUsecase creates the ingestion pipeline. limiter throttles
// embedding calls; pass nil to disable throttling.
func NewIngestDocumentUsecase(
	chunker domain.Chunker,
	encoder domain.VectorEncoder,
	passageRepo domain.PassageRepository,
	ingestionRepo domain.IngestionRepository,
	txManager domain.TransactionManager,
	limiter *rate.Limiter,
	logger *slog.Logger,
) IngestDocumentUsecase {
	return &ingestDocumentUsecase{
		chunker:       chunker,
		encoder:       encoder,
		passageRepo:   passageRepo,
		ingestionRepo: ingestionRepo,
		txManager:     txManager,
		limiter:       limiter,
		logger:        logger,
	}
}

func (u *ingestDocumentUsecase) Execute(ctx context.Context, input IngestInput) (*IngestOutput, error) {
	if len(input.Documents) == 0 {
		return nil, fmt.Errorf("no documents to ingest")
	}

	ingestionID := uuid.New()
	now := time.Now().UTC()

	var stored []domain.StoredPassage
	for _, doc := range input.Documents {
		if strings.TrimSpace(doc.Text) == "" {
			u.logger.Warn("document_empty", slog.String("source", doc.Source))
			continue
		}
		chunks, err := u.chunker.Chunk(doc.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to chunk %s: %w", doc.Source, err)
		}
		if len(chunks) == 0 {
			continue
		}

		embeddings, err := u.embedChunks(ctx, chunks)
		if err != nil {
			return nil, err
		}

		for i, chunk := range chunks {
			stored = append(stored, domain.StoredPassage{
				ID:          uuid.New(),
				Source:      doc.Source,
				ChunkIndex:  chunk.Index,
				Content:     chunk.Content,
				Embedding:   pgvector.NewVector(embeddings[i]),
				IngestionID: ingestionID,
				Metadata: map[string]string{
					"chunker_version":  string(u.chunker.Version()),
					"embedder_version": u.encoder.Version(),
				},
				CreatedAt: now,
			})
		}

		u.logger.Info("document_chunked",
			slog.String("source", doc.Source),
			slog.Int("chunk_count", len(chunks)))
	}

	if len(stored) == 0 {
		return nil, fmt.Errorf("all documents were empty")
	}

	ingestion := domain.Ingestion{
		ID:              ingestionID,
		IngestedAt:      now,
		ChunksProcessed: len(stored),
	}

	// Passages and the batch metadata row land together or not at all, so a
	// half-written batch can never surface in search results.
	err := u.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := u.passageRepo.BulkInsert(txCtx, stored); err != nil {
			return fmt.Errorf("failed to insert passages: %w", err)
		}
		if err := u.ingestionRepo.Record(txCtx, ingestion); err != nil {
			return fmt.Errorf("failed to record ingestion: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, &domain.PassageStoreError{Err: err}
	}

	u.logger.Info("ingestion_completed",
		slog.String("ingestion_id", ingestionID.String()),
		slog.Int("document_count", len(input.Documents)),
		slog.Int("chunk_count", len(stored)))

	return &IngestOutput{Ingestion: ingestion}, nil
}

func (u *ingestDocumentUsecase) embedChunks(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	embeddings := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		if u.limiter != nil {
			if err := u.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("embedding throttle: %w", err)
			}
		}

		texts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			texts = append(texts, chunk.Content)
		}

		batch, err := u.encoder.Encode(ctx, texts)
		if err != nil {
			return nil, &domain.EmbeddingError{Err: err}
		}
		if len(batch) != len(texts) {
			return nil, &domain.EmbeddingError{Err: fmt.Errorf("expected %d embeddings, got %d", len(texts), len(batch))}
		}
		embeddings = append(embeddings, batch...)
	}
	return embeddings, nil
}
