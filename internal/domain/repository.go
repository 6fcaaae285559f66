package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// StoredPassage is a persistable passage with its embedding, as written by
// the ingestion path.
type StoredPassage struct {
	ID          uuid.UUID
	Source      string
	ChunkIndex  int
	Content     string
	Embedding   pgvector.Vector
	IngestionID uuid.UUID
	Metadata    map[string]string
	CreatedAt   time.Time
}

// Ingestion records one completed ingestion batch.
type Ingestion struct {
	ID              uuid.UUID
	IngestedAt      time.Time
	ChunksProcessed int
}

// PassageRepository defines similarity search over the embedding store and
// the write path used by ingestion.
type PassageRepository interface {
	// Search returns the topN nearest passages for the query vector, ordered
	// ascending by distance. An empty corpus yields an empty slice, not an
	// error. ingestionID, when non-nil, restricts results to that batch.
	Search(ctx context.Context, queryVector []float32, topN int, ingestionID *uuid.UUID) ([]RankedPassage, error)

	// BulkInsert persists all passages of one ingestion batch.
	BulkInsert(ctx context.Context, passages []StoredPassage) error
}

// TransactionManager runs a function inside a database transaction.
// Repository calls made with the context it passes to fn join that
// transaction.
type TransactionManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// IngestionRepository manages ingestion batch metadata.
type IngestionRepository interface {
	// Record persists the metadata row for a completed batch.
	Record(ctx context.Context, ingestion Ingestion) error

	// LatestID returns the id of the most recent ingestion batch.
	// Returns nil, nil when no ingestion has happened yet.
	LatestID(ctx context.Context) (*uuid.UUID, error)

	// List returns all ingestion records, newest first.
	List(ctx context.Context) ([]Ingestion, error)
}
