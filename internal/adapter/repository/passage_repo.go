package repository

import (
	"context"
	"fmt"

	"docqa-orchestrator/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type passageRepository struct {
	pool *pgxpool.Pool
}

// NewPassageRepository creates a new PassageRepository backed by pgvector.
func NewPassageRepository(pool *pgxpool.Pool) domain.PassageRepository {
	return &passageRepository{pool: pool}
}

type dbExecutor interface {
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *passageRepository) getExecutor(ctx context.Context) dbExecutor {
	tx := ExtractTx(ctx)
	if tx != nil {
		return tx
	}
	return r.pool
}

func (r *passageRepository) Search(ctx context.Context, queryVector []float32, topN int, ingestionID *uuid.UUID) ([]domain.RankedPassage, error) {
	query := `
		SELECT source, chunk_index, content, metadata, embedding <=> $1 AS distance
		FROM passages
	`
	args := []interface{}{pgvector.NewVector(queryVector)}
	if ingestionID != nil {
		query += "WHERE ingestion_id = $2\n"
		args = append(args, *ingestionID)
	}
	query += fmt.Sprintf("ORDER BY embedding <=> $1 ASC LIMIT $%d", len(args)+1)
	args = append(args, topN)

	rows, err := r.getExecutor(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query passages: %w", err)
	}
	defer rows.Close()

	var results []domain.RankedPassage
	for rows.Next() {
		var p domain.RankedPassage
		if err := rows.Scan(&p.Passage.Source, &p.Passage.ChunkIndex, &p.Passage.Content, &p.Passage.Metadata, &p.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

func (r *passageRepository) BulkInsert(ctx context.Context, passages []domain.StoredPassage) error {
	if len(passages) == 0 {
		return nil
	}

	rows := make([][]interface{}, len(passages))
	for i, passage := range passages {
		rows[i] = []interface{}{
			passage.ID,
			passage.Source,
			passage.ChunkIndex,
			passage.Content,
			passage.Embedding,
			passage.IngestionID,
			passage.Metadata,
			passage.CreatedAt,
		}
	}

	_, err := r.getExecutor(ctx).CopyFrom(
		ctx,
		pgx.Identifier{"passages"},
		[]string{"id", "source", "chunk_index", "content", "embedding", "ingestion_id", "metadata", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to bulk insert passages: %w", err)
	}

	return nil
}
