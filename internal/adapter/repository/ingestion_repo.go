package repository

import (
	"context"
	"errors"
	"fmt"

	"docqa-orchestrator/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ingestionRepository struct {
	pool *pgxpool.Pool
}

// NewIngestionRepository creates a new IngestionRepository.
func NewIngestionRepository(pool *pgxpool.Pool) domain.IngestionRepository {
	return &ingestionRepository{pool: pool}
}

func (r *ingestionRepository) getExecutor(ctx context.Context) dbExecutor {
	tx := ExtractTx(ctx)
	if tx != nil {
		return tx
	}
	return r.pool
}

func (r *ingestionRepository) Record(ctx context.Context, ingestion domain.Ingestion) error {
	query := `
		INSERT INTO ingestion_metadata (ingestion_id, ingested_at, chunks_processed)
		VALUES ($1, $2, $3)
	`
	_, err := r.getExecutor(ctx).Exec(ctx, query, ingestion.ID, ingestion.IngestedAt, ingestion.ChunksProcessed)
	if err != nil {
		return fmt.Errorf("failed to record ingestion: %w", err)
	}
	return nil
}

func (r *ingestionRepository) LatestID(ctx context.Context) (*uuid.UUID, error) {
	query := `
		SELECT ingestion_id
		FROM ingestion_metadata
		ORDER BY ingested_at DESC
		LIMIT 1
	`
	var id uuid.UUID
	err := r.getExecutor(ctx).QueryRow(ctx, query).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest ingestion: %w", err)
	}
	return &id, nil
}

func (r *ingestionRepository) List(ctx context.Context) ([]domain.Ingestion, error) {
	query := `
		SELECT ingestion_id, ingested_at, chunks_processed
		FROM ingestion_metadata
		ORDER BY ingested_at DESC
	`
	rows, err := r.getExecutor(ctx).Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query ingestions: %w", err)
	}
	defer rows.Close()

	var ingestions []domain.Ingestion
	for rows.Next() {
		var ing domain.Ingestion
		if err := rows.Scan(&ing.ID, &ing.IngestedAt, &ing.ChunksProcessed); err != nil {
			return nil, fmt.Errorf("failed to scan ingestion: %w", err)
		}
		ingestions = append(ingestions, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return ingestions, nil
}
