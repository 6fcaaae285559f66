package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"docqa-orchestrator/internal/domain"
	"docqa-orchestrator/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type capturingPassageRepo struct {
	mu       sync.Mutex
	inserted []domain.StoredPassage
	err      error
}

func (c *capturingPassageRepo) Search(ctx context.Context, queryVector []float32, topN int, ingestionID *uuid.UUID) ([]domain.RankedPassage, error) {
	return nil, nil
}

func (c *capturingPassageRepo) BulkInsert(ctx context.Context, passages []domain.StoredPassage) error {
	if c.err != nil {
		return c.err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inserted = append(c.inserted, passages...)
	return nil
}

type capturingIngestionRepo struct {
	recorded []domain.Ingestion
	err      error
}

func (c *capturingIngestionRepo) Record(ctx context.Context, ingestion domain.Ingestion) error {
	if c.err != nil {
		return c.err
	}
	c.recorded = append(c.recorded, ingestion)
	return nil
}

func (c *capturingIngestionRepo) LatestID(ctx context.Context) (*uuid.UUID, error) {
	return nil, nil
}

func (c *capturingIngestionRepo) List(ctx context.Context) ([]domain.Ingestion, error) {
	return nil, nil
}

// passthroughTxManager runs fn directly; the capturing repos stand in for the
// transactional store.
type passthroughTxManager struct {
	calls int
}

func (m *passthroughTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

func newIngestUsecase(t *testing.T, passages *capturingPassageRepo, ingestions *capturingIngestionRepo, encoder domain.VectorEncoder) usecase.IngestDocumentUsecase {
	t.Helper()
	chunker, err := domain.NewChunker(100, 10)
	require.NoError(t, err)
	return usecase.NewIngestDocumentUsecase(chunker, encoder, passages, ingestions, &passthroughTxManager{}, nil, testLogger())
}

func TestIngestDocument_ChunksEmbedsAndPersists(t *testing.T) {
	passages := &capturingPassageRepo{}
	ingestions := &capturingIngestionRepo{}
	uc := newIngestUsecase(t, passages, ingestions, &stubEncoder{})

	text := strings.Repeat("a", 250)
	out, err := uc.Execute(context.Background(), usecase.IngestInput{
		Documents: []usecase.IngestDocument{{Source: "docs/guide.md", Text: text}},
	})
	require.NoError(t, err)

	// size 100, overlap 10, step 90: [0:100], [90:190], [180:250]
	require.Len(t, passages.inserted, 3)
	for i, sp := range passages.inserted {
		assert.Equal(t, "docs/guide.md", sp.Source)
		assert.Equal(t, i, sp.ChunkIndex)
		assert.Equal(t, out.Ingestion.ID, sp.IngestionID)
		assert.NotEqual(t, uuid.Nil, sp.ID)
		assert.Equal(t, "fixed-v1", sp.Metadata["chunker_version"])
		assert.Equal(t, "stub-encoder", sp.Metadata["embedder_version"])
	}

	require.Len(t, ingestions.recorded, 1)
	assert.Equal(t, 3, ingestions.recorded[0].ChunksProcessed)
	assert.Equal(t, out.Ingestion.ID, ingestions.recorded[0].ID)
}

func TestIngestDocument_MultipleDocumentsShareBatchID(t *testing.T) {
	passages := &capturingPassageRepo{}
	ingestions := &capturingIngestionRepo{}
	uc := newIngestUsecase(t, passages, ingestions, &stubEncoder{})

	out, err := uc.Execute(context.Background(), usecase.IngestInput{
		Documents: []usecase.IngestDocument{
			{Source: "a.md", Text: "alpha document text"},
			{Source: "b.md", Text: "beta document text"},
		},
	})
	require.NoError(t, err)

	require.Len(t, passages.inserted, 2)
	assert.Equal(t, passages.inserted[0].IngestionID, passages.inserted[1].IngestionID)
	assert.Equal(t, 2, out.Ingestion.ChunksProcessed)
}

func TestIngestDocument_SkipsEmptyDocuments(t *testing.T) {
	passages := &capturingPassageRepo{}
	ingestions := &capturingIngestionRepo{}
	uc := newIngestUsecase(t, passages, ingestions, &stubEncoder{})

	_, err := uc.Execute(context.Background(), usecase.IngestInput{
		Documents: []usecase.IngestDocument{
			{Source: "empty.md", Text: ""},
			{Source: "real.md", Text: "some content"},
		},
	})
	require.NoError(t, err)
	require.Len(t, passages.inserted, 1)
	assert.Equal(t, "real.md", passages.inserted[0].Source)
}

func TestIngestDocument_AllEmptyFails(t *testing.T) {
	uc := newIngestUsecase(t, &capturingPassageRepo{}, &capturingIngestionRepo{}, &stubEncoder{})

	_, err := uc.Execute(context.Background(), usecase.IngestInput{
		Documents: []usecase.IngestDocument{{Source: "empty.md", Text: "   "}},
	})
	assert.Error(t, err)
}

func TestIngestDocument_NoDocumentsFails(t *testing.T) {
	uc := newIngestUsecase(t, &capturingPassageRepo{}, &capturingIngestionRepo{}, &stubEncoder{})

	_, err := uc.Execute(context.Background(), usecase.IngestInput{})
	assert.Error(t, err)
}

func TestIngestDocument_EmbeddingFailureWrapped(t *testing.T) {
	uc := newIngestUsecase(t, &capturingPassageRepo{}, &capturingIngestionRepo{}, &stubEncoder{failOn: "boom"})

	_, err := uc.Execute(context.Background(), usecase.IngestInput{
		Documents: []usecase.IngestDocument{{Source: "x.md", Text: "boom"}},
	})
	require.Error(t, err)
	var embErr *domain.EmbeddingError
	assert.True(t, errors.As(err, &embErr))
}

func TestIngestDocument_InsertFailureWrapped(t *testing.T) {
	passages := &capturingPassageRepo{err: errors.New("disk full")}
	uc := newIngestUsecase(t, passages, &capturingIngestionRepo{}, &stubEncoder{})

	_, err := uc.Execute(context.Background(), usecase.IngestInput{
		Documents: []usecase.IngestDocument{{Source: "x.md", Text: "content"}},
	})
	require.Error(t, err)
	var storeErr *domain.PassageStoreError
	assert.True(t, errors.As(err, &storeErr))
}

func TestIngestDocument_PersistsInsideTransaction(t *testing.T) {
	passages := &capturingPassageRepo{}
	ingestions := &capturingIngestionRepo{}
	txManager := &passthroughTxManager{}
	chunker, err := domain.NewChunker(100, 10)
	require.NoError(t, err)
	uc := usecase.NewIngestDocumentUsecase(chunker, &stubEncoder{}, passages, ingestions, txManager, nil, testLogger())

	_, err = uc.Execute(context.Background(), usecase.IngestInput{
		Documents: []usecase.IngestDocument{{Source: "x.md", Text: "content"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, txManager.calls)
	assert.Len(t, passages.inserted, 1)
	assert.Len(t, ingestions.recorded, 1)
}

func TestIngestDocument_RespectsRateLimiter(t *testing.T) {
	passages := &capturingPassageRepo{}
	ingestions := &capturingIngestionRepo{}
	chunker, err := domain.NewChunker(100, 10)
	require.NoError(t, err)

	// A generous limit so the test stays fast; the point is that Wait is
	// exercised without error.
	limiter := rate.NewLimiter(rate.Limit(1000), 1)
	uc := usecase.NewIngestDocumentUsecase(chunker, &stubEncoder{}, passages, ingestions, &passthroughTxManager{}, limiter, testLogger())

	_, err = uc.Execute(context.Background(), usecase.IngestInput{
		Documents: []usecase.IngestDocument{{Source: "x.md", Text: strings.Repeat("b", 500)}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, passages.inserted)
}
