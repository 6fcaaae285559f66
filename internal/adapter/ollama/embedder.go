package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"docqa-orchestrator/internal/domain"

	lru "github.com/hashicorp/golang-lru/v2"
)

// embedCacheSize bounds the per-process embedding cache. Identical texts
// (repeated sub-queries, re-ingested chunks) skip the service round trip.
const embedCacheSize = 2048

// Embedder calls Ollama's embed endpoint and caches results per input text.
type Embedder struct {
	BaseURL string
	Model   string
	Client  *http.Client

	cache *lru.Cache[string, []float32]
}

// NewEmbedder constructs an embedder for the given endpoint and model.
func NewEmbedder(baseURL, model string, client *http.Client) (*Embedder, error) {
	cache, err := lru.New[string, []float32](embedCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}
	return &Embedder{
		BaseURL: baseURL,
		Model:   model,
		Client:  client,
		cache:   cache,
	}, nil
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Encode returns one embedding per input text, in input order. Cached texts
// are served locally; only misses go to the service.
func (e *Embedder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		if v, ok := e.cache.Get(e.cacheKey(text)); ok {
			out[i] = v
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	start := time.Now()
	slog.Info("ollama_embed_started",
		slog.Int("text_count", len(texts)),
		slog.Int("cache_misses", len(missTexts)),
		slog.String("model", e.Model),
	)

	reqBody := embedRequest{Model: e.Model, Input: missTexts}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/embed", e.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.Client.Do(req)
	if err != nil {
		slog.Error("ollama_embed_failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)),
		)
		return nil, fmt.Errorf("failed to call ollama: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		slog.Error("ollama_embed_bad_status",
			slog.Int("status", resp.StatusCode),
			slog.Duration("elapsed", time.Since(start)),
		)
		return nil, fmt.Errorf("ollama returned status: %d", resp.StatusCode)
	}

	var respBody embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(respBody.Embeddings) != len(missTexts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(missTexts), len(respBody.Embeddings))
	}

	for i, embedding := range respBody.Embeddings {
		out[missIdx[i]] = embedding
		e.cache.Add(e.cacheKey(missTexts[i]), embedding)
	}

	slog.Info("ollama_embed_completed",
		slog.Int("embedding_count", len(respBody.Embeddings)),
		slog.Duration("elapsed", time.Since(start)),
	)

	return out, nil
}

// cacheKey scopes cached vectors to the model so a model switch cannot serve
// stale embeddings.
func (e *Embedder) cacheKey(text string) string {
	return e.Model + "\x00" + text
}

// Version returns the wrapped model name.
func (e *Embedder) Version() string {
	return e.Model
}

var _ domain.VectorEncoder = (*Embedder)(nil)
