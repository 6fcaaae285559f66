package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"docqa-orchestrator/internal/adapter/ollama"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedder_Encode(t *testing.T) {
	var gotRequests []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/embed", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotRequests = append(gotRequests, body)

		inputs := body["input"].([]any)
		embeddings := make([][]float32, len(inputs))
		for i := range inputs {
			embeddings[i] = []float32{float32(i), 0.5}
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"embeddings": embeddings}))
	}))
	defer server.Close()

	embedder, err := ollama.NewEmbedder(server.URL, "embeddinggemma", server.Client())
	require.NoError(t, err)

	vectors, err := embedder.Encode(context.Background(), []string{"first text", "second text"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{0, 0.5}, vectors[0])
	assert.Equal(t, []float32{1, 0.5}, vectors[1])

	require.Len(t, gotRequests, 1)
	assert.Equal(t, "embeddinggemma", gotRequests[0]["model"])
}

func TestEmbedder_Encode_CacheSkipsRepeatedTexts(t *testing.T) {
	var callCount int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		callCount++
		var body struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		embeddings := make([][]float32, len(body.Input))
		for i := range body.Input {
			embeddings[i] = []float32{float32(len(body.Input[i]))}
		}
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"embeddings": embeddings}))
	}))
	defer server.Close()

	embedder, err := ollama.NewEmbedder(server.URL, "embeddinggemma", server.Client())
	require.NoError(t, err)

	first, err := embedder.Encode(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Equal(t, 1, callCount)

	// Fully cached input triggers no HTTP call.
	second, err := embedder.Encode(context.Background(), []string{"beta", "alpha"})
	require.NoError(t, err)
	assert.Equal(t, 1, callCount)
	assert.Equal(t, first[0], second[1])
	assert.Equal(t, first[1], second[0])

	// Mixed input only sends the miss.
	third, err := embedder.Encode(context.Background(), []string{"alpha", "gamma"})
	require.NoError(t, err)
	assert.Equal(t, 2, callCount)
	assert.Equal(t, first[0], third[0])
	assert.Equal(t, []float32{5}, third[1])
}

func TestEmbedder_Encode_BadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	embedder, err := ollama.NewEmbedder(server.URL, "embeddinggemma", server.Client())
	require.NoError(t, err)

	_, err = embedder.Encode(context.Background(), []string{"text"})
	assert.ErrorContains(t, err, "status")
}

func TestEmbedder_Encode_CountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{0.1}},
		}))
	}))
	defer server.Close()

	embedder, err := ollama.NewEmbedder(server.URL, "embeddinggemma", server.Client())
	require.NoError(t, err)

	_, err = embedder.Encode(context.Background(), []string{"one", "two"})
	assert.ErrorContains(t, err, "expected 2 embeddings")
}

func TestEmbedder_Version(t *testing.T) {
	embedder, err := ollama.NewEmbedder("http://localhost:11434", "embeddinggemma", http.DefaultClient)
	require.NoError(t, err)
	assert.Equal(t, "embeddinggemma", embedder.Version())
}
