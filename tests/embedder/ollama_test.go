package embedder_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arnaud58/llamakeeper-go/pkg/embedder/ollama"
)

func TestOllamaClientDefaults(t *testing.T) {
	client, err := ollama.NewClient(&ollama.Config{})
	require.NoError(t, err)
	assert.Equal(t, 768, client.Dimensions())
	assert.NoError(t, client.Close())
}

func TestOllamaEmbed(t *testing.T) {
	var gotModel, gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embeddings", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotModel, gotPrompt = req.Model, req.Prompt

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"embedding": []float64{0.1, 0.2, 0.3},
		})
	}))
	defer server.Close()

	client, err := ollama.NewClient(&ollama.Config{
		Model:      "nomic-embed-text",
		BaseURL:    server.URL,
		Dimensions: 3,
	})
	require.NoError(t, err)

	vector, err := client.Embed(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, vector)
	assert.Equal(t, "nomic-embed-text", gotModel)
	assert.Equal(t, "hello world", gotPrompt)
}

func TestOllamaEmbedBatch(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"embedding": []float64{float64(calls), 0},
		})
	}))
	defer server.Close()

	client, err := ollama.NewClient(&ollama.Config{BaseURL: server.URL, Dimensions: 2})
	require.NoError(t, err)

	vectors, err := client.EmbedBatch(context.Background(), []string{"one", "two", "three"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []float64{1, 0}, vectors[0])
	assert.Equal(t, []float64{3, 0}, vectors[2])
}

func TestOllamaEmbedErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client, err := ollama.NewClient(&ollama.Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), "anything")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestOllamaEmbedEmptyVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"embedding": []float64{}})
	}))
	defer server.Close()

	client, err := ollama.NewClient(&ollama.Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), "anything")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty embedding")
}
