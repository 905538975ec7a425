// Package ollama provides an Ollama-backed embedding provider.
//
// Ollama runs embedding models locally; the default model is
// nomic-embed-text, which produces 768-dimensional vectors.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client implements embedder.Provider against the Ollama embeddings API.
type Client struct {
	client     *http.Client
	model      string
	baseURL    string
	dimensions int
}

// Config is the configuration for the Ollama embedder.
//
// Model defaults to "nomic-embed-text", BaseURL to
// "http://localhost:11434", and Dimensions to 768. HTTPClient may be
// set to override the default client (60 second timeout).
type Config struct {
	Model      string
	BaseURL    string
	Dimensions int
	HTTPClient *http.Client
}

// NewClient creates a new Ollama embedding client.
func NewClient(cfg *Config) (*Client, error) {
	model := cfg.Model
	if model == "" {
		model = "nomic-embed-text"
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		dimensions = 768
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}

	return &Client{
		client:     client,
		model:      model,
		baseURL:    baseURL,
		dimensions: dimensions,
	}, nil
}

// embeddingRequest is the Ollama /api/embeddings request body.
type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// embeddingResponse is the Ollama /api/embeddings response body.
type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed converts one text into its embedding vector.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	reqBody, err := json.Marshal(embeddingRequest{
		Model:  c.model,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/embeddings", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(body))
	}

	var result embeddingResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned an empty embedding for model %s", c.model)
	}

	return result.Embedding, nil
}

// EmbedBatch converts several texts by embedding them one at a time.
// The Ollama embeddings endpoint accepts one prompt per request.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	embeddings := make([][]float64, len(texts))
	for i, text := range texts {
		vector, err := c.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed batch item %d: %w", i, err)
		}
		embeddings[i] = vector
	}
	return embeddings, nil
}

// Dimensions returns the configured vector length.
func (c *Client) Dimensions() int {
	return c.dimensions
}

// Close releases client resources. The HTTP client needs no explicit
// shutdown; retained for interface compatibility.
func (c *Client) Close() error {
	return nil
}
