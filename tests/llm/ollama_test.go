package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arnaud58/llamakeeper-go/pkg/llm"
	"github.com/Arnaud58/llamakeeper-go/pkg/llm/ollama"
)

func TestGenerateOptionsDefaults(t *testing.T) {
	options := llm.ApplyGenerateOptions(nil)
	assert.Equal(t, 0.7, options.Temperature)
	assert.Equal(t, 500, options.MaxTokens)
	assert.Equal(t, 0.9, options.TopP)

	options = llm.ApplyGenerateOptions([]llm.GenerateOption{
		llm.WithTemperature(0.2),
		llm.WithMaxTokens(64),
		llm.WithTopP(0.5),
		llm.WithStop([]string{"\n"}),
	})
	assert.Equal(t, 0.2, options.Temperature)
	assert.Equal(t, 64, options.MaxTokens)
	assert.Equal(t, 0.5, options.TopP)
	assert.Equal(t, []string{"\n"}, options.Stop)
}

func TestOllamaGenerate(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"message": map[string]string{"role": "assistant", "content": "Once upon a time."},
		})
	}))
	defer server.Close()

	client, err := ollama.NewClient(&ollama.Config{Model: "llama2", BaseURL: server.URL})
	require.NoError(t, err)

	reply, err := client.Generate(context.Background(), "tell me a story",
		llm.WithTemperature(0.3), llm.WithMaxTokens(128))
	require.NoError(t, err)
	assert.Equal(t, "Once upon a time.", reply)

	assert.Equal(t, "llama2", gotBody["model"])
	assert.Equal(t, false, gotBody["stream"])

	options, ok := gotBody["options"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 0.3, options["temperature"])
	assert.Equal(t, float64(128), options["num_predict"])

	messages, ok := gotBody["messages"].([]interface{})
	require.True(t, ok)
	require.Len(t, messages, 1)
	first, ok := messages[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "user", first["role"])
	assert.Equal(t, "tell me a story", first["content"])
}

func TestOllamaGenerateWithMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []llm.Message `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"message": map[string]string{"role": "assistant", "content": "Noted."},
		})
	}))
	defer server.Close()

	client, err := ollama.NewClient(&ollama.Config{BaseURL: server.URL})
	require.NoError(t, err)

	reply, err := client.GenerateWithMessages(context.Background(), []llm.Message{
		{Role: "system", Content: "You are a village blacksmith."},
		{Role: "user", Content: "What did we talk about yesterday?"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Noted.", reply)
}

func TestOllamaGenerateServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model is loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, err := ollama.NewClient(&ollama.Config{BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "anything")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
