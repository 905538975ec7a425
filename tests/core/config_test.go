package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arnaud58/llamakeeper-go/pkg/core"
)

func TestLoadConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "")
	t.Setenv("EMBEDDING_MODEL", "")
	t.Setenv("EMBEDDING_DIMS", "")
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("MAX_MEMORIES", "")
	t.Setenv("LONG_TERM_THRESHOLD", "")
	t.Setenv("JOURNAL_PROVIDER", "")

	config, err := core.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "ollama", config.Embedder.Provider)
	assert.Equal(t, "nomic-embed-text", config.Embedder.Model)
	assert.Equal(t, 768, config.Embedder.Dimensions)
	assert.Equal(t, "ollama", config.LLM.Provider)
	assert.Equal(t, "llama2", config.LLM.Model)
	assert.Equal(t, 100, config.Memory.MaxMemories)
	assert.Equal(t, 0.8, config.Memory.LongTermThreshold)
	assert.Nil(t, config.Journal)
}

func TestLoadConfigFromEnvOpenAI(t *testing.T) {
	t.Setenv("EMBEDDING_PROVIDER", "openai")
	t.Setenv("EMBEDDING_API_KEY", "sk-test")
	t.Setenv("EMBEDDING_MODEL", "")
	t.Setenv("EMBEDDING_DIMS", "")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("LLM_MODEL", "")
	t.Setenv("MAX_MEMORIES", "250")
	t.Setenv("LONG_TERM_THRESHOLD", "0.75")

	config, err := core.LoadConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "openai", config.Embedder.Provider)
	assert.Equal(t, "sk-test", config.Embedder.APIKey)
	assert.Equal(t, "text-embedding-3-small", config.Embedder.Model)
	assert.Equal(t, 1536, config.Embedder.Dimensions)
	assert.Equal(t, "gpt-4", config.LLM.Model)
	assert.Equal(t, 250, config.Memory.MaxMemories)
	assert.Equal(t, 0.75, config.Memory.LongTermThreshold)
}

func TestLoadConfigFromEnvJournal(t *testing.T) {
	t.Setenv("JOURNAL_PROVIDER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/keeper.db")
	t.Setenv("SQLITE_TABLE", "")

	config, err := core.LoadConfigFromEnv()
	require.NoError(t, err)

	require.NotNil(t, config.Journal)
	assert.Equal(t, "sqlite", config.Journal.Provider)
	assert.Equal(t, "/tmp/keeper.db", config.Journal.Config["db_path"])
	assert.Equal(t, "memories", config.Journal.Config["table_name"])
}

func TestLoadConfigFromJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	payload := `{
		"embedder": {"provider": "ollama", "model": "nomic-embed-text", "dimensions": 768},
		"llm": {"provider": "ollama", "model": "llama2"},
		"memory": {"max_memories": 42, "long_term_threshold": 0.9}
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	config, err := core.LoadConfigFromJSON(path)
	require.NoError(t, err)
	assert.Equal(t, "ollama", config.Embedder.Provider)
	assert.Equal(t, 42, config.Memory.MaxMemories)
	assert.Equal(t, 0.9, config.Memory.LongTermThreshold)

	_, err = core.LoadConfigFromJSON(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	valid := &core.Config{
		Embedder: core.EmbedderConfig{Provider: "ollama"},
		Memory:   core.MemoryConfig{MaxMemories: 10, LongTermThreshold: 0.8},
	}
	assert.NoError(t, valid.Validate())

	noEmbedder := &core.Config{}
	assert.ErrorIs(t, noEmbedder.Validate(), core.ErrInvalidConfig)

	badThreshold := &core.Config{
		Embedder: core.EmbedderConfig{Provider: "ollama"},
		Memory:   core.MemoryConfig{LongTermThreshold: 1.2},
	}
	assert.ErrorIs(t, badThreshold.Validate(), core.ErrInvalidConfig)

	emptyJournal := &core.Config{
		Embedder: core.EmbedderConfig{Provider: "ollama"},
		Journal:  &core.JournalConfig{},
	}
	assert.ErrorIs(t, emptyJournal.Validate(), core.ErrInvalidConfig)
}
