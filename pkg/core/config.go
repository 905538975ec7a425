package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config contains the complete configuration for a Manager.
//
// It covers the embedding provider, the optional LLM used for
// reflections, per-agent memory bounds, and the optional durable
// journal.
//
// Example:
//
//	config := &core.Config{
//	    Embedder: core.EmbedderConfig{
//	        Provider: "ollama",
//	        Model:    "nomic-embed-text",
//	    },
//	    Memory: core.MemoryConfig{
//	        MaxMemories:       100,
//	        LongTermThreshold: 0.8,
//	    },
//	}
type Config struct {
	// Embedder contains embedding provider configuration. Required.
	Embedder EmbedderConfig `json:"embedder"`

	// LLM contains LLM provider configuration. Optional; reflection is
	// unavailable without it.
	LLM LLMConfig `json:"llm,omitempty"`

	// Memory contains per-agent memory store configuration.
	Memory MemoryConfig `json:"memory"`

	// Journal contains durable journal configuration. Optional; the
	// store is purely in-memory without it.
	Journal *JournalConfig `json:"journal,omitempty"`
}

// EmbedderConfig contains configuration for the embedding provider.
//
// Supported providers: ollama, openai
type EmbedderConfig struct {
	// Provider is the embedding provider name (ollama, openai).
	Provider string `json:"provider"`

	// APIKey is the API key, where the provider requires one.
	APIKey string `json:"api_key,omitempty"`

	// Model is the embedding model name (e.g. "nomic-embed-text").
	Model string `json:"model,omitempty"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `json:"base_url,omitempty"`

	// Dimensions is the embedding vector length (e.g. 768, 1536).
	Dimensions int `json:"dimensions,omitempty"`
}

// LLMConfig contains configuration for the text generation provider.
//
// Supported providers: ollama, openai
type LLMConfig struct {
	// Provider is the LLM provider name (ollama, openai). Empty
	// disables LLM-backed features.
	Provider string `json:"provider,omitempty"`

	// APIKey is the API key, where the provider requires one.
	APIKey string `json:"api_key,omitempty"`

	// Model is the model name (e.g. "llama2", "gpt-4").
	Model string `json:"model,omitempty"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `json:"base_url,omitempty"`
}

// MemoryConfig contains configuration for each agent's memory store.
type MemoryConfig struct {
	// MaxMemories bounds the number of memories per agent. Must be
	// positive. Default: 100.
	MaxMemories int `json:"max_memories,omitempty"`

	// LongTermThreshold is the importance at which a memory becomes
	// long-term and immune to capacity eviction. Must be in [0,1].
	// Default: 0.8.
	LongTermThreshold float64 `json:"long_term_threshold,omitempty"`
}

// applyDefaults fills zero-valued fields with defaults.
func (c *MemoryConfig) applyDefaults() {
	if c.MaxMemories == 0 {
		c.MaxMemories = defaultMaxMemories
	}
	if c.LongTermThreshold == 0 {
		c.LongTermThreshold = defaultLongTermThreshold
	}
}

const (
	defaultMaxMemories       = 100
	defaultLongTermThreshold = 0.8
)

// JournalConfig contains configuration for the durable journal.
//
// Supported providers: sqlite, postgres, mysql
type JournalConfig struct {
	// Provider is the journal backend name (sqlite, postgres, mysql).
	Provider string `json:"provider"`

	// Config contains provider-specific settings.
	// For SQLite: db_path, table_name
	// For PostgreSQL: host, port, user, password, db_name, table_name, ssl_mode
	// For MySQL: host, port, user, password, db_name, table_name
	Config map[string]interface{} `json:"config"`
}

// LoadConfigFromEnv loads configuration from environment variables.
//
// A .env or .env.example file is located with FindEnvFile and loaded
// first, then the following variables are read:
//
//   - EMBEDDING_PROVIDER, EMBEDDING_API_KEY, EMBEDDING_MODEL,
//     EMBEDDING_BASE_URL, EMBEDDING_DIMS
//   - LLM_PROVIDER, LLM_API_KEY, LLM_MODEL, LLM_BASE_URL
//   - MAX_MEMORIES, LONG_TERM_THRESHOLD
//   - JOURNAL_PROVIDER plus SQLITE_*, POSTGRES_*, or MYSQL_* settings
//
// Missing variables fall back to local-first defaults: the ollama
// embedder with nomic-embed-text, the ollama LLM with llama2, 100
// memories per agent, a 0.8 long-term threshold, and no journal.
func LoadConfigFromEnv() (*Config, error) {
	if envPath, found := FindEnvFile(); found {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load()
	}

	embedderProvider := getEnvOrDefault("EMBEDDING_PROVIDER", "ollama")
	embedderModel := os.Getenv("EMBEDDING_MODEL")
	embedderBaseURL := os.Getenv("EMBEDDING_BASE_URL")
	dims, _ := strconv.Atoi(os.Getenv("EMBEDDING_DIMS"))

	switch embedderProvider {
	case "ollama":
		if embedderModel == "" {
			embedderModel = "nomic-embed-text"
		}
		if dims == 0 {
			dims = 768
		}
	case "openai":
		if embedderModel == "" {
			embedderModel = "text-embedding-3-small"
		}
		if dims == 0 {
			dims = 1536
		}
	}

	llmProvider := getEnvOrDefault("LLM_PROVIDER", "ollama")
	llmModel := os.Getenv("LLM_MODEL")
	switch llmProvider {
	case "ollama":
		if llmModel == "" {
			llmModel = "llama2"
		}
	case "openai":
		if llmModel == "" {
			llmModel = "gpt-4"
		}
	}

	maxMemories, _ := strconv.Atoi(getEnvOrDefault("MAX_MEMORIES", strconv.Itoa(defaultMaxMemories)))
	threshold, _ := strconv.ParseFloat(getEnvOrDefault("LONG_TERM_THRESHOLD", "0.8"), 64)

	config := &Config{
		Embedder: EmbedderConfig{
			Provider:   embedderProvider,
			APIKey:     os.Getenv("EMBEDDING_API_KEY"),
			Model:      embedderModel,
			BaseURL:    embedderBaseURL,
			Dimensions: dims,
		},
		LLM: LLMConfig{
			Provider: llmProvider,
			APIKey:   os.Getenv("LLM_API_KEY"),
			Model:    llmModel,
			BaseURL:  os.Getenv("LLM_BASE_URL"),
		},
		Memory: MemoryConfig{
			MaxMemories:       maxMemories,
			LongTermThreshold: threshold,
		},
	}

	switch os.Getenv("JOURNAL_PROVIDER") {
	case "sqlite":
		config.Journal = &JournalConfig{
			Provider: "sqlite",
			Config: map[string]interface{}{
				"db_path":    getEnvOrDefault("SQLITE_PATH", "./llamakeeper.db"),
				"table_name": getEnvOrDefault("SQLITE_TABLE", "memories"),
			},
		}
	case "postgres":
		port, _ := strconv.Atoi(getEnvOrDefault("POSTGRES_PORT", "5432"))
		config.Journal = &JournalConfig{
			Provider: "postgres",
			Config: map[string]interface{}{
				"host":       getEnvOrDefault("POSTGRES_HOST", "localhost"),
				"port":       port,
				"user":       getEnvOrDefault("POSTGRES_USER", "postgres"),
				"password":   os.Getenv("POSTGRES_PASSWORD"),
				"db_name":    getEnvOrDefault("POSTGRES_DATABASE", "llamakeeper"),
				"table_name": getEnvOrDefault("POSTGRES_TABLE", "memories"),
				"ssl_mode":   getEnvOrDefault("POSTGRES_SSLMODE", "disable"),
			},
		}
	case "mysql":
		port, _ := strconv.Atoi(getEnvOrDefault("MYSQL_PORT", "3306"))
		config.Journal = &JournalConfig{
			Provider: "mysql",
			Config: map[string]interface{}{
				"host":       getEnvOrDefault("MYSQL_HOST", "127.0.0.1"),
				"port":       port,
				"user":       getEnvOrDefault("MYSQL_USER", "root"),
				"password":   os.Getenv("MYSQL_PASSWORD"),
				"db_name":    getEnvOrDefault("MYSQL_DATABASE", "llamakeeper"),
				"table_name": getEnvOrDefault("MYSQL_TABLE", "memories"),
			},
		}
	}

	return config, nil
}

// LoadConfigFromEnvFile loads configuration from a specific .env file.
func LoadConfigFromEnvFile(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return LoadConfigFromEnv()
}

// LoadConfigFromJSON loads configuration from a JSON file.
func LoadConfigFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewMemoryError("LoadConfigFromJSON", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, NewMemoryError("LoadConfigFromJSON", err)
	}
	return &config, nil
}

// Validate checks the configuration for construction-time errors.
//
// The embedder provider is required, the memory bounds must be sane,
// and a journal block, when present, must name a provider. Invalid
// configuration is fatal: NewManager refuses to build.
func (c *Config) Validate() error {
	if c.Embedder.Provider == "" {
		return NewMemoryError("Validate", fmt.Errorf("%w: embedder provider is required", ErrInvalidConfig))
	}
	if c.Memory.MaxMemories < 0 {
		return NewMemoryError("Validate", fmt.Errorf("%w: max memories must be positive", ErrInvalidConfig))
	}
	if c.Memory.LongTermThreshold < 0 || c.Memory.LongTermThreshold > 1 {
		return NewMemoryError("Validate", fmt.Errorf("%w: long-term threshold must be in [0,1]", ErrInvalidConfig))
	}
	if c.Journal != nil && c.Journal.Provider == "" {
		return NewMemoryError("Validate", fmt.Errorf("%w: journal provider is required", ErrInvalidConfig))
	}
	return nil
}

// getEnvOrDefault gets an environment variable or returns the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FindEnvFile searches for a .env or .env.example file, starting in
// the working directory and walking up to 5 parent directories.
//
// Returns the path of the first file found and whether one was found.
func FindEnvFile() (string, bool) {
	if _, err := os.Stat(".env"); err == nil {
		return ".env", true
	}
	if _, err := os.Stat(".env.example"); err == nil {
		return ".env.example", true
	}

	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		envExamplePath := filepath.Join(dir, ".env.example")

		if _, err := os.Stat(envPath); err == nil {
			return envPath, true
		}
		if _, err := os.Stat(envExamplePath); err == nil {
			return envExamplePath, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}
