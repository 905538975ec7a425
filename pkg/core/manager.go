package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"

	"github.com/Arnaud58/llamakeeper-go/pkg/embedder"
	ollamaEmbedder "github.com/Arnaud58/llamakeeper-go/pkg/embedder/ollama"
	openaiEmbedder "github.com/Arnaud58/llamakeeper-go/pkg/embedder/openai"
	"github.com/Arnaud58/llamakeeper-go/pkg/llm"
	ollamaLLM "github.com/Arnaud58/llamakeeper-go/pkg/llm/ollama"
	openaiLLM "github.com/Arnaud58/llamakeeper-go/pkg/llm/openai"
	"github.com/Arnaud58/llamakeeper-go/pkg/storage"
	mysqlStore "github.com/Arnaud58/llamakeeper-go/pkg/storage/mysql"
	postgresStore "github.com/Arnaud58/llamakeeper-go/pkg/storage/postgres"
	sqliteStore "github.com/Arnaud58/llamakeeper-go/pkg/storage/sqlite"
)

// Manager owns one semantic memory store per agent.
//
// Stores are created lazily through ForAgent and share the manager's
// embedder, LLM, ID generator, and journal. Agents never share a
// store: each agent's memories belong to that agent alone.
//
// Example:
//
//	config, _ := core.LoadConfigFromEnv()
//	manager, _ := core.NewManager(config)
//	defer manager.Close()
//
//	store, _ := manager.ForAgent("elira")
//	store.Store(ctx, "The miller cheated me at dice.", core.MemoryPersonalExperience,
//	    core.WithImportance(0.7))
type Manager struct {
	// config is the validated configuration the manager was built from.
	config *Config

	// embedder converts text to vectors, shared by all stores.
	embedder embedder.Provider

	// llm generates reflections (nil when not configured).
	llm llm.Provider

	// journal is the durable record store (nil when not configured).
	journal storage.RecordStore

	// node generates memory IDs across all agents.
	node *snowflake.Node

	// mu guards stores.
	mu sync.Mutex

	// stores maps agent ID to its memory store.
	stores map[string]*Store
}

// NewManager creates a manager from the given configuration.
//
// Configuration errors are fatal: the embedder, memory bounds, and
// journal settings are validated up front and an unusable manager is
// never returned.
func NewManager(cfg *Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	embedderProvider, err := initEmbedder(cfg.Embedder)
	if err != nil {
		return nil, err
	}

	llmProvider, err := initLLM(cfg.LLM)
	if err != nil {
		return nil, err
	}

	journal, err := initJournal(cfg.Journal)
	if err != nil {
		return nil, err
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, NewMemoryError("NewManager", err)
	}

	return &Manager{
		config:   cfg,
		embedder: embedderProvider,
		llm:      llmProvider,
		journal:  journal,
		node:     node,
		stores:   make(map[string]*Store),
	}, nil
}

// ForAgent returns the memory store for the given agent, creating it
// on first use. When a journal is configured, a fresh store is
// rehydrated from the agent's journaled memories before it is shared.
func (m *Manager) ForAgent(agentID string) (*Store, error) {
	if agentID == "" {
		return nil, NewMemoryError("ForAgent", fmt.Errorf("%w: agent id is empty", ErrInvalidInput))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[agentID]; ok {
		return store, nil
	}

	store, err := newStore(agentID, m.embedder, m.journal, m.node, m.config.Memory)
	if err != nil {
		return nil, err
	}

	if m.journal != nil {
		records, err := m.journal.LoadAll(context.Background(), agentID)
		if err != nil {
			return nil, NewMemoryError("ForAgent", fmt.Errorf("%w: %v", ErrStorageOperation, err))
		}
		if err := store.load(context.Background(), records); err != nil {
			return nil, err
		}
	}

	m.stores[agentID] = store
	return store, nil
}

// Agents returns the IDs of all agents with an instantiated store.
func (m *Manager) Agents() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	agents := make([]string, 0, len(m.stores))
	for agentID := range m.stores {
		agents = append(agents, agentID)
	}
	return agents
}

// Close releases the manager's resources: the journal, the LLM, and
// the embedder. Returns the first error encountered.
func (m *Manager) Close() error {
	var errs []error

	if m.journal != nil {
		if err := m.journal.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if m.llm != nil {
		if err := m.llm.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if m.embedder != nil {
		if err := m.embedder.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// initEmbedder initializes the embedding provider.
func initEmbedder(cfg EmbedderConfig) (embedder.Provider, error) {
	switch cfg.Provider {
	case "ollama":
		return ollamaEmbedder.NewClient(&ollamaEmbedder.Config{
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			Dimensions: cfg.Dimensions,
		})
	case "openai":
		return openaiEmbedder.NewClient(&openaiEmbedder.Config{
			APIKey:     cfg.APIKey,
			Model:      cfg.Model,
			BaseURL:    cfg.BaseURL,
			Dimensions: cfg.Dimensions,
		})
	default:
		return nil, NewMemoryError("initEmbedder",
			fmt.Errorf("%w: unknown embedder provider %q", ErrInvalidConfig, cfg.Provider))
	}
}

// initLLM initializes the LLM provider. An empty provider name
// disables LLM-backed features.
func initLLM(cfg LLMConfig) (llm.Provider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil
	case "ollama":
		return ollamaLLM.NewClient(&ollamaLLM.Config{
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	case "openai":
		return openaiLLM.NewClient(&openaiLLM.Config{
			APIKey:  cfg.APIKey,
			Model:   cfg.Model,
			BaseURL: cfg.BaseURL,
		})
	default:
		return nil, NewMemoryError("initLLM",
			fmt.Errorf("%w: unknown llm provider %q", ErrInvalidConfig, cfg.Provider))
	}
}

// initJournal initializes the journal backend. A nil config disables
// journaling.
func initJournal(cfg *JournalConfig) (storage.RecordStore, error) {
	if cfg == nil {
		return nil, nil
	}
	switch cfg.Provider {
	case "sqlite":
		return sqliteStore.NewClient(&sqliteStore.Config{
			DBPath:    stringSetting(cfg.Config, "db_path"),
			TableName: stringSetting(cfg.Config, "table_name"),
		})
	case "postgres":
		return postgresStore.NewClient(&postgresStore.Config{
			Host:      stringSetting(cfg.Config, "host"),
			Port:      intSetting(cfg.Config, "port"),
			User:      stringSetting(cfg.Config, "user"),
			Password:  stringSetting(cfg.Config, "password"),
			DBName:    stringSetting(cfg.Config, "db_name"),
			TableName: stringSetting(cfg.Config, "table_name"),
			SSLMode:   stringSetting(cfg.Config, "ssl_mode"),
		})
	case "mysql":
		return mysqlStore.NewClient(&mysqlStore.Config{
			Host:      stringSetting(cfg.Config, "host"),
			Port:      intSetting(cfg.Config, "port"),
			User:      stringSetting(cfg.Config, "user"),
			Password:  stringSetting(cfg.Config, "password"),
			DBName:    stringSetting(cfg.Config, "db_name"),
			TableName: stringSetting(cfg.Config, "table_name"),
		})
	default:
		return nil, NewMemoryError("initJournal",
			fmt.Errorf("%w: unknown journal provider %q", ErrInvalidConfig, cfg.Provider))
	}
}

// stringSetting reads a string from a provider config map.
func stringSetting(settings map[string]interface{}, key string) string {
	if v, ok := settings[key].(string); ok {
		return v
	}
	return ""
}

// intSetting reads an int from a provider config map. JSON-decoded
// configs carry numbers as float64.
func intSetting(settings map[string]interface{}, key string) int {
	switch v := settings[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}
