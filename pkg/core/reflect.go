package core

import (
	"context"
	"fmt"

	"github.com/Arnaud58/llamakeeper-go/pkg/llm"
)

const (
	// reflectionTopK is the number of memories gathered for a reflection.
	reflectionTopK = 5

	// reflectionImportance is the initial importance of a reflection
	// memory. High enough to matter, below the default long-term
	// threshold so reflections still compete for space.
	reflectionImportance = 0.7
)

// Reflect distills an agent's memories about a topic into a single new
// learned-knowledge memory.
//
// The agent's most relevant memories are retrieved, handed to the LLM
// as a prompt, and the generated insight is stored back with elevated
// importance and a context noting its origin. The returned Memory is
// the stored reflection.
//
// Fails with ErrLLMOperation when no LLM is configured, and with
// ErrInvalidInput when the agent has no memories matching the topic.
func (m *Manager) Reflect(ctx context.Context, agentID, topic string) (*Memory, error) {
	if m.llm == nil {
		return nil, NewMemoryError("Reflect", fmt.Errorf("%w: no llm configured", ErrLLMOperation))
	}

	store, err := m.ForAgent(agentID)
	if err != nil {
		return nil, err
	}

	memories, err := store.Retrieve(ctx, topic, WithTopK(reflectionTopK))
	if err != nil {
		return nil, err
	}
	if len(memories) == 0 {
		return nil, NewMemoryError("Reflect", fmt.Errorf("%w: no memories match topic %q", ErrInvalidInput, topic))
	}

	prompt := buildReflectionPrompt(topic, memories)
	insight, err := m.llm.Generate(ctx, prompt,
		llm.WithTemperature(0.7),
		llm.WithMaxTokens(500),
	)
	if err != nil {
		return nil, NewMemoryError("Reflect", fmt.Errorf("%w: %v", ErrLLMOperation, err))
	}
	if insight == "" {
		return nil, NewMemoryError("Reflect", fmt.Errorf("%w: empty response", ErrLLMOperation))
	}

	return store.Store(ctx, insight, MemoryLearnedKnowledge,
		WithImportance(reflectionImportance),
		WithContext(map[string]interface{}{
			"source": "reflection",
			"topic":  topic,
		}),
	)
}
