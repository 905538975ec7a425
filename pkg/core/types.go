// Package core provides the LlamaKeeper semantic memory store and the
// manager that owns one store per agent.
package core

import (
	"fmt"
	"time"
)

// Memory is a single recorded unit of agent experience.
//
// A memory carries its text content, a closed-set type, an importance
// score in [0,1], an opaque context map, and the embedding vector used
// for similarity search. Content, type, context, entities, and the
// embedding are fixed at creation; only Importance is mutable, through
// Store.UpdateImportance.
type Memory struct {
	// ID is the unique identifier of the memory, assigned at creation.
	ID int64 `json:"id"`

	// AgentID identifies the agent that owns this memory.
	AgentID string `json:"agent_id"`

	// Content is the text of the memory.
	Content string `json:"content"`

	// MemoryType classifies the memory. See the Memory* constants.
	MemoryType MemoryType `json:"memory_type"`

	// Importance is the memory's importance score in [0,1].
	// Out-of-range values are clamped on every write, never rejected.
	Importance float64 `json:"importance"`

	// Context is uninterpreted metadata attached at creation.
	// The store never inspects it.
	Context map[string]interface{} `json:"context,omitempty"`

	// AssociatedEntities lists free-form tags attached at creation.
	AssociatedEntities []string `json:"associated_entities,omitempty"`

	// Embedding is the vector representation of Content.
	Embedding []float64 `json:"embedding,omitempty"`

	// CreatedAt is when the memory was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the memory's importance was last changed.
	UpdatedAt time.Time `json:"updated_at"`

	// Score is the cosine similarity to the query, set on Retrieve
	// results only. Not persisted.
	Score float64 `json:"score,omitempty"`
}

// MemoryType classifies a memory into one of a closed set of kinds.
type MemoryType string

const (
	// MemoryPersonalExperience records something the agent did or lived through.
	MemoryPersonalExperience MemoryType = "personal_experience"

	// MemoryDialogue records an exchange with another agent or the user.
	MemoryDialogue MemoryType = "dialogue"

	// MemoryEmotionalState records how the agent felt at a point in time.
	MemoryEmotionalState MemoryType = "emotional_state"

	// MemoryGoal records an objective the agent is pursuing.
	MemoryGoal MemoryType = "goal"

	// MemoryLearnedKnowledge records a fact or insight the agent acquired.
	MemoryLearnedKnowledge MemoryType = "learned_knowledge"

	// MemoryRelationship records how the agent relates to someone.
	MemoryRelationship MemoryType = "relationship"
)

// memoryTypes is the full closed set, in declaration order.
var memoryTypes = []MemoryType{
	MemoryPersonalExperience,
	MemoryDialogue,
	MemoryEmotionalState,
	MemoryGoal,
	MemoryLearnedKnowledge,
	MemoryRelationship,
}

// MemoryTypes returns all valid memory types.
func MemoryTypes() []MemoryType {
	types := make([]MemoryType, len(memoryTypes))
	copy(types, memoryTypes)
	return types
}

// Valid reports whether t is a member of the closed memory type set.
func (t MemoryType) Valid() bool {
	for _, known := range memoryTypes {
		if t == known {
			return true
		}
	}
	return false
}

// String returns the wire representation of the memory type.
func (t MemoryType) String() string {
	return string(t)
}

// ParseMemoryType parses s into a MemoryType.
//
// Returns ErrInvalidInput (wrapped) if s is not in the closed set.
func ParseMemoryType(s string) (MemoryType, error) {
	t := MemoryType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown memory type %q", ErrInvalidInput, s)
	}
	return t, nil
}

// Importance histogram bucket boundaries used by Summarize.
const (
	// histogramLowBound separates the low and medium buckets.
	histogramLowBound = 0.3

	// histogramHighBound separates the medium and high buckets.
	histogramHighBound = 0.7
)

// ImportanceHistogram buckets memories by importance with fixed
// boundaries: low < 0.3, 0.3 <= medium < 0.7, high >= 0.7.
type ImportanceHistogram struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
	High   int `json:"high"`
}

// Summary is the aggregate report produced by Store.Summarize.
type Summary struct {
	// Total is the number of memories after the optional type filter.
	Total int `json:"total"`

	// LongTerm is the store-wide count of long-term memories.
	// It is never filtered, reflecting the protected set as a whole.
	LongTerm int `json:"long_term"`

	// ByType maps each memory type to its count (after the filter).
	ByType map[MemoryType]int `json:"by_type"`

	// Importance is the three-bucket importance histogram (after the filter).
	Importance ImportanceHistogram `json:"importance"`
}
