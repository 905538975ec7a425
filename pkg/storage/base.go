// Package storage defines the durable memory journal.
//
// The semantic memory store is authoritative in memory; a RecordStore
// mirrors its mutations write-behind so an agent's memories survive a
// restart. The journal is never consulted on the read path.
package storage

import (
	"context"
	"time"
)

// Memory is the journal's record of a memory.
//
// Defined here rather than in core to avoid a circular dependency; it
// mirrors the core.Memory structure with the type flattened to a
// string for persistence.
type Memory struct {
	// ID is the unique identifier of the memory.
	ID int64

	// AgentID identifies the agent that owns this memory.
	AgentID string

	// Content is the text of the memory.
	Content string

	// MemoryType is the memory's type as a string.
	MemoryType string

	// Importance is the memory's importance score in [0,1].
	Importance float64

	// Context is uninterpreted metadata attached at creation.
	Context map[string]interface{}

	// AssociatedEntities lists free-form tags attached at creation.
	AssociatedEntities []string

	// Embedding is the vector representation of Content.
	Embedding []float64

	// CreatedAt is when the memory was created.
	CreatedAt time.Time

	// UpdatedAt is when the memory's importance was last changed.
	UpdatedAt time.Time
}

// RecordStore persists memory records across restarts.
//
// All backends (SQLite, PostgreSQL, MySQL) implement this interface.
type RecordStore interface {
	// Insert persists a new memory record.
	Insert(ctx context.Context, memory *Memory) error

	// Update persists a memory's current importance and update time.
	// Content and embedding are immutable and not rewritten.
	Update(ctx context.Context, memory *Memory) error

	// Delete removes a memory record by ID.
	Delete(ctx context.Context, id int64) error

	// LoadAll returns every record belonging to an agent.
	LoadAll(ctx context.Context, agentID string) ([]*Memory, error)

	// Close closes the store and releases resources.
	Close() error
}
