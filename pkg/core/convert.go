package core

import (
	"github.com/Arnaud58/llamakeeper-go/pkg/storage"
)

// toStorageMemory converts a core.Memory to its storage record.
//
// Used internally to mirror mutations into the journal without a
// circular dependency between packages.
func toStorageMemory(m *Memory) *storage.Memory {
	return &storage.Memory{
		ID:                 m.ID,
		AgentID:            m.AgentID,
		Content:            m.Content,
		MemoryType:         string(m.MemoryType),
		Importance:         m.Importance,
		Context:            m.Context,
		AssociatedEntities: m.AssociatedEntities,
		Embedding:          m.Embedding,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// fromStorageMemory converts a storage record back to a core.Memory.
//
// Rejects records whose memory type is no longer in the closed set.
func fromStorageMemory(m *storage.Memory) (*Memory, error) {
	memoryType, err := ParseMemoryType(m.MemoryType)
	if err != nil {
		return nil, err
	}
	return &Memory{
		ID:                 m.ID,
		AgentID:            m.AgentID,
		Content:            m.Content,
		MemoryType:         memoryType,
		Importance:         clamp01(m.Importance),
		Context:            m.Context,
		AssociatedEntities: m.AssociatedEntities,
		Embedding:          m.Embedding,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}, nil
}

// cloneMemory returns a deep copy of a memory.
//
// The store hands out copies only; no caller ever aliases a live
// embedding or context map.
func cloneMemory(m *Memory) *Memory {
	clone := *m
	clone.Embedding = append([]float64(nil), m.Embedding...)
	clone.Context = copyContext(m.Context)
	clone.AssociatedEntities = copyEntities(m.AssociatedEntities)
	return &clone
}

// copyContext copies a context map. Values are opaque to the store and
// copied by reference.
func copyContext(context map[string]interface{}) map[string]interface{} {
	if context == nil {
		return nil
	}
	out := make(map[string]interface{}, len(context))
	for k, v := range context {
		out[k] = v
	}
	return out
}

// copyEntities copies an associated-entities slice.
func copyEntities(entities []string) []string {
	if entities == nil {
		return nil
	}
	return append([]string(nil), entities...)
}
