package sqlite

import (
	"database/sql"
	"encoding/json"

	"github.com/Arnaud58/llamakeeper-go/pkg/storage"
)

// encodeRecord serializes the JSON-typed columns of a record.
func encodeRecord(memory *storage.Memory) (embedding, context, entities string, err error) {
	embeddingJSON, err := json.Marshal(memory.Embedding)
	if err != nil {
		return "", "", "", err
	}
	contextJSON, err := json.Marshal(memory.Context)
	if err != nil {
		return "", "", "", err
	}
	entitiesJSON, err := json.Marshal(memory.AssociatedEntities)
	if err != nil {
		return "", "", "", err
	}
	return string(embeddingJSON), string(contextJSON), string(entitiesJSON), nil
}

// scanRecord scans one journal row into a storage.Memory.
func scanRecord(rows *sql.Rows) (*storage.Memory, error) {
	var memory storage.Memory
	var embeddingStr, contextStr, entitiesStr string

	err := rows.Scan(
		&memory.ID,
		&memory.AgentID,
		&memory.Content,
		&memory.MemoryType,
		&memory.Importance,
		&contextStr,
		&entitiesStr,
		&embeddingStr,
		&memory.CreatedAt,
		&memory.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(embeddingStr), &memory.Embedding); err != nil {
		return nil, err
	}
	if contextStr != "" && contextStr != "null" {
		if err := json.Unmarshal([]byte(contextStr), &memory.Context); err != nil {
			return nil, err
		}
	}
	if entitiesStr != "" && entitiesStr != "null" {
		if err := json.Unmarshal([]byte(entitiesStr), &memory.AssociatedEntities); err != nil {
			return nil, err
		}
	}
	return &memory, nil
}
