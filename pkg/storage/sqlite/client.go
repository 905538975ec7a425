// Package sqlite provides the SQLite journal backend.
//
// SQLite suits local single-process deployments. Embeddings, context
// maps, and entity lists are stored as JSON in TEXT columns.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Arnaud58/llamakeeper-go/pkg/storage"
)

// Client implements storage.RecordStore using SQLite.
type Client struct {
	db        *sql.DB
	tableName string
}

// Config contains configuration for the SQLite journal.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// TableName is the table holding memory records. Default: memories.
	TableName string
}

// NewClient creates a new SQLite journal client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("NewSQLiteClient: db path is required")
	}

	tableName := cfg.TableName
	if tableName == "" {
		tableName = "memories"
	}

	dbDir := filepath.Dir(cfg.DBPath)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("NewSQLiteClient: failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_foreign_keys=1&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("NewSQLiteClient: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewSQLiteClient: %w", err)
	}

	client := &Client{
		db:        db,
		tableName: tableName,
	}
	if err := client.initTables(context.Background()); err != nil {
		return nil, err
	}
	return client, nil
}

// initTables initializes the journal table.
func (c *Client) initTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY,
			agent_id TEXT NOT NULL,
			content TEXT NOT NULL,
			memory_type TEXT NOT NULL,
			importance REAL NOT NULL DEFAULT 0.5,
			context TEXT,
			associated_entities TEXT,
			embedding TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`, c.tableName)

	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	indexQuery := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS idx_%s_agent ON %s(agent_id)
	`, c.tableName, c.tableName)
	if _, err := c.db.ExecContext(ctx, indexQuery); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}
	return nil
}

// Insert persists a new memory record.
func (c *Client) Insert(ctx context.Context, memory *storage.Memory) error {
	query := fmt.Sprintf(`
		INSERT INTO %s
		(id, agent_id, content, memory_type, importance, context, associated_entities, embedding, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.tableName)

	embeddingJSON, contextJSON, entitiesJSON, err := encodeRecord(memory)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}

	_, err = c.db.ExecContext(ctx, query,
		memory.ID,
		memory.AgentID,
		memory.Content,
		memory.MemoryType,
		memory.Importance,
		contextJSON,
		entitiesJSON,
		embeddingJSON,
		memory.CreatedAt,
		memory.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	return nil
}

// Update persists a memory's current importance and update time.
func (c *Client) Update(ctx context.Context, memory *storage.Memory) error {
	query := fmt.Sprintf(`
		UPDATE %s SET importance = ?, updated_at = ? WHERE id = ?
	`, c.tableName)

	result, err := c.db.ExecContext(ctx, query, memory.Importance, memory.UpdatedAt, memory.ID)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("Update: record %d not found", memory.ID)
	}
	return nil
}

// Delete removes a memory record by ID.
func (c *Client) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = ?", c.tableName)
	if _, err := c.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

// LoadAll returns every record belonging to an agent, oldest first.
func (c *Client) LoadAll(ctx context.Context, agentID string) ([]*storage.Memory, error) {
	query := fmt.Sprintf(`
		SELECT id, agent_id, content, memory_type, importance, context, associated_entities, embedding, created_at, updated_at
		FROM %s
		WHERE agent_id = ?
		ORDER BY created_at ASC
	`, c.tableName)

	rows, err := c.db.QueryContext(ctx, query, agentID)
	if err != nil {
		return nil, fmt.Errorf("LoadAll: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var memories []*storage.Memory
	for rows.Next() {
		memory, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("LoadAll: %w", err)
		}
		memories = append(memories, memory)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LoadAll: %w", err)
	}
	return memories, nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
