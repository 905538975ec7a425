// Package mysql provides the MySQL journal backend.
//
// Context maps and entity lists use JSON columns; embeddings are
// stored as JSON arrays, since the journal only replays them and never
// searches by vector.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/Arnaud58/llamakeeper-go/pkg/storage"
)

// Client implements storage.RecordStore using MySQL.
type Client struct {
	db        *sql.DB
	tableName string
}

// Config contains configuration for the MySQL journal.
type Config struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	TableName string
}

// NewClient creates a new MySQL journal client.
func NewClient(cfg *Config) (*Client, error) {
	tableName := cfg.TableName
	if tableName == "" {
		tableName = "memories"
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
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
			id BIGINT PRIMARY KEY,
			agent_id VARCHAR(255) NOT NULL,
			content LONGTEXT NOT NULL,
			memory_type VARCHAR(64) NOT NULL,
			importance DOUBLE NOT NULL DEFAULT 0.5,
			context JSON,
			associated_entities JSON,
			embedding JSON NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_agent (agent_id)
		)
	`, c.tableName)

	if _, err := c.db.ExecContext(ctx, query); err != nil {
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

	embeddingJSON, err := json.Marshal(memory.Embedding)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	contextJSON, err := json.Marshal(memory.Context)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}
	entitiesJSON, err := json.Marshal(memory.AssociatedEntities)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}

	_, err = c.db.ExecContext(ctx, query,
		memory.ID,
		memory.AgentID,
		memory.Content,
		memory.MemoryType,
		memory.Importance,
		string(contextJSON),
		string(entitiesJSON),
		string(embeddingJSON),
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
		var memory storage.Memory
		var embeddingStr, contextStr, entitiesStr []byte

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
			return nil, fmt.Errorf("LoadAll: %w", err)
		}

		if err := json.Unmarshal(embeddingStr, &memory.Embedding); err != nil {
			return nil, fmt.Errorf("LoadAll: parse embedding: %w", err)
		}
		if len(contextStr) > 0 {
			if err := json.Unmarshal(contextStr, &memory.Context); err != nil {
				return nil, fmt.Errorf("LoadAll: parse context: %w", err)
			}
		}
		if len(entitiesStr) > 0 {
			if err := json.Unmarshal(entitiesStr, &memory.AssociatedEntities); err != nil {
				return nil, fmt.Errorf("LoadAll: parse entities: %w", err)
			}
		}
		memories = append(memories, &memory)
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
