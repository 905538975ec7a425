// Package postgres provides the PostgreSQL journal backend.
//
// Context maps and entity lists use JSONB columns; embeddings are
// stored as JSONB arrays, since the journal only replays them and
// never searches by vector.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/Arnaud58/llamakeeper-go/pkg/storage"
)

// Client implements storage.RecordStore using PostgreSQL.
type Client struct {
	db        *sql.DB
	tableName string
}

// Config contains configuration for the PostgreSQL journal.
type Config struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	TableName string
	SSLMode   string
}

// NewClient creates a new PostgreSQL journal client.
func NewClient(cfg *Config) (*Client, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	tableName := cfg.TableName
	if tableName == "" {
		tableName = "memories"
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, sslMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewPostgresClient: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewPostgresClient: %w", err)
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
			content TEXT NOT NULL,
			memory_type VARCHAR(64) NOT NULL,
			importance DOUBLE PRECISION NOT NULL DEFAULT 0.5,
			context JSONB,
			associated_entities JSONB,
			embedding JSONB NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`, c.tableName)

	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("initTables: create table: %w", err)
	}

	indexQuery := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS idx_%s_agent ON %s(agent_id)
	`, c.tableName, c.tableName)
	if _, err := c.db.ExecContext(ctx, indexQuery); err != nil {
		return fmt.Errorf("initTables: create index: %w", err)
	}
	return nil
}

// Insert persists a new memory record.
func (c *Client) Insert(ctx context.Context, memory *storage.Memory) error {
	query := fmt.Sprintf(`
		INSERT INTO %s
		(id, agent_id, content, memory_type, importance, context, associated_entities, embedding, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
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
		UPDATE %s SET importance = $1, updated_at = $2 WHERE id = $3
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
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", c.tableName)
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
		WHERE agent_id = $1
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
