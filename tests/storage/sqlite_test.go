package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arnaud58/llamakeeper-go/pkg/storage"
	"github.com/Arnaud58/llamakeeper-go/pkg/storage/sqlite"
)

func newTestClient(t *testing.T) *sqlite.Client {
	t.Helper()
	client, err := sqlite.NewClient(&sqlite.Config{
		DBPath: filepath.Join(t.TempDir(), "journal.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func sampleRecord(id int64, agentID string) *storage.Memory {
	now := time.Now().UTC().Truncate(time.Second)
	return &storage.Memory{
		ID:                 id,
		AgentID:            agentID,
		Content:            "found a silver coin in the river",
		MemoryType:         "personal_experience",
		Importance:         0.6,
		Context:            map[string]interface{}{"location": "river"},
		AssociatedEntities: []string{"coin", "river"},
		Embedding:          []float64{0.1, 0.2, 0.3},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestSQLiteRequiresPath(t *testing.T) {
	_, err := sqlite.NewClient(&sqlite.Config{})
	assert.Error(t, err)
}

func TestSQLiteInsertAndLoadAll(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	record := sampleRecord(1, "elira")
	require.NoError(t, client.Insert(ctx, record))
	require.NoError(t, client.Insert(ctx, sampleRecord(2, "brom")))

	records, err := client.LoadAll(ctx, "elira")
	require.NoError(t, err)
	require.Len(t, records, 1)

	loaded := records[0]
	assert.Equal(t, record.ID, loaded.ID)
	assert.Equal(t, record.AgentID, loaded.AgentID)
	assert.Equal(t, record.Content, loaded.Content)
	assert.Equal(t, record.MemoryType, loaded.MemoryType)
	assert.Equal(t, record.Importance, loaded.Importance)
	assert.Equal(t, "river", loaded.Context["location"])
	assert.Equal(t, record.AssociatedEntities, loaded.AssociatedEntities)
	assert.Equal(t, record.Embedding, loaded.Embedding)
}

func TestSQLiteUpdate(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	record := sampleRecord(1, "elira")
	require.NoError(t, client.Insert(ctx, record))

	record.Importance = 0.95
	record.UpdatedAt = record.UpdatedAt.Add(time.Hour)
	require.NoError(t, client.Update(ctx, record))

	records, err := client.LoadAll(ctx, "elira")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 0.95, records[0].Importance)
	// Content is immutable in place; the update touches importance only.
	assert.Equal(t, record.Content, records[0].Content)
}

func TestSQLiteDelete(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.Insert(ctx, sampleRecord(1, "elira")))
	require.NoError(t, client.Insert(ctx, sampleRecord(2, "elira")))

	require.NoError(t, client.Delete(ctx, 1))

	records, err := client.LoadAll(ctx, "elira")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(2), records[0].ID)

	// Deleting a missing ID is a no-op.
	assert.NoError(t, client.Delete(ctx, 424242))
}

func TestSQLiteLoadAllEmpty(t *testing.T) {
	client := newTestClient(t)

	records, err := client.LoadAll(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, records)
}
