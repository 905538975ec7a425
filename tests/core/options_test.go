package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arnaud58/llamakeeper-go/pkg/core"
)

func TestStoreOptionsApplied(t *testing.T) {
	store, _ := newTestStore(t, 10, 0.8)
	ctx := context.Background()

	memory, err := store.Store(ctx, "met Alice at the market", core.MemoryRelationship,
		core.WithImportance(0.6),
		core.WithContext(map[string]interface{}{"location": "market"}),
		core.WithAssociatedEntities([]string{"Alice"}),
	)
	require.NoError(t, err)

	assert.Equal(t, 0.6, memory.Importance)
	assert.Equal(t, "market", memory.Context["location"])
	assert.Equal(t, []string{"Alice"}, memory.AssociatedEntities)
}

func TestRetrieveTopKDefaults(t *testing.T) {
	store, _ := newTestStore(t, 20, 0.8)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		_, err := store.Store(ctx, "a memory with some content", core.MemoryDialogue)
		require.NoError(t, err)
	}

	// Default top-k is 5.
	results, err := store.Retrieve(ctx, "content")
	require.NoError(t, err)
	assert.Len(t, results, 5)

	// Non-positive values fall back to the default.
	results, err = store.Retrieve(ctx, "content", core.WithTopK(0))
	require.NoError(t, err)
	assert.Len(t, results, 5)

	results, err = store.Retrieve(ctx, "content", core.WithTopK(-3))
	require.NoError(t, err)
	assert.Len(t, results, 5)

	// Larger than the store is fine.
	results, err = store.Retrieve(ctx, "content", core.WithTopK(100))
	require.NoError(t, err)
	assert.Len(t, results, 8)
}
