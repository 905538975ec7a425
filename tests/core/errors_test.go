package core_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Arnaud58/llamakeeper-go/pkg/core"
)

func TestMemoryErrorFormat(t *testing.T) {
	err := core.NewMemoryError("Retrieve", errors.New("connection refused"))
	assert.Equal(t, "llamakeeper: Retrieve: connection refused", err.Error())
}

func TestMemoryErrorUnwrap(t *testing.T) {
	inner := fmt.Errorf("%w: embedding service down", core.ErrEmbeddingFailed)
	err := core.NewMemoryError("Store", inner)

	assert.ErrorIs(t, err, core.ErrEmbeddingFailed)

	var memErr *core.MemoryError
	assert.True(t, errors.As(err, &memErr))
	assert.Equal(t, "Store", memErr.Op)
}

func TestNewMemoryErrorNil(t *testing.T) {
	assert.Nil(t, core.NewMemoryError("Store", nil))
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		core.ErrNotFound,
		core.ErrInvalidConfig,
		core.ErrEmbeddingFailed,
		core.ErrDimensionMismatch,
		core.ErrInvalidInput,
		core.ErrStorageOperation,
		core.ErrLLMOperation,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.NotErrorIs(t, a, b)
		}
	}
}
