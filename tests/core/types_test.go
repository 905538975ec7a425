package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Arnaud58/llamakeeper-go/pkg/core"
)

func TestMemoryTypeValid(t *testing.T) {
	for _, memoryType := range core.MemoryTypes() {
		assert.True(t, memoryType.Valid(), "expected %q to be valid", memoryType)
	}
	assert.False(t, core.MemoryType("").Valid())
	assert.False(t, core.MemoryType("daydream").Valid())
	assert.False(t, core.MemoryType("Dialogue").Valid())
}

func TestParseMemoryType(t *testing.T) {
	parsed, err := core.ParseMemoryType("personal_experience")
	assert.NoError(t, err)
	assert.Equal(t, core.MemoryPersonalExperience, parsed)

	_, err = core.ParseMemoryType("nonsense")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestMemoryTypeString(t *testing.T) {
	assert.Equal(t, "learned_knowledge", core.MemoryLearnedKnowledge.String())
	assert.Equal(t, "emotional_state", core.MemoryEmotionalState.String())
}

func TestMemoryTypesIsACopy(t *testing.T) {
	types := core.MemoryTypes()
	types[0] = core.MemoryType("clobbered")
	assert.True(t, core.MemoryTypes()[0].Valid())
}
