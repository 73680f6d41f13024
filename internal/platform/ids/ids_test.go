package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_ProducesValidSortableIDs(t *testing.T) {
	a := New()
	b := New()

	assert.True(t, Valid(a))
	assert.True(t, Valid(b))
	assert.NotEqual(t, a, b)
	assert.Less(t, a, b, "ids minted in sequence must sort strictly increasing")
}

func TestValid_RejectsGarbage(t *testing.T) {
	assert.False(t, Valid("not-a-ulid"))
	assert.False(t, Valid(""))
}
