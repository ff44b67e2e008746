package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	assert.Equal(t, 66.7, Round(66.6666, 1))
	assert.Equal(t, 0.33, Round(0.333, 2))
	assert.Equal(t, 10.0, Round(10, 1))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 50.0, Percent(1, 2, 0))
	assert.Equal(t, 100.0, Percent(0, 0, 100))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(0, 1, 100))
	assert.Equal(t, 100, Clamp(500, 1, 100))
	assert.Equal(t, 20, Clamp(20, 1, 100))
}

func TestNewULID(t *testing.T) {
	id := NewULID()
	assert.Len(t, id, 26)
	assert.True(t, IsULID(id))
	assert.False(t, IsULID("not-a-ulid"))
}
