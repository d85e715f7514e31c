package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorageSetGet(t *testing.T) {
	s := NewMemoryStorage[string, int]()

	s.Set("a", 1)
	s.Set("b", 2)

	v, exists := s.Get("a")
	require.True(t, exists)
	assert.Equal(t, 1, v)

	_, exists = s.Get("missing")
	assert.False(t, exists)

	assert.Equal(t, 2, s.Count())
}

func TestMemoryStorageDirtyTracking(t *testing.T) {
	s := NewMemoryStorage[string, int]()

	s.Set("a", 1)
	s.Set("b", 2)

	dirty := s.GetDirty()
	assert.Len(t, dirty, 2)
	assert.Equal(t, 1, dirty["a"])

	s.ClearDirty([]string{"a"})
	dirty = s.GetDirty()
	assert.Len(t, dirty, 1)
	assert.Contains(t, dirty, "b")

	// Updating re-marks the object
	s.Set("a", 3)
	assert.Len(t, s.GetDirty(), 2)
}

func TestMemoryStorageDelete(t *testing.T) {
	s := NewMemoryStorage[string, int]()

	s.Set("a", 1)
	require.True(t, s.Delete("a"))
	assert.False(t, s.Delete("a"))

	_, exists := s.Get("a")
	assert.False(t, exists)
	assert.Empty(t, s.GetDirty())
}
