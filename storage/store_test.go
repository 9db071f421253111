package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, s.Keys())
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "save.yaml")
	s := NewMemStore()
	s.Set("hero_walk_speed", 72.0)
	s.Set("gate_open", true)
	require.NoError(t, s.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"gate_open", "hero_walk_speed"}, loaded.Keys())
	assert.True(t, Bool(loaded, "gate_open"))

	speed, ok := Float(loaded, "hero_walk_speed")
	require.True(t, ok)
	assert.Equal(t, 72.0, speed)
}

func TestHelpersTolerateMissingValues(t *testing.T) {
	s := NewMemStore()
	s.Set("name", "ivan")
	assert.False(t, Bool(s, "name"))
	assert.False(t, Bool(nil, "name"))
	_, ok := Float(s, "name")
	assert.False(t, ok)
	s.Set("count", 3)
	n, ok := Float(s, "count")
	assert.True(t, ok)
	assert.Equal(t, 3.0, n)
}
