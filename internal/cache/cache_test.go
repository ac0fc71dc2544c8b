package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *time.Time) {
	t.Helper()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManager(t.TempDir())
	m.now = func() time.Time { return now }
	return m, &now
}

func TestManager_SetGet(t *testing.T) {
	m, _ := newTestManager(t)

	require.NoError(t, m.Set("manifest:rss", `{"title":"RSS"}`, time.Hour))

	got, ok := m.Get("manifest:rss")
	assert.True(t, ok)
	assert.Equal(t, `{"title":"RSS"}`, got)

	_, ok = m.Get("manifest:other")
	assert.False(t, ok)
}

func TestManager_Expiry(t *testing.T) {
	m, now := newTestManager(t)

	require.NoError(t, m.Set("k", "v", time.Minute))
	*now = now.Add(2 * time.Minute)

	_, ok := m.Get("k")
	assert.False(t, ok)
}

func TestManager_ZeroTTLDisablesCaching(t *testing.T) {
	m, _ := newTestManager(t)

	require.NoError(t, m.Set("k", "v", 0))
	_, ok := m.Get("k")
	assert.False(t, ok)
}

func TestManager_DeleteAndPrune(t *testing.T) {
	m, now := newTestManager(t)

	require.NoError(t, m.Set("a", "1", time.Minute))
	require.NoError(t, m.Set("b", "2", time.Hour))
	require.NoError(t, m.Set("c", "3", time.Hour))
	require.NoError(t, m.Delete("c"))

	*now = now.Add(10 * time.Minute)
	removed, err := m.Prune()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, ok := m.Get("b")
	assert.True(t, ok)
	_, ok = m.Get("c")
	assert.False(t, ok)
}

func TestManager_CorruptedFileStartsFresh(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, os.WriteFile(filepath.Join(m.dir, cacheFileName), []byte("{not json"), 0600))

	_, ok := m.Get("k")
	assert.False(t, ok)
	require.NoError(t, m.Set("k", "v", time.Hour))

	got, ok := m.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}
