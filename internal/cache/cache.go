package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const cacheFileName = "cache.json"

// Entry represents a single cached document with expiration
type Entry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Cache is the on-disk layout of the cache file
type Cache struct {
	Entries map[string]Entry `json:"entries"`
}

// Manager handles cache operations. It is safe for concurrent use within one process.
type Manager struct {
	dir string
	now func() time.Time
	mu  sync.Mutex
}

// NewManager creates a cache manager storing its file in dir
func NewManager(dir string) *Manager {
	return &Manager{dir: dir, now: time.Now}
}

func (m *Manager) cachePath() string {
	return filepath.Join(m.dir, cacheFileName)
}

func (m *Manager) load() (*Cache, error) {
	data, err := os.ReadFile(m.cachePath())
	if os.IsNotExist(err) {
		return &Cache{Entries: make(map[string]Entry)}, nil
	}
	if err != nil {
		return nil, err
	}

	var c Cache
	if err := json.Unmarshal(data, &c); err != nil {
		// Corrupted cache: start fresh
		return &Cache{Entries: make(map[string]Entry)}, nil
	}

	if c.Entries == nil {
		c.Entries = make(map[string]Entry)
	}

	return &c, nil
}

func (m *Manager) save(c *Cache) error {
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(m.cachePath(), data, 0600)
}

// Get retrieves a cached value if it exists and hasn't expired
func (m *Manager) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, err := m.load()
	if err != nil {
		return "", false
	}

	entry, exists := c.Entries[key]
	if !exists {
		return "", false
	}

	if m.now().After(entry.ExpiresAt) {
		delete(c.Entries, key)
		_ = m.save(c) // best effort
		return "", false
	}

	return entry.Value, true
}

// Set stores a value with a TTL duration. A non-positive ttl is a no-op.
func (m *Manager) Set(key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, err := m.load()
	if err != nil {
		return err
	}

	c.Entries[key] = Entry{
		Value:     value,
		ExpiresAt: m.now().Add(ttl),
	}

	return m.save(c)
}

// Delete removes a cached entry
func (m *Manager) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, err := m.load()
	if err != nil {
		return err
	}

	delete(c.Entries, key)
	return m.save(c)
}

// Prune drops every expired entry and returns how many were removed
func (m *Manager) Prune() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, err := m.load()
	if err != nil {
		return 0, err
	}

	now := m.now()
	removed := 0
	for key, entry := range c.Entries {
		if now.After(entry.ExpiresAt) {
			delete(c.Entries, key)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, m.save(c)
}
