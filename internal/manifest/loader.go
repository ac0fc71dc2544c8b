package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"launcher/internal/cache"
)

const cacheKeyPrefix = "manifest:"

// Source produces raw manifest bytes, usually by running an extension with no arguments.
type Source interface {
	// CacheKey identifies the source; it must change whenever the manifest may have changed.
	CacheKey() string
	ReadManifest(ctx context.Context) ([]byte, error)
}

// Loader handles loading and caching of extension manifests
type Loader struct {
	cache  *cache.Manager
	ttl    time.Duration
	logger *slog.Logger
}

// NewLoader creates a new manifest loader. A nil cache or zero ttl disables caching.
func NewLoader(cacheManager *cache.Manager, ttl time.Duration, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		cache:  cacheManager,
		ttl:    ttl,
		logger: logger,
	}
}

// Load returns the manifest for src, serving it from cache while it is fresh
func (l *Loader) Load(ctx context.Context, src Source) (*Manifest, error) {
	key := cacheKeyPrefix + src.CacheKey()

	if l.cache != nil {
		if cached, ok := l.cache.Get(key); ok {
			m, err := Decode([]byte(cached))
			if err == nil {
				return m, nil
			}
			// A stale entry from an older host version; refetch.
			l.logger.Warn("discarding invalid cached manifest", "key", key, "error", err)
			_ = l.cache.Delete(key)
		}
	}

	return l.Refresh(ctx, src)
}

// Refresh fetches the manifest from src, bypassing the cache
func (l *Loader) Refresh(ctx context.Context, src Source) (*Manifest, error) {
	key := cacheKeyPrefix + src.CacheKey()

	data, err := src.ReadManifest(ctx)
	if err != nil {
		return nil, err
	}

	m, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}

	if l.cache != nil {
		if err := l.cache.Set(key, string(data), l.ttl); err != nil {
			l.logger.Warn("failed to cache manifest", "key", key, "error", err)
		}
	}

	return m, nil
}

// Forget drops the cached manifest for src
func (l *Loader) Forget(src Source) error {
	if l.cache == nil {
		return nil
	}
	return l.cache.Delete(cacheKeyPrefix + src.CacheKey())
}
