// Package core holds the repository ports and small domain services shared by
// the service layer.
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/noe-create/medidhub-cpv-sub001/internal/domain/model"
)

// CacheRepository defines the interface for caching operations.
// The core defines it and the data layer provides implementations.
type CacheRepository interface {
	// Set stores a value with the given TTL. A zero TTL never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns nil when the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete reports whether the key existed.
	Delete(ctx context.Context, key string) (bool, error)

	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}

const appearanceKey = "settings:appearance"

// AppearanceCache stores the rendered appearance settings between requests.
type AppearanceCache struct {
	cache CacheRepository
	ttl   time.Duration
}

// NewAppearanceCache creates a cache; ttl defaults to 10 minutes.
func NewAppearanceCache(cache CacheRepository, ttl time.Duration) *AppearanceCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &AppearanceCache{cache: cache, ttl: ttl}
}

// Get returns the cached settings and whether there was a hit.
// An undecodable entry counts as a miss.
func (c *AppearanceCache) Get(ctx context.Context) (model.AppearanceSettings, bool, error) {
	var out model.AppearanceSettings
	if c == nil || c.cache == nil {
		return out, false, nil
	}
	raw, err := c.cache.Get(ctx, appearanceKey)
	if err != nil {
		return out, false, err
	}
	if len(raw) == 0 {
		return out, false, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return model.AppearanceSettings{}, false, nil
	}
	return out, true, nil
}

// Put stores settings.
func (c *AppearanceCache) Put(ctx context.Context, settings model.AppearanceSettings) error {
	if c == nil || c.cache == nil {
		return nil
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal appearance: %w", err)
	}
	return c.cache.Set(ctx, appearanceKey, raw, c.ttl)
}

// Invalidate drops the cached entry; call after a successful write.
func (c *AppearanceCache) Invalidate(ctx context.Context) error {
	if c == nil || c.cache == nil {
		return nil
	}
	_, err := c.cache.Delete(ctx, appearanceKey)
	return err
}
