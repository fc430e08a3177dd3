package db

import (
	"context"
	"time"

	"github.com/jonathan/prompt-enhancer/internal/types"
)

// Store is the subset of DB the cache adapter needs.
type Store interface {
	GetEnhancement(ctx context.Context, key string, ttl time.Duration) (*Enhancement, error)
	SaveEnhancement(ctx context.Context, key, tablesVersion string, result *types.EnhanceResult) error
}

// EnhancementCache adapts a Store to the enhance service cache.
type EnhancementCache struct {
	store         Store
	ttl           time.Duration
	tablesVersion string
}

// NewEnhancementCache creates a cache whose entries live for ttl.
func NewEnhancementCache(store Store, ttl time.Duration, tablesVersion string) *EnhancementCache {
	return &EnhancementCache{store: store, ttl: ttl, tablesVersion: tablesVersion}
}

// Get returns the cached result or nil on a miss.
func (c *EnhancementCache) Get(ctx context.Context, key string) (*types.EnhanceResult, error) {
	e, err := c.store.GetEnhancement(ctx, key, c.ttl)
	if err != nil || e == nil {
		return nil, err
	}
	result := e.Result
	return &result, nil
}

// Put stores result under key.
func (c *EnhancementCache) Put(ctx context.Context, key string, result *types.EnhanceResult) error {
	if result == nil {
		return nil
	}
	return c.store.SaveEnhancement(ctx, key, c.tablesVersion, result)
}
