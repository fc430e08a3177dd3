package enhance

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/jonathan/prompt-enhancer/internal/types"
)

// Cache stores enhance results by key. Get returns nil, nil on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (*types.EnhanceResult, error)
	Put(ctx context.Context, key string, result *types.EnhanceResult) error
}

// TodoSink receives the todo items decomposed from a prompt.
type TodoSink interface {
	AddTodos(ctx context.Context, requestID string, todos []types.TodoItem) error
}

// cacheKeyInput is everything that changes the enhanced prompt.
type cacheKeyInput struct {
	Prompt          string                `json:"prompt"`
	Context         *types.RequestContext `json:"context,omitempty"`
	MaxTokens       int                   `json:"max_tokens"`
	IncludeMetadata bool                  `json:"include_metadata"`
	TablesVersion   string                `json:"tables_version"`
}

// CacheKey is the hex SHA-256 of the prompt, the request context, the output-shaping options and
// the heuristic tables version.
func CacheKey(req types.EnhanceRequest, tablesVersion string) string {
	// encoding/json sorts map keys, so framework docs hash deterministically
	data, _ := json.Marshal(cacheKeyInput{
		Prompt:          req.Prompt,
		Context:         req.Context,
		MaxTokens:       req.Options.MaxTokens,
		IncludeMetadata: req.Options.IncludeMetadata,
		TablesVersion:   tablesVersion,
	})
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// MemoryCache is an in-process Cache used when no database is configured.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]types.EnhanceResult
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]types.EnhanceResult)}
}

// Get returns a copy of the stored result, or nil.
func (c *MemoryCache) Get(_ context.Context, key string) (*types.EnhanceResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	return &result, nil
}

// Put stores a copy of result.
func (c *MemoryCache) Put(_ context.Context, key string, result *types.EnhanceResult) error {
	if result == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = *result
	return nil
}
