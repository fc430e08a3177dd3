package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/prompt-enhancer/internal/types"
)

// Enhancement is a cached enhance result row.
type Enhancement struct {
	CacheKey      string
	TablesVersion string
	Level         types.ComplexityLevel
	Result        types.EnhanceResult
	CreatedAt     time.Time
}

// Stale reports whether the row is older than ttl at now. A non-positive ttl never expires.
func (e *Enhancement) Stale(ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(e.CreatedAt) > ttl
}

// GetEnhancement returns the cached result for key, or nil when it is missing or older than ttl.
func (db *DB) GetEnhancement(ctx context.Context, key string, ttl time.Duration) (*Enhancement, error) {
	var (
		e   Enhancement
		raw []byte
	)
	err := db.pool.QueryRow(ctx,
		`SELECT cache_key, tables_version, level, result, created_at
		 FROM prompt_enhancements WHERE cache_key = $1`,
		key,
	).Scan(&e.CacheKey, &e.TablesVersion, &e.Level, &raw, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get enhancement: %w", err)
	}
	if e.Stale(ttl, time.Now()) {
		return nil, nil
	}
	if err := json.Unmarshal(raw, &e.Result); err != nil {
		return nil, fmt.Errorf("failed to decode enhancement %s: %w", key, err)
	}
	return &e, nil
}

// SaveEnhancement upserts a result under key.
func (db *DB) SaveEnhancement(ctx context.Context, key, tablesVersion string, result *types.EnhanceResult) error {
	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal enhancement: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO prompt_enhancements (cache_key, tables_version, level, result)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (cache_key) DO UPDATE SET tables_version = $2, level = $3, result = $4, created_at = NOW()`,
		key, tablesVersion, string(result.ContextUsed.Level), jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save enhancement %s: %w", key, err)
	}
	return nil
}

// DeleteExpired removes rows older than ttl and returns how many were removed.
func (db *DB) DeleteExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM prompt_enhancements WHERE created_at < $1`,
		time.Now().Add(-ttl),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired enhancements: %w", err)
	}
	return tag.RowsAffected(), nil
}
