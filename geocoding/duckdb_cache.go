// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DuckDBCache keeps geocoding answers in a DuckDB table.
type DuckDBCache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewDuckDBCache creates the cache table if needed. A zero ttl never expires.
func NewDuckDBCache(db *sql.DB, ttl time.Duration) (*DuckDBCache, error) {
	c := &DuckDBCache{db: db, ttl: ttl, now: time.Now}
	if err := c.CreateSchema(); err != nil {
		return nil, fmt.Errorf("creating geocode cache schema: %w", err)
	}

	return c, nil
}

// CreateSchema creates the geocode_cache table.
func (c *DuckDBCache) CreateSchema() error {
	_, err := c.db.Exec(`
		CREATE TABLE IF NOT EXISTS geocode_cache (
			key VARCHAR PRIMARY KEY,
			features VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL
		);
	`)

	return err
}

// Get implements Cache.
func (c *DuckDBCache) Get(ctx context.Context, key string) ([]Feature, bool, error) {
	var (
		raw       string
		createdAt time.Time
	)

	err := c.db.QueryRowContext(ctx,
		`SELECT features, created_at FROM geocode_cache WHERE key = ?`, key,
	).Scan(&raw, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("querying geocode cache: %w", err)
	}

	if c.ttl > 0 && c.now().Sub(createdAt) > c.ttl {
		return nil, false, nil
	}

	var features []Feature
	if err := json.Unmarshal([]byte(raw), &features); err != nil {
		return nil, false, fmt.Errorf("decoding cached features: %w", err)
	}

	return features, true, nil
}

// Put implements Cache.
func (c *DuckDBCache) Put(ctx context.Context, key string, features []Feature) error {
	if features == nil {
		features = []Feature{}
	}

	data, err := json.Marshal(features)
	if err != nil {
		return fmt.Errorf("encoding features: %w", err)
	}

	_, err = c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO geocode_cache (key, features, created_at) VALUES (?, ?, ?)`,
		key, string(data), c.now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storing geocode cache entry: %w", err)
	}

	return nil
}

// Stats returns the number of entries and their age span.
func (c *DuckDBCache) Stats(ctx context.Context) (CacheStats, error) {
	var (
		stats          CacheStats
		oldest, newest sql.NullTime
	)

	err := c.db.QueryRowContext(ctx,
		`SELECT count(*), min(created_at), max(created_at) FROM geocode_cache`,
	).Scan(&stats.Entries, &oldest, &newest)
	if err != nil {
		return CacheStats{}, fmt.Errorf("querying geocode cache stats: %w", err)
	}

	stats.Oldest = oldest.Time
	stats.Newest = newest.Time

	return stats, nil
}

// Purge deletes entries created before cutoff and returns how many went away.
func (c *DuckDBCache) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM geocode_cache WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("purging geocode cache: %w", err)
	}

	return res.RowsAffected()
}

// Close closes the underlying database.
func (c *DuckDBCache) Close() error {
	return c.db.Close()
}
