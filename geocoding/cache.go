// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jcodagnone/locview/spatial"
)

// Cache stores geocoding answers by key.
type Cache interface {
	// Get returns the cached features and whether the key was present.
	Get(ctx context.Context, key string) ([]Feature, bool, error)

	// Put stores features under key.
	Put(ctx context.Context, key string, features []Feature) error

	// Close releases the backend.
	Close() error
}

// CacheStats summarizes a cache's content.
type CacheStats struct {
	Entries int64
	Oldest  time.Time
	Newest  time.Time
}

// CachedGeocoder is a read-through cache in front of another Geocoder.
// Cache failures are logged and never fail a lookup.
type CachedGeocoder struct {
	next    Geocoder
	cache   Cache
	country string
}

// NewCachedGeocoder wraps next with cache. country is part of the suggestion
// keys so caches shared between differently configured servers don't mix.
func NewCachedGeocoder(next Geocoder, cache Cache, country string) *CachedGeocoder {
	return &CachedGeocoder{next: next, cache: cache, country: country}
}

func (c *CachedGeocoder) get(ctx context.Context, key string) ([]Feature, bool) {
	features, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		log.Printf("⚠️  geocode cache read %q: %v", key, err)

		return nil, false
	}

	return features, ok
}

func (c *CachedGeocoder) put(ctx context.Context, key string, features []Feature) {
	if err := c.cache.Put(ctx, key, features); err != nil {
		log.Printf("⚠️  geocode cache write %q: %v", key, err)
	}
}

// Suggest implements Geocoder.
func (c *CachedGeocoder) Suggest(ctx context.Context, query string, opts SuggestOptions) ([]Feature, error) {
	key, err := SuggestKey(query, c.country, opts)
	if err != nil {
		return nil, fmt.Errorf("building cache key: %w", err)
	}

	if features, ok := c.get(ctx, key); ok {
		return features, nil
	}

	features, err := c.next.Suggest(ctx, query, opts)
	if err != nil {
		return nil, err
	}

	c.put(ctx, key, features)

	return features, nil
}

// Reverse implements Geocoder. Misses are not cached.
func (c *CachedGeocoder) Reverse(ctx context.Context, p spatial.Point) (*Feature, error) {
	key, err := ReverseKey(p)
	if err != nil {
		return nil, fmt.Errorf("building cache key: %w", err)
	}

	if features, ok := c.get(ctx, key); ok && len(features) > 0 {
		return &features[0], nil
	}

	f, err := c.next.Reverse(ctx, p)
	if err != nil {
		return nil, err
	}

	c.put(ctx, key, []Feature{*f})

	return f, nil
}

// Probe implements Geocoder; it always reaches the provider.
func (c *CachedGeocoder) Probe(ctx context.Context) error {
	return c.next.Probe(ctx)
}
