// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"testing"
	"time"

	"github.com/jcodagnone/locview/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisCacheRejectsBadURL(t *testing.T) {
	_, err := NewRedisCache("http://localhost:6379", time.Hour)
	require.Error(t, err)
}

func TestRedisCacheUnreachableDoesNotFailLookups(t *testing.T) {
	c, err := NewRedisCache("redis://127.0.0.1:1/0?dial_timeout=100ms&max_retries=-1", time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	require.Error(t, c.Ping(ctx))

	next := &countingGeocoder{}
	g := NewCachedGeocoder(next, c, "uy")

	f, err := g.Reverse(ctx, spatial.Point{Lat: -34.9, Lng: -56.16})
	require.NoError(t, err)
	assert.Equal(t, "123 Main St", f.PlaceName)
	assert.Equal(t, 1, next.reverseCalls)
}
