// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package locations

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jcodagnone/locview/geocoding"
	"github.com/jcodagnone/locview/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting")

		var zero T

		return zero
	}
}

func TestSuggesterDebouncesBursts(t *testing.T) {
	g := &fakeGeocoder{}
	updates := make(chan []geocoding.Feature, 4)

	s := NewSuggester(g, SuggesterOptions{
		Debounce: 50 * time.Millisecond,
		OnUpdate: func(f []geocoding.Feature) { updates <- f },
	})
	defer s.Close()

	s.SetQuery("m")
	s.SetQuery("ma")
	s.SetQuery("main")

	got := waitFor(t, updates)
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, []string{"main"}, g.Queries())
	assert.Equal(t, []geocoding.Feature{{ID: "f-main", PlaceName: "main"}}, got)
	assert.Equal(t, got, s.Suggestions())
	assert.Equal(t, "main", s.Query())
}

func TestSuggesterIgnoresStaleResponses(t *testing.T) {
	started := make(chan string, 2)
	release := make(chan struct{})
	updates := make(chan []geocoding.Feature, 2)

	g := &fakeGeocoder{
		suggestFn: func(_ context.Context, query string, _ geocoding.SuggestOptions) ([]geocoding.Feature, error) {
			started <- query
			if query == "slow" {
				<-release
			}

			return []geocoding.Feature{{ID: query, PlaceName: query}}, nil
		},
	}

	s := NewSuggester(g, SuggesterOptions{
		Debounce: 10 * time.Millisecond,
		OnUpdate: func(f []geocoding.Feature) { updates <- f },
	})
	defer s.Close()

	s.SetQuery("slow")
	assert.Equal(t, "slow", waitFor(t, started))

	s.SetQuery("fast")
	assert.Equal(t, "fast", waitFor(t, started))
	waitFor(t, updates)

	close(release)
	s.inflight.Wait()

	assert.Equal(t, []geocoding.Feature{{ID: "fast", PlaceName: "fast"}}, s.Suggestions())
	assert.Empty(t, updates, "stale answer must not be applied")
}

func TestSuggesterFailureClearsSuggestions(t *testing.T) {
	var fail atomic.Bool
	errs := make(chan error, 1)
	updates := make(chan []geocoding.Feature, 2)

	g := &fakeGeocoder{
		suggestFn: func(_ context.Context, query string, _ geocoding.SuggestOptions) ([]geocoding.Feature, error) {
			if fail.Load() {
				return nil, errors.New("boom")
			}

			return []geocoding.Feature{{ID: query}}, nil
		},
	}

	s := NewSuggester(g, SuggesterOptions{
		Debounce: 10 * time.Millisecond,
		OnError:  func(err error) { errs <- err },
		OnUpdate: func(f []geocoding.Feature) { updates <- f },
	})
	defer s.Close()

	s.SetQuery("ok")
	waitFor(t, updates)
	require.Len(t, s.Suggestions(), 1)

	fail.Store(true)

	s.SetQuery("broken")
	require.EqualError(t, waitFor(t, errs), "boom")
	waitFor(t, updates)
	assert.Empty(t, s.Suggestions())
}

func TestSuggesterBlankQueryClearsWithoutFetching(t *testing.T) {
	g := &fakeGeocoder{}
	s := NewSuggester(g, SuggesterOptions{Debounce: 10 * time.Millisecond})
	defer s.Close()

	s.SetQuery("   ")
	time.Sleep(40 * time.Millisecond)

	assert.Empty(t, g.Queries())
	assert.Empty(t, s.Suggestions())
}

func TestSuggesterUsesProximity(t *testing.T) {
	g := &fakeGeocoder{}
	updates := make(chan []geocoding.Feature, 1)
	here := &spatial.Point{Lat: -34.9, Lng: -56.16}

	s := NewSuggester(g, SuggesterOptions{
		Debounce:  10 * time.Millisecond,
		Proximity: func() *spatial.Point { return here },
		OnUpdate:  func(f []geocoding.Feature) { updates <- f },
	})
	defer s.Close()

	s.SetQuery("plaza")
	waitFor(t, updates)

	g.mu.Lock()
	defer g.mu.Unlock()
	require.Len(t, g.proximity, 1)
	assert.Equal(t, here, g.proximity[0])
}

func TestSuggesterFind(t *testing.T) {
	g := &fakeGeocoder{}
	updates := make(chan []geocoding.Feature, 1)
	s := NewSuggester(g, SuggesterOptions{
		Debounce: 10 * time.Millisecond,
		OnUpdate: func(f []geocoding.Feature) { updates <- f },
	})
	defer s.Close()

	s.SetQuery("park")
	waitFor(t, updates)

	f, ok := s.Find("f-park")
	assert.True(t, ok)
	assert.Equal(t, "park", f.PlaceName)

	_, ok = s.Find("nope")
	assert.False(t, ok)
}
