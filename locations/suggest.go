// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package locations

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jcodagnone/locview/geocoding"
	"github.com/jcodagnone/locview/spatial"
	"github.com/jcodagnone/locview/utils/debounce"
)

const (
	// DefaultDebounce is the quiet period after the last keystroke before a
	// suggestion lookup is issued.
	DefaultDebounce = 300 * time.Millisecond
	// DefaultLookupTimeout bounds a single suggestion lookup.
	DefaultLookupTimeout = 10 * time.Second
)

// SuggesterOptions configures a Suggester.
type SuggesterOptions struct {
	Debounce      time.Duration
	LookupTimeout time.Duration
	Limit         int
	// Proximity returns the point lookups are biased toward, if any.
	Proximity func() *spatial.Point
	// OnError is called when the current lookup fails.
	OnError func(error)
	// OnUpdate is called after the suggestion list changed.
	OnUpdate func([]geocoding.Feature)
}

// Suggester turns search-box edits into debounced suggestion lookups.
//
// Every edit bumps a generation counter. A lookup remembers the generation
// it was issued for and its answer is applied only if no edit happened in
// the meantime; superseded requests are left to finish and then ignored.
type Suggester struct {
	geocoder  geocoding.Geocoder
	debouncer *debounce.Debouncer
	opts      SuggesterOptions

	mu          sync.Mutex
	text        string
	generation  uint64
	suggestions []geocoding.Feature
	closed      bool
	inflight    sync.WaitGroup
}

// NewSuggester creates a suggester that queries g.
func NewSuggester(g geocoding.Geocoder, opts SuggesterOptions) *Suggester {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	if opts.LookupTimeout <= 0 {
		opts.LookupTimeout = DefaultLookupTimeout
	}

	if opts.Limit <= 0 {
		opts.Limit = geocoding.DefaultSuggestLimit
	}

	return &Suggester{
		geocoder:  g,
		debouncer: debounce.New(opts.Debounce),
		opts:      opts,
	}
}

// SetQuery records a new search text. Blank text clears the suggestions at
// once; anything else schedules a lookup after the quiet period.
func (s *Suggester) SetQuery(text string) {
	s.mu.Lock()
	s.text = text
	s.generation++
	gen := s.generation

	query := strings.TrimSpace(text)
	if query == "" {
		s.suggestions = nil
		s.mu.Unlock()
		s.debouncer.Cancel()
		s.updated(nil)

		return
	}
	s.mu.Unlock()

	s.debouncer.Debounce(func() {
		s.fetch(gen, query)
	})
}

func (s *Suggester) fetch(gen uint64, query string) {
	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()

		return
	}

	s.inflight.Add(1)
	s.mu.Unlock()

	defer s.inflight.Done()

	opts := geocoding.SuggestOptions{Limit: s.opts.Limit}
	if s.opts.Proximity != nil {
		opts.Proximity = s.opts.Proximity()
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.opts.LookupTimeout)
	defer cancel()

	features, err := s.geocoder.Suggest(ctx, query, opts)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()

		return
	}

	if err != nil {
		s.suggestions = nil
	} else {
		s.suggestions = features
	}
	s.mu.Unlock()

	if err != nil && s.opts.OnError != nil {
		s.opts.OnError(err)
	}

	s.updated(features)
}

func (s *Suggester) updated(features []geocoding.Feature) {
	if s.opts.OnUpdate != nil {
		s.opts.OnUpdate(features)
	}
}

// Query returns the last search text.
func (s *Suggester) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.text
}

// Suggestions returns a copy of the current suggestions.
func (s *Suggester) Suggestions() []geocoding.Feature {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.suggestions == nil {
		return []geocoding.Feature{}
	}

	return slices.Clone(s.suggestions)
}

// Find returns the current suggestion with id.
func (s *Suggester) Find(id string) (geocoding.Feature, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.suggestions, func(f geocoding.Feature) bool { return f.ID == id })
	if i < 0 {
		return geocoding.Feature{}, false
	}

	return s.suggestions[i], true
}

// Clear empties the search text and suggestions and invalidates pending
// lookups.
func (s *Suggester) Clear() {
	s.SetQuery("")
}

// Close cancels the pending lookup and waits for running ones to finish.
// No lookup is issued afterwards.
func (s *Suggester) Close() {
	s.Clear()

	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.inflight.Wait()
}
