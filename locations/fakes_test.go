// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package locations

import (
	"context"
	"sync"

	"github.com/jcodagnone/locview/geocoding"
	"github.com/jcodagnone/locview/spatial"
)

type fakeGeocoder struct {
	mu        sync.Mutex
	suggestFn func(ctx context.Context, query string, opts geocoding.SuggestOptions) ([]geocoding.Feature, error)
	reverseFn func(ctx context.Context, p spatial.Point) (*geocoding.Feature, error)
	probeErr  error
	queries   []string
	proximity []*spatial.Point
}

func (g *fakeGeocoder) Suggest(ctx context.Context, query string, opts geocoding.SuggestOptions) ([]geocoding.Feature, error) {
	g.mu.Lock()
	g.queries = append(g.queries, query)
	g.proximity = append(g.proximity, opts.Proximity)
	fn := g.suggestFn
	g.mu.Unlock()

	if fn == nil {
		return []geocoding.Feature{{ID: "f-" + query, PlaceName: query}}, nil
	}

	return fn(ctx, query, opts)
}

func (g *fakeGeocoder) Reverse(ctx context.Context, p spatial.Point) (*geocoding.Feature, error) {
	if g.reverseFn == nil {
		return &geocoding.Feature{ID: "r", PlaceName: "123 Main St", Point: p}, nil
	}

	return g.reverseFn(ctx, p)
}

func (g *fakeGeocoder) Probe(_ context.Context) error {
	return g.probeErr
}

func (g *fakeGeocoder) Queries() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return append([]string(nil), g.queries...)
}

type fakeWidget struct {
	configured []*spatial.Point
	ready      bool
	failWith   error
	syncs      [][]Record
	disposed   bool
}

func (w *fakeWidget) Configure(_ string, center *spatial.Point) error {
	if w.ready {
		return nil
	}

	w.configured = append(w.configured, center)
	if w.failWith != nil {
		return w.failWith
	}

	w.ready = true

	return nil
}

func (w *fakeWidget) Ready() bool { return w.ready }

func (w *fakeWidget) Sync(records []Record) { w.syncs = append(w.syncs, records) }

func (w *fakeWidget) Dispose() {
	w.disposed = true
	w.ready = false
}
