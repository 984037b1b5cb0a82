// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package mapview

import (
	"errors"
	"sync"

	"github.com/jcodagnone/locview/spatial"
)

// recorder is an Engine that counts what it is asked to do.
type recorder struct {
	mu       sync.Mutex
	cfg      EngineConfig
	controls []Control
	handlers map[Event][]Handler
	live     map[*recordedMarker]bool
	created  int
	removed  int
	moves    int
	flights  []spatial.Point
	zooms    []float64
	resizes  int
	disposed bool
}

type recordedMarker struct {
	r     *recorder
	style Style
	point spatial.Point
}

func (m *recordedMarker) SetPosition(p spatial.Point) {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()

	m.point = p
	m.r.moves++
}

func (m *recordedMarker) Remove() {
	m.r.mu.Lock()
	defer m.r.mu.Unlock()

	delete(m.r.live, m)
	m.r.removed++
}

func (r *recorder) AddControl(c Control) { r.controls = append(r.controls, c) }

func (r *recorder) On(ev Event, h Handler) { r.handlers[ev] = append(r.handlers[ev], h) }

func (r *recorder) NewMarker(style Style) Marker {
	r.mu.Lock()
	defer r.mu.Unlock()

	m := &recordedMarker{r: r, style: style}
	r.live[m] = true
	r.created++

	return m
}

func (r *recorder) FlyTo(center spatial.Point, zoom float64) {
	r.flights = append(r.flights, center)
	r.zooms = append(r.zooms, zoom)
}

func (r *recorder) Resize() { r.resizes++ }

func (r *recorder) Remove() { r.disposed = true }

func (r *recorder) fire(ev Event, d EventData) {
	for _, h := range r.handlers[ev] {
		h(d)
	}
}

func (r *recorder) livePoints() []spatial.Point {
	r.mu.Lock()
	defer r.mu.Unlock()

	var pts []spatial.Point
	for m := range r.live {
		pts = append(pts, m.point)
	}

	return pts
}

// recorderFactory hands out recorders and keeps them for inspection.
type recorderFactory struct {
	engines []*recorder
	fail    bool
}

func (f *recorderFactory) New(cfg EngineConfig) (Engine, error) {
	if f.fail {
		return nil, errors.New("webgl not supported")
	}

	r := &recorder{cfg: cfg, handlers: map[Event][]Handler{}, live: map[*recordedMarker]bool{}}
	f.engines = append(f.engines, r)

	return r, nil
}

func (f *recorderFactory) last() *recorder {
	if len(f.engines) == 0 {
		return nil
	}

	return f.engines[len(f.engines)-1]
}
