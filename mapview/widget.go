// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package mapview

import (
	"fmt"
	"log"
	"maps"
	"slices"
	"sync"

	"github.com/jcodagnone/locview/locations"
	"github.com/jcodagnone/locview/spatial"
)

const (
	// FollowZoom is the zoom the camera flies to when following the device.
	FollowZoom = 14
	// DefaultZoom is the zoom a new map opens at.
	DefaultZoom = 12
	// DefaultStyle is the base map style.
	DefaultStyle = "mapbox://styles/mapbox/streets-v12"
	// DefaultContainer is the DOM element the map is mounted on.
	DefaultContainer = "map"
)

// DefaultCenter is used when no position is known (Montevideo).
var DefaultCenter = spatial.Point{Lat: -34.9011, Lng: -56.1645}

// WidgetOptions configures a Widget.
type WidgetOptions struct {
	Factory       EngineFactory
	Container     string
	Style         string
	DefaultCenter *spatial.Point
	Zoom          float64
	// OnClick receives every map click.
	OnClick func(p spatial.Point)
	// OnError receives engine errors after they are logged.
	OnError func(err error)
}

// Widget owns a map engine and one marker per location record.
type Widget struct {
	opts WidgetOptions

	mu      sync.Mutex
	engine  Engine
	markers map[int64]Marker
	placed  map[int64]Placement
	records []locations.Record
}

var _ locations.MapWidget = (*Widget)(nil)

// NewWidget returns a widget without an engine; Configure creates it.
func NewWidget(opts WidgetOptions) *Widget {
	if opts.Container == "" {
		opts.Container = DefaultContainer
	}

	if opts.Style == "" {
		opts.Style = DefaultStyle
	}

	if opts.Zoom <= 0 {
		opts.Zoom = DefaultZoom
	}

	if opts.DefaultCenter == nil {
		c := DefaultCenter
		opts.DefaultCenter = &c
	}

	return &Widget{
		opts:    opts,
		markers: map[int64]Marker{},
		placed:  map[int64]Placement{},
	}
}

// Configure creates the engine centered on center, or on the default center
// when nil. It is a no-op once an engine exists.
func (w *Widget) Configure(credential string, center *spatial.Point) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.engine != nil {
		return nil
	}

	if credential == "" {
		log.Printf("❌ map access token is missing, the map will not be created")

		return locations.ErrMissingCredential
	}

	if center == nil {
		center = w.opts.DefaultCenter
	}

	e, err := w.opts.Factory(EngineConfig{
		Credential: credential,
		Container:  w.opts.Container,
		Style:      w.opts.Style,
		Center:     *center,
		Zoom:       w.opts.Zoom,
	})
	if err != nil {
		return fmt.Errorf("creating map: %w", err)
	}

	e.AddControl(ControlNavigation)
	e.On(EventLoad, func(EventData) { e.Resize() })
	e.On(EventClick, func(d EventData) {
		if w.opts.OnClick != nil {
			w.opts.OnClick(d.Point)
		}
	})
	e.On(EventError, func(d EventData) {
		log.Printf("⚠️  map error: %v", d.Err)

		if w.opts.OnError != nil {
			w.opts.OnError(d.Err)
		}
	})

	w.engine = e
	w.applyLocked()

	return nil
}

// Ready reports whether the engine exists.
func (w *Widget) Ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.engine != nil
}

// Sync reconciles the markers with records and follows the first Current
// record. Records received before the engine exists are applied on creation.
func (w *Widget) Sync(records []locations.Record) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.records = slices.Clone(records)
	if w.engine != nil {
		w.applyLocked()
	}
}

func (w *Widget) applyLocked() {
	next, ops := Plan(w.placed, w.records)

	for _, op := range ops {
		switch op.Kind {
		case OpDestroy:
			if m, ok := w.markers[op.ID]; ok {
				m.Remove()
				delete(w.markers, op.ID)
			}
		case OpCreate:
			m := w.engine.NewMarker(op.Style)
			m.SetPosition(op.Point)
			w.markers[op.ID] = m
		case OpMove:
			w.markers[op.ID].SetPosition(op.Point)
		}
	}

	w.placed = next

	if target, ok := CameraTarget(w.records); ok {
		w.engine.FlyTo(target, FollowZoom)
	}
}

// Placements returns what the engine currently shows, by record id.
func (w *Widget) Placements() map[int64]Placement {
	w.mu.Lock()
	defer w.mu.Unlock()

	return maps.Clone(w.placed)
}

// Dispose removes the engine and forgets its markers.
func (w *Widget) Dispose() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.engine != nil {
		w.engine.Remove()
		w.engine = nil
	}

	clear(w.markers)
	clear(w.placed)
}
