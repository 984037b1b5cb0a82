// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package mapview keeps a map engine's markers and camera in line with the
// location list.
package mapview

import (
	"github.com/jcodagnone/locview/spatial"
)

// Event names an engine event.
type Event string

// Engine events.
const (
	EventLoad  Event = "load"
	EventClick Event = "click"
	EventError Event = "error"
)

// EventData carries the payload of an engine event.
type EventData struct {
	// Point is the clicked coordinate for click events.
	Point spatial.Point
	// Err is set for error events.
	Err error
}

// Handler receives engine events.
type Handler func(EventData)

// Control is a map UI control.
type Control string

// ControlNavigation is the zoom/rotate control.
const ControlNavigation Control = "navigation"

// Marker is a handle to a marker owned by an engine.
type Marker interface {
	SetPosition(p spatial.Point)
	Remove()
}

// Engine is the map rendering engine. Implementations must be safe to call
// from event handlers.
type Engine interface {
	AddControl(c Control)
	On(ev Event, h Handler)
	NewMarker(style Style) Marker
	FlyTo(center spatial.Point, zoom float64)
	Resize()
	Remove()
}

// EngineConfig holds the arguments an engine is created with.
type EngineConfig struct {
	Credential string        `json:"-"`
	Container  string        `json:"container"`
	Style      string        `json:"style"`
	Center     spatial.Point `json:"center"`
	Zoom       float64       `json:"zoom"`
}

// EngineFactory creates an engine.
type EngineFactory func(cfg EngineConfig) (Engine, error)
