// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package mapview

import (
	"slices"
	"sync"

	"github.com/jcodagnone/locview/spatial"
)

// Camera is the last requested camera position. Seq grows with every
// FlyTo so a renderer can replay each request once.
type Camera struct {
	Center spatial.Point `json:"center"`
	Zoom   float64       `json:"zoom"`
	Seq    uint64        `json:"seq"`
}

// MarkerView is a placed marker in a Snapshot.
type MarkerView struct {
	Key   int           `json:"key"`
	Point spatial.Point `json:"point"`
	Style Style         `json:"style"`
}

// Snapshot is what a Scene shows.
type Snapshot struct {
	Ready    bool         `json:"ready"`
	Loaded   bool         `json:"loaded"`
	Config   EngineConfig `json:"config"`
	Controls []Control    `json:"controls"`
	Markers  []MarkerView `json:"markers"`
	Camera   Camera       `json:"camera"`
	Resizes  int          `json:"resizes"`
}

// Scene is an Engine that keeps the map state in memory for a browser
// renderer to draw. Browser events enter through Dispatch.
type Scene struct {
	mu       sync.Mutex
	cfg      EngineConfig
	controls []Control
	handlers map[Event][]Handler
	markers  map[int]*sceneMarker
	nextKey  int
	camera   Camera
	loaded   bool
	resizes  int
	removed  bool
}

var _ Engine = (*Scene)(nil)

// NewScene creates a scene with the camera at the configured center.
func NewScene(cfg EngineConfig) *Scene {
	return &Scene{
		cfg:      cfg,
		handlers: map[Event][]Handler{},
		markers:  map[int]*sceneMarker{},
		camera:   Camera{Center: cfg.Center, Zoom: cfg.Zoom},
	}
}

type sceneMarker struct {
	scene *Scene
	key   int
	style Style
	point *spatial.Point
}

func (m *sceneMarker) SetPosition(p spatial.Point) {
	m.scene.mu.Lock()
	defer m.scene.mu.Unlock()

	m.point = &p
}

func (m *sceneMarker) Remove() {
	m.scene.mu.Lock()
	defer m.scene.mu.Unlock()

	delete(m.scene.markers, m.key)
}

// AddControl implements Engine.
func (s *Scene) AddControl(c Control) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.controls, c) {
		s.controls = append(s.controls, c)
	}
}

// On implements Engine.
func (s *Scene) On(ev Event, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handlers[ev] = append(s.handlers[ev], h)
}

// NewMarker implements Engine. The marker is not shown until positioned.
func (s *Scene) NewMarker(style Style) Marker {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextKey++
	m := &sceneMarker{scene: s, key: s.nextKey, style: style}
	s.markers[m.key] = m

	return m
}

// FlyTo implements Engine.
func (s *Scene) FlyTo(center spatial.Point, zoom float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.camera = Camera{Center: center, Zoom: zoom, Seq: s.camera.Seq + 1}
}

// Resize implements Engine.
func (s *Scene) Resize() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resizes++
}

// Remove implements Engine. Events are ignored afterwards.
func (s *Scene) Remove() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removed = true
	s.handlers = map[Event][]Handler{}
	clear(s.markers)
}

// Dispatch delivers an event to the registered handlers. Handlers run
// without the scene lock held.
func (s *Scene) Dispatch(ev Event, data EventData) {
	s.mu.Lock()
	if s.removed {
		s.mu.Unlock()

		return
	}

	if ev == EventLoad {
		s.loaded = true
	}

	handlers := slices.Clone(s.handlers[ev])
	s.mu.Unlock()

	for _, h := range handlers {
		h(data)
	}
}

// Click dispatches a click at p.
func (s *Scene) Click(p spatial.Point) {
	s.Dispatch(EventClick, EventData{Point: p})
}

// Snapshot returns the current state with markers ordered by creation.
func (s *Scene) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Ready:    !s.removed,
		Loaded:   s.loaded,
		Config:   s.cfg,
		Controls: slices.Clone(s.controls),
		Markers:  []MarkerView{},
		Camera:   s.camera,
		Resizes:  s.resizes,
	}

	for _, m := range s.markers {
		if m.point != nil {
			snap.Markers = append(snap.Markers, MarkerView{Key: m.key, Point: *m.point, Style: m.style})
		}
	}

	slices.SortFunc(snap.Markers, func(a, b MarkerView) int { return a.Key - b.Key })

	return snap
}

// SceneSlot creates scenes and remembers the latest one.
type SceneSlot struct {
	mu    sync.Mutex
	scene *Scene
}

// Factory is an EngineFactory backed by the slot.
func (s *SceneSlot) Factory(cfg EngineConfig) (Engine, error) {
	sc := NewScene(cfg)

	s.mu.Lock()
	s.scene = sc
	s.mu.Unlock()

	return sc, nil
}

// Scene returns the latest scene, or nil if none was created.
func (s *SceneSlot) Scene() *Scene {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.scene
}
