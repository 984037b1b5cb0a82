// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package viewer

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jcodagnone/locview/locations"
	"github.com/jcodagnone/locview/mapview"
	"github.com/jcodagnone/locview/spatial"
)

// session is one open viewer.
type session struct {
	id     string
	page   *locations.Page
	widget *mapview.Widget
	slot   *mapview.SceneSlot

	// clickMu serializes clicks so each request reads back its own record.
	clickMu   sync.Mutex
	lastClick locations.Record
	clickErr  error

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSeen = now
}

func (s *session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lastSeen
}

// click routes a point through the map engine, as a browser click would,
// and returns the record it produced.
func (s *session) click(p spatial.Point) (locations.Record, error) {
	s.clickMu.Lock()
	defer s.clickMu.Unlock()

	sc := s.slot.Scene()
	if sc == nil || !s.widget.Ready() {
		return locations.Record{}, errMapNotReady
	}

	s.lastClick, s.clickErr = locations.Record{}, errMapNotReady
	sc.Click(p)

	return s.lastClick, s.clickErr
}

func (s *session) onClick(ctx context.Context) func(spatial.Point) {
	return func(p spatial.Point) {
		s.lastClick, s.clickErr = s.page.HandleMapClick(ctx, p)
	}
}

func (s *session) dispose() {
	s.page.Dispose()
}

// sessions indexes the open sessions by id.
type sessions struct {
	mu   sync.Mutex
	byID map[string]*session
	ttl  time.Duration
	now  func() time.Time
}

func newSessions(ttl time.Duration) *sessions {
	return &sessions{byID: map[string]*session{}, ttl: ttl, now: time.Now}
}

func (ss *sessions) get(id string) (*session, bool) {
	ss.mu.Lock()
	s, ok := ss.byID[id]
	ss.mu.Unlock()

	if ok {
		s.touch(ss.now())
	}

	return s, ok
}

func (ss *sessions) add(s *session) {
	s.touch(ss.now())

	ss.mu.Lock()
	defer ss.mu.Unlock()

	ss.byID[s.id] = s
}

func (ss *sessions) remove(id string) bool {
	ss.mu.Lock()
	s, ok := ss.byID[id]
	delete(ss.byID, id)
	ss.mu.Unlock()

	if ok {
		s.dispose()
	}

	return ok
}

func (ss *sessions) len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	return len(ss.byID)
}

// sweep disposes sessions idle for longer than the ttl.
func (ss *sessions) sweep() int {
	cutoff := ss.now().Add(-ss.ttl)

	var expired []*session

	ss.mu.Lock()
	for id, s := range ss.byID {
		if s.idleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(ss.byID, id)
		}
	}
	ss.mu.Unlock()

	for _, s := range expired {
		s.dispose()
	}

	if len(expired) > 0 {
		log.Printf("🧹 expired %d idle sessions", len(expired))
	}

	return len(expired)
}

func (ss *sessions) closeAll() {
	ss.mu.Lock()
	all := ss.byID
	ss.byID = map[string]*session{}
	ss.mu.Unlock()

	for _, s := range all {
		s.dispose()
	}
}

func newSessionID() string {
	return uuid.NewString()
}
