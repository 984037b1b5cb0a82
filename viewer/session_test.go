// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package viewer

import (
	"testing"
	"time"

	"github.com/jcodagnone/locview/locations"
	"github.com/jcodagnone/locview/mapview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession(id string) *session {
	slot := &mapview.SceneSlot{}
	w := mapview.NewWidget(mapview.WidgetOptions{Factory: slot.Factory})

	return &session{
		id:     id,
		slot:   slot,
		widget: w,
		page:   locations.NewPage(&stubGeocoder{}, w, locations.PageOptions{Credential: "pk"}),
	}
}

func TestSessionsSweep(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ss := newSessions(10 * time.Minute)
	ss.now = func() time.Time { return now }

	idle := testSession("idle")
	busy := testSession("busy")
	ss.add(idle)
	ss.add(busy)

	now = now.Add(8 * time.Minute)
	_, ok := ss.get("busy")
	require.True(t, ok)

	now = now.Add(5 * time.Minute)
	assert.Equal(t, 1, ss.sweep())

	_, ok = ss.get("idle")
	assert.False(t, ok)
	_, ok = ss.get("busy")
	assert.True(t, ok)
	assert.Equal(t, 1, ss.len())
}

func TestSessionsRemove(t *testing.T) {
	ss := newSessions(time.Minute)
	s := testSession("a")
	require.NoError(t, s.widget.Configure("pk", nil))
	ss.add(s)

	assert.True(t, ss.remove("a"))
	assert.False(t, ss.remove("a"))
	assert.False(t, s.widget.Ready(), "removal disposes the map")
}

func TestSessionIDsAreUnique(t *testing.T) {
	assert.NotEqual(t, newSessionID(), newSessionID())
	assert.Len(t, newSessionID(), 36)
}
