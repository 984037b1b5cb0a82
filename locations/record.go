// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package locations holds the user's collected locations and the page logic
// that produces them from map clicks, device positions and searches.
package locations

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jcodagnone/locview/spatial"
)

// Kind tells how a location entered the list.
type Kind int

const (
	// KindCurrent is a position reported by the device.
	KindCurrent Kind = iota + 1
	// KindSelected is a point clicked on the map.
	KindSelected
	// KindSearched is a chosen search suggestion.
	KindSearched
)

var kindNames = map[Kind]string{
	KindCurrent:  "current",
	KindSelected: "selected",
	KindSearched: "searched",
}

// Kinds lists every kind, in display order.
func Kinds() []Kind {
	return []Kind{KindCurrent, KindSelected, KindSearched}
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]

	return ok
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid location kind %d", int(k))
	}

	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	name := strings.ToLower(string(b))
	for kind, s := range kindNames {
		if s == name {
			*k = kind

			return nil
		}
	}

	return fmt.Errorf("unknown location kind %q", b)
}

// Record is a location in the list. Records are never edited: a moved
// location is a removal plus a new record.
type Record struct {
	// ID is the creation time in milliseconds, unique within a list.
	ID      int64         `json:"id"`
	Point   spatial.Point `json:"point"`
	Address string        `json:"address"`
	Kind    Kind          `json:"kind"`
}

// CreatedAt returns the creation time encoded in the id.
func (r Record) CreatedAt() time.Time {
	return time.UnixMilli(r.ID)
}

// IDSource hands out creation-timestamp ids that never repeat, even when two
// records are created within the same millisecond.
type IDSource struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDSource returns an IDSource backed by the wall clock.
func NewIDSource() *IDSource {
	return &IDSource{now: time.Now}
}

// Next returns the next id.
func (s *IDSource) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}

	s.last = id

	return id
}
