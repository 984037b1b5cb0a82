// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package mapview

import (
	"fmt"
	"slices"

	"github.com/jcodagnone/locview/locations"
	"github.com/jcodagnone/locview/spatial"
)

// Placement is what the engine currently shows for a record id.
type Placement struct {
	Point spatial.Point
	Kind  locations.Kind
}

// OpKind is the kind of a marker operation.
type OpKind int

// Marker operations.
const (
	OpCreate OpKind = iota + 1
	OpMove
	OpDestroy
)

func (k OpKind) String() string {
	switch k {
	case OpCreate:
		return "create"
	case OpMove:
		return "move"
	case OpDestroy:
		return "destroy"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// Op is a single marker operation produced by Plan.
type Op struct {
	Kind  OpKind
	ID    int64
	Point spatial.Point
	Style Style
}

// Plan computes the marker operations that turn current into the placements
// of records. It does not modify current.
//
// Destroys come first, by ascending id, then creates and moves in record
// order. A marker whose kind changed is destroyed and created again. Planning
// again with the returned placements and the same records yields no ops.
func Plan(current map[int64]Placement, records []locations.Record) (map[int64]Placement, []Op) {
	next := make(map[int64]Placement, len(records))
	order := make([]int64, 0, len(records))

	for _, r := range records {
		if _, dup := next[r.ID]; dup {
			continue
		}

		next[r.ID] = Placement{Point: r.Point, Kind: r.Kind}
		order = append(order, r.ID)
	}

	var destroys []int64

	for id, cur := range current {
		if want, ok := next[id]; !ok || want.Kind != cur.Kind {
			destroys = append(destroys, id)
		}
	}

	slices.Sort(destroys)

	ops := make([]Op, 0, len(destroys)+len(order))
	for _, id := range destroys {
		ops = append(ops, Op{Kind: OpDestroy, ID: id})
	}

	for _, id := range order {
		want := next[id]
		cur, ok := current[id]

		switch {
		case !ok || cur.Kind != want.Kind:
			ops = append(ops, Op{Kind: OpCreate, ID: id, Point: want.Point, Style: StyleFor(want.Kind)})
		case cur.Point != want.Point:
			ops = append(ops, Op{Kind: OpMove, ID: id, Point: want.Point})
		}
	}

	return next, ops
}

// CameraTarget returns the first Current record's point. Only the first one
// is followed when several exist.
func CameraTarget(records []locations.Record) (spatial.Point, bool) {
	for _, r := range records {
		if r.Kind == locations.KindCurrent {
			return r.Point, true
		}
	}

	return spatial.Point{}, false
}
