// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package locations

import (
	"errors"
	"fmt"
	"slices"
)

// ErrDuplicateID is returned when adding a record whose id is already listed.
var ErrDuplicateID = errors.New("duplicate location id")

// Store is the ordered list of records. Insertion order is display order.
//
// Store is not safe for concurrent use; Page serializes access to it.
type Store struct {
	records   []Record
	listeners []func([]Record)
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// OnChange registers fn to run with a snapshot after every effective change.
func (s *Store) OnChange(fn func([]Record)) {
	s.listeners = append(s.listeners, fn)
}

func (s *Store) changed() {
	for _, fn := range s.listeners {
		fn(s.List())
	}
}

func (s *Store) index(id int64) int {
	return slices.IndexFunc(s.records, func(r Record) bool { return r.ID == id })
}

// Add appends r.
func (s *Store) Add(r Record) error {
	if s.index(r.ID) >= 0 {
		return fmt.Errorf("%w: %d", ErrDuplicateID, r.ID)
	}

	s.records = append(s.records, r)
	s.changed()

	return nil
}

// Remove deletes the record with id. Removing an unknown id is a no-op and
// reports false.
func (s *Store) Remove(id int64) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}

	s.records = slices.Delete(s.records, i, i+1)
	s.changed()

	return true
}

// Get returns the record with id.
func (s *Store) Get(id int64) (Record, bool) {
	i := s.index(id)
	if i < 0 {
		return Record{}, false
	}

	return s.records[i], true
}

// List returns a copy of the records in order.
func (s *Store) List() []Record {
	return append(make([]Record, 0, len(s.records)), s.records...)
}

// Len returns the number of records.
func (s *Store) Len() int {
	return len(s.records)
}
