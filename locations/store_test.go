// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package locations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAddRemove(t *testing.T) {
	s := NewStore()

	var snapshots [][]Record
	s.OnChange(func(r []Record) { snapshots = append(snapshots, r) })

	require.NoError(t, s.Add(Record{ID: 1, Kind: KindSelected}))
	require.NoError(t, s.Add(Record{ID: 2, Kind: KindSearched}))
	require.NoError(t, s.Add(Record{ID: 3, Kind: KindCurrent}))

	err := s.Add(Record{ID: 2})
	require.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 3, s.Len())

	assert.False(t, s.Remove(42), "unknown id is a no-op")
	assert.Equal(t, 3, s.Len())
	assert.Len(t, snapshots, 3, "no-op does not notify")

	assert.True(t, s.Remove(2))
	assert.Equal(t, 2, s.Len())

	ids := []int64{}
	for _, r := range s.List() {
		ids = append(ids, r.ID)
	}

	assert.Equal(t, []int64{1, 3}, ids)
	require.Len(t, snapshots, 4)
	assert.Len(t, snapshots[3], 2)

	_, ok := s.Get(2)
	assert.False(t, ok)

	r, ok := s.Get(3)
	assert.True(t, ok)
	assert.Equal(t, KindCurrent, r.Kind)
}

func TestStoreListIsACopy(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Add(Record{ID: 1, Address: "a"}))

	list := s.List()
	list[0].Address = "changed"

	r, _ := s.Get(1)
	assert.Equal(t, "a", r.Address)
}
