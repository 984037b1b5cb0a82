// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLngLat(t *testing.T) {
	tests := []struct {
		input   string
		want    Point
		wantErr bool
	}{
		{"-56.1645,-34.9011", Point{Lat: -34.9011, Lng: -56.1645}, false},
		{" -56.1645 , -34.9011 ", Point{Lat: -34.9011, Lng: -56.1645}, false},
		{"0,0", Point{}, false},
		{"-56.1645", Point{}, true},
		{"abc,1", Point{}, true},
		{"1,abc", Point{}, true},
		{"10,91", Point{}, true},
		{"181,10", Point{}, true},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ParseLngLat(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidPoint)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestLngLatRoundTrip(t *testing.T) {
	p := Point{Lat: -34.9011, Lng: -56.1645}
	assert.Equal(t, "-56.1645,-34.9011", p.LngLat())

	back, err := ParseLngLat(p.LngLat())
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestFromLngLat(t *testing.T) {
	p, err := FromLngLat([]float64{-56.1645, -34.9011})
	require.NoError(t, err)
	assert.Equal(t, Point{Lat: -34.9011, Lng: -56.1645}, p)

	_, err = FromLngLat([]float64{1})
	require.ErrorIs(t, err, ErrInvalidPoint)
}

func TestHaversineDistance(t *testing.T) {
	montevideo := &Point{Lat: -34.9011, Lng: -56.1645}
	buenosAires := &Point{Lat: -34.6037, Lng: -58.3816}

	d := montevideo.HaversineDistance(buenosAires)
	assert.InDelta(t, 204_000, d, 3_000)
	assert.InDelta(t, 0, montevideo.HaversineDistance(montevideo), 1e-6)
}
