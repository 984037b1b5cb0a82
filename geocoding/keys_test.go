// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"strings"
	"testing"

	"github.com/jcodagnone/locview/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestKey(t *testing.T) {
	a, err := SuggestKey("Av. 18 de Julio", "UY", SuggestOptions{})
	require.NoError(t, err)
	assert.Equal(t, "fwd:uy:-:5:av. 18 de julio", a)

	b, err := SuggestKey("av. 18 de julio", "uy", SuggestOptions{Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := SuggestKey("av. 18 de julio", "uy", SuggestOptions{Proximity: &spatial.Point{Lat: -34.9, Lng: -56.18}})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(c, "fwd:uy:87"), c)
}

func TestReverseKey(t *testing.T) {
	a, err := ReverseKey(spatial.Point{Lat: -34.9011, Lng: -56.1645})
	require.NoError(t, err)

	parsed, err := spatial.ParseLngLat("-56.1645,-34.9011")
	require.NoError(t, err)

	b, err := ReverseKey(parsed)
	require.NoError(t, err)

	far, err := ReverseKey(spatial.Point{Lat: -34.91, Lng: -56.17})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, far)
	assert.True(t, strings.HasPrefix(a, "rev:8b"), a)
}
