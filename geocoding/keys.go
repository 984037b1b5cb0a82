// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jcodagnone/locview/spatial"
	"github.com/jcodagnone/locview/utils/textutils"
	"github.com/uber/h3-go/v4"
)

const (
	// ProximityResolution buckets suggestion bias points (~5km² cells).
	ProximityResolution = 7
	// ReverseResolution buckets reverse lookups (~2000m² cells).
	ReverseResolution = 11
)

func cellOf(p spatial.Point, res int) (h3.Cell, error) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(p.Lat, p.Lng), res)
	if err != nil {
		return 0, fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
	}

	return cell, nil
}

// SuggestKey builds the cache key of a suggestion lookup.
func SuggestKey(query, country string, opts SuggestOptions) (string, error) {
	proximity := "-"

	if opts.Proximity != nil {
		cell, err := cellOf(*opts.Proximity, ProximityResolution)
		if err != nil {
			return "", err
		}

		proximity = cell.String()
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	return strings.Join([]string{
		"fwd",
		strings.ToLower(country),
		proximity,
		strconv.Itoa(limit),
		textutils.NormalizeQuery(query),
	}, ":"), nil
}

// ReverseKey builds the cache key of a reverse lookup.
func ReverseKey(p spatial.Point) (string, error) {
	cell, err := cellOf(p, ReverseResolution)
	if err != nil {
		return "", err
	}

	return "rev:" + cell.String(), nil
}
