// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocoding talks to remote forward/reverse geocoding services.
package geocoding

import (
	"context"

	"github.com/jcodagnone/locview/spatial"
)

// Feature is a single geocoding match.
type Feature struct {
	ID        string        `json:"id"`
	PlaceName string        `json:"place_name"`
	Point     spatial.Point `json:"point"`
}

// SuggestOptions tunes an address-suggestion lookup.
type SuggestOptions struct {
	// Proximity biases results toward this point when set.
	Proximity *spatial.Point
	// Limit caps the number of suggestions. Zero means the provider default.
	Limit int
}

// Geocoder interface for different geocoding providers.
type Geocoder interface {
	// Suggest returns address suggestions for free text, best match first.
	Suggest(ctx context.Context, query string, opts SuggestOptions) ([]Feature, error)

	// Reverse returns the best address for a point.
	Reverse(ctx context.Context, p spatial.Point) (*Feature, error)

	// Probe checks the credential with a cheap request.
	Probe(ctx context.Context) error
}

// DefaultSuggestLimit is the number of suggestions requested when the caller
// does not say otherwise.
const DefaultSuggestLimit = 5
