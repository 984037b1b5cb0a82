// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jcodagnone/locview/spatial"
)

// DefaultMapboxBaseURL is the public Mapbox API endpoint.
const DefaultMapboxBaseURL = "https://api.mapbox.com"

// MapboxOptions configures a MapboxGeocoder.
type MapboxOptions struct {
	HTTPOptions

	// BaseURL overrides the API endpoint, mostly for tests.
	BaseURL string
	// Provider is the places dataset prefix. Defaults to "mapbox".
	Provider string
	// Country restricts results to an ISO 3166 alpha-2 country code.
	Country string
	// Types restricts suggestions to these feature types.
	Types []string
}

// MapboxGeocoder uses the Mapbox Geocoding API (v5).
type MapboxGeocoder struct {
	token   string
	baseURL string
	dataset string
	country string
	types   string
	http    *retryingClient
}

// NewMapboxGeocoder creates a new Mapbox geocoder.
func NewMapboxGeocoder(token string, opts MapboxOptions) *MapboxGeocoder {
	g := &MapboxGeocoder{
		token:   token,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		dataset: opts.Provider,
		country: strings.ToLower(opts.Country),
		types:   strings.Join(opts.Types, ","),
		http:    newRetryingClient(opts.HTTPOptions),
	}

	if g.baseURL == "" {
		g.baseURL = DefaultMapboxBaseURL
	}

	if g.dataset == "" {
		g.dataset = "mapbox"
	}

	if g.types == "" {
		g.types = "address,poi"
	}

	return g
}

type mapboxResponse struct {
	Features []struct {
		ID        string `json:"id"`
		PlaceName string `json:"place_name"`
		Geometry  struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
	Message string `json:"message"`
}

func (g *MapboxGeocoder) endpoint(query string, params url.Values) string {
	params.Set("access_token", g.token)

	return fmt.Sprintf("%s/geocoding/v5/%s.places/%s.json?%s",
		g.baseURL, g.dataset, url.PathEscape(query), params.Encode())
}

func (g *MapboxGeocoder) lookup(ctx context.Context, query string, params url.Values) ([]Feature, error) {
	if g.token == "" {
		return nil, &GeocodingError{Type: ErrorTypeUnauthorized, Message: "mapbox access token is not set"}
	}

	resp, err := g.http.get(ctx, g.endpoint(query, params))
	if err != nil {
		return nil, fmt.Errorf("mapbox geocoding: %w", err)
	}
	defer resp.Body.Close()

	var decoded mapboxResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding mapbox response: %w", err)
	}

	features := make([]Feature, 0, len(decoded.Features))

	for _, f := range decoded.Features {
		p, err := spatial.FromLngLat(f.Geometry.Coordinates)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", f.ID, err)
		}

		features = append(features, Feature{ID: f.ID, PlaceName: f.PlaceName, Point: p})
	}

	return features, nil
}

// Suggest returns autocomplete suggestions for query.
func (g *MapboxGeocoder) Suggest(ctx context.Context, query string, opts SuggestOptions) ([]Feature, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	params := url.Values{}
	params.Set("autocomplete", "true")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("types", g.types)

	if opts.Proximity != nil {
		params.Set("proximity", opts.Proximity.LngLat())
	}

	if g.country != "" {
		params.Set("country", g.country)
	}

	return g.lookup(ctx, query, params)
}

// Reverse returns the closest address to p.
func (g *MapboxGeocoder) Reverse(ctx context.Context, p spatial.Point) (*Feature, error) {
	params := url.Values{}
	params.Set("limit", "1")

	features, err := g.lookup(ctx, p.LngLat(), params)
	if err != nil {
		return nil, err
	}

	if len(features) == 0 {
		return nil, &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: fmt.Sprintf("no address for %s", p.LngLat()),
			Err:     ErrNoResults,
		}
	}

	return &features[0], nil
}

// Probe validates the token with a reverse lookup of 0,0. An empty answer is
// fine; only transport or credential errors fail.
func (g *MapboxGeocoder) Probe(ctx context.Context) error {
	params := url.Values{}
	params.Set("limit", "1")

	if _, err := g.lookup(ctx, spatial.Point{}.LngLat(), params); err != nil {
		return fmt.Errorf("probing mapbox token: %w", err)
	}

	return nil
}
