// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jcodagnone/locview/spatial"
)

// DefaultGoogleBaseURL is the public Google Maps API endpoint.
const DefaultGoogleBaseURL = "https://maps.googleapis.com"

// GoogleOptions configures a GoogleMapsGeocoder.
type GoogleOptions struct {
	HTTPOptions

	BaseURL string
	// Region biases results toward a ccTLD, e.g. "uy".
	Region string
	// Country restricts results through the components filter.
	Country string
}

// GoogleMapsGeocoder uses Google Maps Geocoding API.
type GoogleMapsGeocoder struct {
	apiKey  string
	baseURL string
	region  string
	country string
	http    *retryingClient
}

// NewGoogleMapsGeocoder creates a new Google Maps geocoder.
func NewGoogleMapsGeocoder(apiKey string, opts GoogleOptions) *GoogleMapsGeocoder {
	g := &GoogleMapsGeocoder{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		region:  strings.ToLower(opts.Region),
		country: strings.ToUpper(opts.Country),
		http:    newRetryingClient(opts.HTTPOptions),
	}

	if g.baseURL == "" {
		g.baseURL = DefaultGoogleBaseURL
	}

	return g
}

type googleMapsResponse struct {
	Results []struct {
		PlaceID  string `json:"place_id"`
		Geometry struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status       string `json:"status"` // OK, ZERO_RESULTS, etc.
	ErrorMessage string `json:"error_message"`
}

// statusError maps a non-OK Google status into a geocoding error.
func statusError(status, message string) *GeocodingError {
	var t ErrorType

	switch status {
	case "ZERO_RESULTS":
		return &GeocodingError{Type: ErrorTypeNotFound, Message: "no results", Err: ErrNoResults}
	case "OVER_QUERY_LIMIT":
		t = ErrorTypeRateLimit
	case "OVER_DAILY_LIMIT":
		t = ErrorTypeQuotaExceeded
	case "REQUEST_DENIED":
		t = ErrorTypeUnauthorized
	case "INVALID_REQUEST":
		t = ErrorTypeInvalidRequest
	default:
		t = ErrorTypeUnknown
	}

	e := &GeocodingError{Type: t, Message: "google maps status: " + status}
	if message != "" {
		e.Err = errors.New(message)
	}

	return e
}

func (g *GoogleMapsGeocoder) lookup(ctx context.Context, params url.Values) ([]Feature, error) {
	if g.apiKey == "" {
		return nil, &GeocodingError{Type: ErrorTypeUnauthorized, Message: "google maps api key is not set"}
	}

	params.Set("key", g.apiKey)

	if g.region != "" {
		params.Set("region", g.region)
	}

	resp, err := g.http.get(ctx, g.baseURL+"/maps/api/geocode/json?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("google geocoding: %w", err)
	}
	defer resp.Body.Close()

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if gmResp.Status != "OK" {
		return nil, statusError(gmResp.Status, gmResp.ErrorMessage)
	}

	features := make([]Feature, 0, len(gmResp.Results))
	for _, r := range gmResp.Results {
		features = append(features, Feature{
			ID:        r.PlaceID,
			PlaceName: r.FormattedAddress,
			Point:     spatial.Point{Lat: r.Geometry.Location.Lat, Lng: r.Geometry.Location.Lng},
		})
	}

	return features, nil
}

// Suggest forward-geocodes query. Google has no autocomplete on this API, so
// the ranked geocoding results stand in for suggestions.
func (g *GoogleMapsGeocoder) Suggest(ctx context.Context, query string, opts SuggestOptions) ([]Feature, error) {
	params := url.Values{}
	params.Set("address", query)

	if g.country != "" {
		params.Set("components", "country:"+g.country)
	}

	if opts.Proximity != nil {
		// ~0.1 degree box around the device.
		const d = 0.05
		params.Set("bounds", fmt.Sprintf("%s,%s|%s,%s",
			ftoa(opts.Proximity.Lat-d), ftoa(opts.Proximity.Lng-d),
			ftoa(opts.Proximity.Lat+d), ftoa(opts.Proximity.Lng+d)))
	}

	features, err := g.lookup(ctx, params)
	if IsNotFoundError(err) {
		return []Feature{}, nil
	}

	if err != nil {
		return nil, err
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSuggestLimit
	}

	if len(features) > limit {
		features = features[:limit]
	}

	return features, nil
}

// Reverse returns the closest address to p.
func (g *GoogleMapsGeocoder) Reverse(ctx context.Context, p spatial.Point) (*Feature, error) {
	params := url.Values{}
	params.Set("latlng", ftoa(p.Lat)+","+ftoa(p.Lng))

	features, err := g.lookup(ctx, params)
	if err != nil {
		return nil, err
	}

	if len(features) == 0 {
		return nil, &GeocodingError{Type: ErrorTypeNotFound, Message: "no results", Err: ErrNoResults}
	}

	return &features[0], nil
}

// Probe validates the key with a reverse lookup of 0,0.
func (g *GoogleMapsGeocoder) Probe(ctx context.Context) error {
	params := url.Values{}
	params.Set("latlng", "0,0")

	if _, err := g.lookup(ctx, params); err != nil && !IsNotFoundError(err) {
		return fmt.Errorf("probing google maps key: %w", err)
	}

	return nil
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
