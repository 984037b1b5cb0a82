// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package locations

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jcodagnone/locview/geocoding"
	"github.com/jcodagnone/locview/spatial"
)

// AddressNotAvailable replaces the address when reverse geocoding fails.
const AddressNotAvailable = "Address not available"

// Errors returned by Page.
var (
	ErrMissingCredential = errors.New("map access token is not configured")
	ErrInvalidCredential = errors.New("map access token was rejected")
	ErrUnknownSuggestion = errors.New("unknown suggestion")
)

// MapWidget is the map the page keeps in sync with its records.
type MapWidget interface {
	// Configure creates the map on first success; later calls are no-ops.
	Configure(credential string, center *spatial.Point) error
	// Ready reports whether the map exists.
	Ready() bool
	// Sync reconciles the rendered markers with records.
	Sync(records []Record)
	// Dispose tears the map down.
	Dispose()
}

// PageOptions configures a Page.
type PageOptions struct {
	// Credential is the map/geocoding access token.
	Credential string
	// DefaultCenter is used when the device position is unknown.
	DefaultCenter spatial.Point
	// InitialCenter creates the map right away at this point instead of
	// waiting for the device position.
	InitialCenter *spatial.Point
	// ReverseTimeout bounds a reverse geocoding call.
	ReverseTimeout time.Duration
	Suggest        SuggesterOptions
	// NotificationBacklog bounds undelivered notifications.
	NotificationBacklog int
}

// Page is the state behind one open viewer: the records, the map, the search
// box and the toasts. All record mutations and map updates happen under the
// page lock; geocoding calls run outside it and commit afterwards.
type Page struct {
	geocoder  geocoding.Geocoder
	widget    MapWidget
	opts      PageOptions
	ids       *IDSource
	notes     *Notifications
	suggester *Suggester

	mu           sync.Mutex
	store        *Store
	lastPosition *spatial.Point
	setupErr     error
}

// NewPage wires a page to its geocoder and map widget.
func NewPage(g geocoding.Geocoder, w MapWidget, opts PageOptions) *Page {
	if opts.ReverseTimeout <= 0 {
		opts.ReverseTimeout = DefaultLookupTimeout
	}

	p := &Page{
		geocoder: g,
		widget:   w,
		opts:     opts,
		ids:      NewIDSource(),
		notes:    NewNotifications(opts.NotificationBacklog),
		store:    NewStore(),
	}

	suggestOpts := opts.Suggest
	suggestOpts.Proximity = p.LastPosition

	onError := suggestOpts.OnError
	suggestOpts.OnError = func(err error) {
		log.Printf("⚠️  suggestion lookup failed: %v", err)
		p.notes.Push(LevelWarning, "Could not fetch suggestions")

		if onError != nil {
			onError(err)
		}
	}

	p.suggester = NewSuggester(g, suggestOpts)
	p.store.OnChange(w.Sync)

	return p
}

// Start validates the credential with a probe request. On failure the page
// stays in setup mode and the map is never created.
func (p *Page) Start(ctx context.Context) error {
	var err error

	switch {
	case p.opts.Credential == "":
		err = ErrMissingCredential
	default:
		if perr := p.geocoder.Probe(ctx); perr != nil {
			if geocoding.IsCredentialError(perr) {
				err = fmt.Errorf("%w: %w", ErrInvalidCredential, perr)
			} else {
				// Unreachable provider: the token may still be valid.
				log.Printf("⚠️  token probe failed: %v", perr)
				p.notes.Push(LevelWarning, "Geocoding service is unreachable")
			}
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.setupErr = err
	if err != nil {
		log.Printf("❌ %v", err)
		p.notes.Push(LevelError, "Map setup required: %v", err)

		return err
	}

	if p.opts.InitialCenter != nil {
		p.configureLocked(p.opts.InitialCenter)
	}

	return nil
}

// SetupError returns why the page cannot show a map, or nil.
func (p *Page) SetupError() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.setupErr
}

func (p *Page) configureLocked(center *spatial.Point) {
	if p.setupErr != nil || p.widget.Ready() {
		return
	}

	if err := p.widget.Configure(p.opts.Credential, center); err != nil {
		log.Printf("❌ map not created: %v", err)
	}
}

// reverse resolves the address of pt, falling back to a placeholder.
func (p *Page) reverse(ctx context.Context, pt spatial.Point) string {
	ctx, cancel := context.WithTimeout(ctx, p.opts.ReverseTimeout)
	defer cancel()

	f, err := p.geocoder.Reverse(ctx, pt)
	if err != nil {
		log.Printf("⚠️  reverse geocoding %s: %v", pt.LngLat(), err)
		p.notes.Push(LevelWarning, "Could not fetch address for the selected location")

		return AddressNotAvailable
	}

	return f.PlaceName
}

func (p *Page) add(pt spatial.Point, address string, kind Kind) (Record, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	r := Record{ID: p.ids.Next(), Point: pt, Address: address, Kind: kind}
	if err := p.store.Add(r); err != nil {
		return Record{}, err
	}

	return r, nil
}

// HandleMapClick adds a Selected record for a clicked point.
func (p *Page) HandleMapClick(ctx context.Context, pt spatial.Point) (Record, error) {
	if err := pt.Validate(); err != nil {
		return Record{}, err
	}

	return p.add(pt, p.reverse(ctx, pt), KindSelected)
}

// HandleDevicePosition records the device position, creates the map around
// it if needed and adds a Current record.
func (p *Page) HandleDevicePosition(ctx context.Context, pt spatial.Point) (Record, error) {
	if err := pt.Validate(); err != nil {
		return Record{}, err
	}

	p.mu.Lock()
	p.lastPosition = &pt
	p.configureLocked(&pt)
	p.mu.Unlock()

	return p.add(pt, p.reverse(ctx, pt), KindCurrent)
}

// HandleDeviceError reports a failed position request and falls back to the
// default center.
func (p *Page) HandleDeviceError(message string) {
	log.Printf("⚠️  geolocation failed: %s", message)
	p.notes.Push(LevelWarning, "Unable to get your location: %s", message)

	p.mu.Lock()
	defer p.mu.Unlock()

	center := p.opts.DefaultCenter
	p.configureLocked(&center)
}

// LastPosition returns the last device position, if any.
func (p *Page) LastPosition() *spatial.Point {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lastPosition == nil {
		return nil
	}

	pt := *p.lastPosition

	return &pt
}

// SetSearchText feeds the search box.
func (p *Page) SetSearchText(text string) {
	p.suggester.SetQuery(text)
}

// SearchText returns the search box content.
func (p *Page) SearchText() string {
	return p.suggester.Query()
}

// Suggestions returns the suggestions for the current search text.
func (p *Page) Suggestions() []geocoding.Feature {
	return p.suggester.Suggestions()
}

// SelectSuggestion adds a Searched record for the suggestion with id and
// clears the search box.
func (p *Page) SelectSuggestion(id string) (Record, error) {
	f, ok := p.suggester.Find(id)
	if !ok {
		return Record{}, fmt.Errorf("%w: %q", ErrUnknownSuggestion, id)
	}

	r, err := p.add(f.Point, f.PlaceName, KindSearched)
	if err != nil {
		return Record{}, err
	}

	p.suggester.Clear()

	return r, nil
}

// Remove deletes a record. Unknown ids are a no-op.
func (p *Page) Remove(id int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.store.Remove(id)
}

// Locations returns the records in display order.
func (p *Page) Locations() []Record {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.store.List()
}

// Notifications returns and forgets pending notifications.
func (p *Page) Notifications() []Notification {
	return p.notes.Drain()
}

// Notify queues a notification from outside the page, e.g. an engine error.
func (p *Page) Notify(level Level, format string, args ...any) {
	p.notes.Push(level, format, args...)
}

// View runs fn under the page lock so it observes a consistent state.
func (p *Page) View(fn func(records []Record)) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fn(p.store.List())
}

// Dispose stops pending lookups and tears the map down.
func (p *Page) Dispose() {
	p.suggester.Close()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.widget.Dispose()
}
