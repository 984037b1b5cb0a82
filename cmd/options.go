// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/jcodagnone/locview/geocoding"
	"github.com/jcodagnone/locview/utils/httputils"
)

const defaultEnvFile = ".env"

// Options are the flags shared by every command.
type Options struct {
	EnvFile string

	Provider      string
	Token         string
	GoogleKey     string
	GoogleProject string
	Country       string

	Cache     string
	CachePath string
	RedisURL  string
	CacheTTL  time.Duration

	HTTPTrace     bool
	HTTPTraceBody bool
}

var options = &Options{}

// Provider names.
const (
	ProviderMapbox = "mapbox"
	ProviderGoogle = "google"
)

// Cache backends.
const (
	CacheNone   = "none"
	CacheDuckDB = "duckdb"
	CacheRedis  = "redis"
)

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&options.EnvFile, "env-file", defaultEnvFile, "Environment file loaded before reading variables")
	f.StringVar(&options.Provider, "provider", ProviderMapbox, "Geocoding provider: mapbox or google")
	f.StringVar(&options.Token, "token", "", "Mapbox access token (defaults to $MAPBOX_ACCESS_TOKEN)")
	f.StringVar(&options.GoogleKey, "google-key", "", "Google Maps API key (defaults to $GOOGLE_MAPS_API_KEY, then ADC)")
	f.StringVar(&options.GoogleProject, "google-project", "", "Project to look the Google key up in when ADC carries none")
	f.StringVar(&options.Country, "country", "", "Restrict results to an ISO 3166 alpha-2 country")
	f.StringVar(&options.Cache, "cache", CacheNone, "Geocoding cache backend: none, duckdb or redis")
	f.StringVar(&options.CachePath, "cache-path", "db", "Directory holding the DuckDB cache")
	f.StringVar(&options.RedisURL, "redis-url", "", "Redis URL for the cache (defaults to $REDIS_URL)")
	f.DurationVar(&options.CacheTTL, "cache-ttl", 30*24*time.Hour, "How long cached answers are kept")
	f.BoolVar(&options.HTTPTrace, "trace-http", false, "Display HTTP requests-responses")
	f.BoolVar(&options.HTTPTraceBody, "trace-http-body", false, "Display HTTP requests-responses bodies")
}

func (o *Options) mapboxToken() string {
	if o.Token != "" {
		return o.Token
	}

	return os.Getenv("MAPBOX_ACCESS_TOKEN")
}

func (o *Options) redisURL() string {
	if o.RedisURL != "" {
		return o.RedisURL
	}

	return os.Getenv("REDIS_URL")
}

func (o *Options) googleKey(ctx context.Context) (string, error) {
	if o.GoogleKey != "" {
		return o.GoogleKey, nil
	}

	if key := os.Getenv("GOOGLE_MAPS_API_KEY"); key != "" {
		return key, nil
	}

	log.Println("GOOGLE_MAPS_API_KEY is not set. Attempting to retrieve via ADC...")

	key, err := geocoding.GoogleAPIKeyFromADC(ctx, o.GoogleProject, geocoding.GoogleKeyDisplayName)
	if err != nil {
		return "", err
	}

	log.Println("✅ Successfully retrieved Google Maps API Key via ADC")

	return key, nil
}

func (o *Options) httpOptions() geocoding.HTTPOptions {
	return geocoding.HTTPOptions{
		Client: httputils.NewClient(httputils.ClientOptions{
			UserAgent: fmt.Sprintf("locview/%s (+https://github.com/jcodagnone/locview)", Version),
			Trace:     o.HTTPTrace,
			TraceBody: o.HTTPTraceBody,
		}),
	}
}

// newProvider returns the configured geocoder without a cache, plus the
// credential the browser map needs.
func (o *Options) newProvider(ctx context.Context) (geocoding.Geocoder, string, error) {
	switch strings.ToLower(o.Provider) {
	case ProviderMapbox:
		token := o.mapboxToken()
		g := geocoding.NewMapboxGeocoder(token, geocoding.MapboxOptions{
			HTTPOptions: o.httpOptions(),
			Country:     o.Country,
		})
		log.Println("📍 Geocoding: Mapbox")

		return g, token, nil
	case ProviderGoogle:
		key, err := o.googleKey(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("google maps key: %w", err)
		}

		g := geocoding.NewGoogleMapsGeocoder(key, geocoding.GoogleOptions{
			HTTPOptions: o.httpOptions(),
			Region:      o.Country,
			Country:     o.Country,
		})
		log.Println("📍 Geocoding: Google Maps")

		// The map itself is always rendered with Mapbox.
		return g, o.mapboxToken(), nil
	default:
		return nil, "", fmt.Errorf("unknown provider %q", o.Provider)
	}
}

func (o *Options) openDuckDBCache() (*geocoding.DuckDBCache, error) {
	if err := os.MkdirAll(o.CachePath, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("duckdb", filepath.Join(o.CachePath, "locview.duckdb"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	c, err := geocoding.NewDuckDBCache(db, o.CacheTTL)
	if err != nil {
		db.Close()

		return nil, err
	}

	return c, nil
}

func (o *Options) openCache(ctx context.Context) (geocoding.Cache, error) {
	switch strings.ToLower(o.Cache) {
	case "", CacheNone:
		return nil, nil
	case CacheDuckDB:
		return o.openDuckDBCache()
	case CacheRedis:
		url := o.redisURL()
		if url == "" {
			return nil, errors.New("--redis-url or $REDIS_URL is required for the redis cache")
		}

		c, err := geocoding.NewRedisCache(url, o.CacheTTL)
		if err != nil {
			return nil, err
		}

		if err := c.Ping(ctx); err != nil {
			c.Close()

			return nil, fmt.Errorf("connecting to redis: %w", err)
		}

		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache %q", o.Cache)
	}
}

// newGeocoder returns the configured geocoder behind the configured cache.
// The returned close function releases the cache.
func (o *Options) newGeocoder(ctx context.Context) (geocoding.Geocoder, string, func(), error) {
	g, credential, err := o.newProvider(ctx)
	if err != nil {
		return nil, "", nil, err
	}

	cache, err := o.openCache(ctx)
	if err != nil {
		return nil, "", nil, err
	}

	if cache == nil {
		return g, credential, func() {}, nil
	}

	log.Printf("🗄️  Geocoding cache: %s", o.Cache)

	closer := func() {
		if err := cache.Close(); err != nil {
			log.Printf("⚠️  closing cache: %v", err)
		}
	}

	return geocoding.NewCachedGeocoder(g, cache, o.Country), credential, closer, nil
}
