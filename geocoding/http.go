// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultMaxAttempts  = 4
	defaultRetryBackoff = 200 * time.Millisecond
	maxErrorBodyBytes   = 4 << 10
)

// HTTPOptions configures the transport shared by the HTTP geocoders.
type HTTPOptions struct {
	// Client is the HTTP client. Defaults to one with a 10s timeout.
	Client *http.Client
	// UserAgent is sent with every request when set.
	UserAgent string
	// MaxAttempts bounds retries of transient failures. Defaults to 4.
	MaxAttempts int
	// RetryBackoff is the first backoff delay, doubled on each retry.
	RetryBackoff time.Duration
}

type retryingClient struct {
	client      *http.Client
	userAgent   string
	maxAttempts int
	backoff     time.Duration
}

func newRetryingClient(opts HTTPOptions) *retryingClient {
	c := &retryingClient{
		client:      opts.Client,
		userAgent:   opts.UserAgent,
		maxAttempts: opts.MaxAttempts,
		backoff:     opts.RetryBackoff,
	}

	if c.client == nil {
		c.client = &http.Client{Timeout: 10 * time.Second}
	}

	if c.maxAttempts <= 0 {
		c.maxAttempts = defaultMaxAttempts
	}

	if c.backoff <= 0 {
		c.backoff = defaultRetryBackoff
	}

	return c
}

func (c *retryingClient) newRequest(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	return req, nil
}

func (c *retryingClient) do(req *http.Request) (*http.Response, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		resp.Body.Close()

		return nil, ClassifyHTTPError(resp.StatusCode, string(b))
	}

	return resp, nil
}

// get issues a GET and retries transient failures (network errors, 429, 5xx)
// using exponential backoff while respecting context cancellation.
func (c *retryingClient) get(ctx context.Context, url string) (*http.Response, error) {
	backoff := c.backoff

	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		req, err := c.newRequest(ctx, url)
		if err != nil {
			return nil, err
		}

		resp, err := c.do(req)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		var geoErr *GeocodingError
		if !errors.As(err, &geoErr) || !geoErr.Retryable() || attempt == c.maxAttempts {
			return nil, lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()

			return nil, ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return nil, lastErr
}
