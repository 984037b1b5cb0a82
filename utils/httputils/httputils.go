// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

// Package httputils provides the HTTP client plumbing shared by the geocoders.
package httputils

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"strings"
	"time"
)

// DefaultSecretParams are query parameters holding credentials.
var DefaultSecretParams = []string{"access_token", "key"}

const redacted = "REDACTED"

/////////////////////////////////////////
/// RoundTrippers

// LoggingRoundTripper dumps every HTTP transaction to Writer. Credentials in
// the query string and the Authorization header are redacted.
type LoggingRoundTripper struct {
	Transport http.RoundTripper
	Writer    io.Writer
	DumpBody  bool
	// SecretParams lists query parameters to redact. Defaults to
	// DefaultSecretParams.
	SecretParams []string
}

// reduce the content the lines.
func abbreviate(lines []string, prefix rune) []string {
	const maxLines, maxChars = 2048, 512

	if len(lines) > maxLines {
		lines = append(lines[:maxLines], "…")
	}

	for i, line := range lines {
		line = fmt.Sprintf("%c %s", prefix, line)
		if len(line) > maxChars {
			line = line[0:maxChars] + "…"
		}

		lines[i] = line
	}

	return lines
}

func (t *LoggingRoundTripper) secrets() []string {
	if t.SecretParams == nil {
		return DefaultSecretParams
	}

	return t.SecretParams
}

// RedactURL returns u as a string with the secret query parameters replaced.
func RedactURL(u *url.URL, secrets []string) string {
	q := u.Query()
	changed := false

	for _, name := range secrets {
		if q.Has(name) {
			q.Set(name, redacted)
			changed = true
		}
	}

	if !changed {
		return u.String()
	}

	c := *u
	c.RawQuery = q.Encode()

	return c.String()
}

func (t *LoggingRoundTripper) dumpRequest(req *http.Request) error {
	clone := req.Clone(req.Context())
	if u, err := url.Parse(RedactURL(req.URL, t.secrets())); err == nil {
		clone.URL = u
	}

	if clone.Header.Get("Authorization") != "" {
		clone.Header.Set("Authorization", redacted)
	}

	dump, err := httputil.DumpRequestOut(clone, true)
	if err != nil {
		return fmt.Errorf("tracing HTTP request: %w", err)
	}

	lines := abbreviate(strings.Split(string(dump), "\n"), '>')
	lines = append(lines, "")
	_, err = fmt.Fprint(t.Writer, strings.Join(lines, "\n"))

	return err
}

func (t *LoggingRoundTripper) dumpResponse(resp *http.Response, duration time.Duration) error {
	dump, err := httputil.DumpResponse(resp, t.DumpBody)
	if err != nil {
		return fmt.Errorf("tracing HTTP request: %w", err)
	}

	lines := abbreviate(strings.Split(string(dump), "\n"), '<')

	_, err = fmt.Fprintf(t.Writer, "< RESPONSE: [%v]\n", duration)
	if err != nil {
		return fmt.Errorf("tracing HTTP request: %w", err)
	}

	lines = append(lines, "")
	_, err = fmt.Fprint(t.Writer, strings.Join(lines, "\n"))

	return err
}

// RoundTrip implements the http.RoundTripper interface.
func (t *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Writer == nil {
		return t.Transport.RoundTrip(req)
	}

	if err := t.dumpRequest(req); err != nil {
		return nil, err
	}

	start := time.Now()

	resp, err := t.Transport.RoundTrip(req)
	if err != nil {
		fmt.Fprintf(t.Writer, "< ERROR: [%v] %v\n", time.Since(start), err)

		return nil, err
	}

	if err := t.dumpResponse(resp, time.Since(start)); err != nil {
		return nil, err
	}

	return resp, nil
}

// AppendRequestHeadersRoundTripper adds headers to the request.
type AppendRequestHeadersRoundTripper struct {
	Transport http.RoundTripper
	Headers   map[string]string
}

// RoundTrip implements the http.RoundTripper interface.
func (t *AppendRequestHeadersRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	for k, v := range t.Headers {
		req.Header.Set(k, v)
	}

	return t.Transport.RoundTrip(req)
}

////////////////////////////////////////////////////

// ClientOptions configures NewClient.
type ClientOptions struct {
	// UserAgent is sent with every request.
	UserAgent string
	// Timeout bounds a whole request. Defaults to 10s.
	Timeout time.Duration
	// Trace dumps requests and responses to TraceWriter (stderr by default).
	Trace       bool
	TraceBody   bool
	TraceWriter io.Writer
}

// NewClient returns a client for talking to the geocoding APIs.
func NewClient(opts ClientOptions) *http.Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	var traceWriter io.Writer
	if opts.Trace || opts.TraceBody {
		traceWriter = opts.TraceWriter
		if traceWriter == nil {
			traceWriter = os.Stderr
		}
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: opts.Timeout,
	}

	var rt http.RoundTripper = &LoggingRoundTripper{
		Writer:    traceWriter,
		DumpBody:  opts.TraceBody,
		Transport: transport,
	}

	if opts.UserAgent != "" {
		rt = &AppendRequestHeadersRoundTripper{
			Headers:   map[string]string{"User-Agent": opts.UserAgent},
			Transport: rt,
		}
	}

	return &http.Client{Timeout: opts.Timeout, Transport: rt}
}
