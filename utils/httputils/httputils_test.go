// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package httputils

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dummyRoundTripper records the last request and answers with response.
type dummyRoundTripper struct {
	lastRequest *http.Request
	body        string
	err         error
}

func (d *dummyRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	d.lastRequest = req
	if d.err != nil {
		return nil, d.err
	}

	return &http.Response{
		Status:     "200 OK",
		StatusCode: http.StatusOK,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(d.body)),
	}, nil
}

func TestLoggingRoundTripper(t *testing.T) {
	var logBuffer bytes.Buffer

	lt := &LoggingRoundTripper{
		Transport: &dummyRoundTripper{body: `{"features":[]}`},
		Writer:    &logBuffer,
		DumpBody:  true,
	}

	req, err := http.NewRequest(http.MethodGet, "https://api.mapbox.com/geocoding/v5/mapbox.places/x.json?access_token=pk.secret&limit=5", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer hunter2")

	_, err = lt.RoundTrip(req)
	require.NoError(t, err)

	out := logBuffer.String()
	assert.Contains(t, out, "> GET /geocoding/v5/mapbox.places/x.json?")
	assert.Contains(t, out, "access_token=REDACTED")
	assert.Contains(t, out, "limit=5")
	assert.Contains(t, out, "< RESPONSE: [")
	assert.Contains(t, out, `{"features":[]}`)
	assert.NotContains(t, out, "pk.secret")
	assert.NotContains(t, out, "hunter2")

	assert.Equal(t, "Bearer hunter2", req.Header.Get("Authorization"), "the request is not modified")
}

func TestLoggingRoundTripperWithoutWriter(t *testing.T) {
	dummy := &dummyRoundTripper{}
	lt := &LoggingRoundTripper{Transport: dummy}

	req := httptest.NewRequest(http.MethodGet, "http://example.com/", nil)
	_, err := lt.RoundTrip(req)
	require.NoError(t, err)
	assert.Same(t, req, dummy.lastRequest)
}

func TestLoggingRoundTripperError(t *testing.T) {
	var logBuffer bytes.Buffer

	boom := errors.New("connection refused")
	lt := &LoggingRoundTripper{Transport: &dummyRoundTripper{err: boom}, Writer: &logBuffer}

	req, err := http.NewRequest(http.MethodGet, "http://example.com/?key=AIza", nil)
	require.NoError(t, err)

	_, err = lt.RoundTrip(req)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, logBuffer.String(), "< ERROR:")
	assert.NotContains(t, logBuffer.String(), "AIza")
}

func TestRedactURL(t *testing.T) {
	u, err := url.Parse("https://maps.googleapis.com/maps/api/geocode/json?address=x&key=AIza")
	require.NoError(t, err)

	got := RedactURL(u, DefaultSecretParams)
	assert.Contains(t, got, "key=REDACTED")
	assert.Contains(t, got, "address=x")
	assert.Contains(t, u.String(), "key=AIza", "input is not modified")

	plain, err := url.Parse("http://example.com/a?b=c")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/a?b=c", RedactURL(plain, DefaultSecretParams))
}

func TestAppendRequestHeadersRoundTripper(t *testing.T) {
	dummy := &dummyRoundTripper{}
	atr := &AppendRequestHeadersRoundTripper{
		Transport: dummy,
		Headers:   map[string]string{"X-Test-Header": "TestValue"},
	}

	req, err := http.NewRequest(http.MethodPost, "http://example.org", nil)
	require.NoError(t, err)

	_, err = atr.RoundTrip(req)
	require.NoError(t, err)

	require.NotNil(t, dummy.lastRequest)
	assert.Equal(t, "TestValue", dummy.lastRequest.Header.Get("X-Test-Header"))
	assert.Empty(t, req.Header.Get("X-Test-Header"), "the caller's request is not modified")
}

func TestNewClient(t *testing.T) {
	var seen string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("User-Agent")
		_, _ = io.WriteString(w, "ok")
	}))
	defer srv.Close()

	var trace bytes.Buffer

	c := NewClient(ClientOptions{UserAgent: "locview/test", Trace: true, TraceWriter: &trace})

	resp, err := c.Get(srv.URL + "/?access_token=pk.secret")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "locview/test", seen)
	assert.Contains(t, trace.String(), "< RESPONSE:")
	assert.NotContains(t, trace.String(), "pk.secret")
}
