// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package htmlutils

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func htmlResponse(status int, media, body string) *http.Response {
	resp := &http.Response{
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
	resp.Header.Set("Content-Type", media)

	return resp
}

func TestText(t *testing.T) {
	n, err := html.Parse(strings.NewReader("<div><pre>foo</pre>\n  <span>bar\n baz</span>"))
	require.NoError(t, err)

	assert.Equal(t, "foo bar baz", Text(n))
}

func TestParseWithNonOKStatus(t *testing.T) {
	n, err := Parse(htmlResponse(http.StatusNotFound, "text/html", ""))
	assert.Nil(t, n)
	require.ErrorContains(t, err, "status 404")
}

func TestParseWithWrongMediaType(t *testing.T) {
	n, err := Parse(htmlResponse(http.StatusOK, "application/json", "{}"))
	assert.Nil(t, n)
	require.ErrorContains(t, err, "application/json")
}

func TestParseTranscodes(t *testing.T) {
	n, err := Parse(htmlResponse(http.StatusOK, "text/html; charset=iso-8859-1", "<html>Sol\xeds</html>"))
	require.NoError(t, err)

	assert.Equal(t, "Solís", Text(n))
}

func TestHasHtmlContentType(t *testing.T) {
	tests := []struct {
		expected bool
		input    string
	}{
		{false, ""},
		{false, "text/plain"},
		{true, "text/html"},
		{true, "text/HTml"},
		{true, "text/html; charset=utf-8"},
	}

	for _, test := range tests {
		assert.Equal(t, test.expected, hasHTMLContentType(test.input), test.input)
	}
}

func TestFind(t *testing.T) {
	doc, err := html.Parse(strings.NewReader(`<body>
  <ul id="list"><li>a</li><li class="x">b</li></ul>
  <p id="reason">token <b>rejected</b></p>
</body>`))
	require.NoError(t, err)

	reason := FindByID(doc, "reason")
	require.NotNil(t, reason)
	assert.Equal(t, "token rejected", Text(reason))
	assert.Nil(t, FindByID(doc, "missing"))

	items := FindAll(FindByID(doc, "list"), "li")
	require.Len(t, items, 2)

	class, ok := Attr(items[1], "class")
	assert.True(t, ok)
	assert.Equal(t, "x", class)

	_, ok = Attr(items[0], "class")
	assert.False(t, ok)
}
