// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package mapview

import (
	"github.com/jcodagnone/locview/locations"
)

// Style is how a marker is drawn.
type Style struct {
	Color string `json:"color"`
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

var styles = map[locations.Kind]Style{
	locations.KindCurrent:  {Color: "#1e88e5", Icon: "my_location", Label: "Current location"},
	locations.KindSelected: {Color: "#e53935", Icon: "place", Label: "Selected location"},
	locations.KindSearched: {Color: "#43a047", Icon: "search", Label: "Search result"},
}

var fallbackStyle = Style{Color: "#757575", Icon: "place", Label: "Location"}

// StyleFor returns the marker style of a kind.
func StyleFor(k locations.Kind) Style {
	if s, ok := styles[k]; ok {
		return s
	}

	return fallbackStyle
}
