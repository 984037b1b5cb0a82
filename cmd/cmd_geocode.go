// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/jcodagnone/locview/geocoding"
	"github.com/jcodagnone/locview/spatial"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var geocodeCmd = &cobra.Command{
	Use:   "geocode",
	Short: "Talks to the geocoding service",
}

var (
	searchNear  string
	searchLimit int
)

var geocodeSearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Prints the suggestions for a search text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := geocoding.SuggestOptions{Limit: searchLimit}

		if searchNear != "" {
			p, err := spatial.ParseLngLat(searchNear)
			if err != nil {
				return fmt.Errorf("--near: %w", err)
			}

			opts.Proximity = &p
		}

		g, _, closeCache, err := options.newGeocoder(cmd.Context())
		if err != nil {
			return err
		}
		defer closeCache()

		features, err := g.Suggest(cmd.Context(), strings.Join(args, " "), opts)
		if err != nil {
			return err
		}

		for _, f := range features {
			fmt.Printf("%s\t%s\t%s\n", f.Point.LngLat(), f.ID, f.PlaceName)
		}

		return nil
	},
}

var geocodeReverseCmd = &cobra.Command{
	Use:   "reverse [lng,lat…]",
	Short: "Prints the address of each point",
	Long: `Resolves the points given as arguments, or one "lng,lat" pair per line from
stdin, and prints one JSON object per point.

$ echo -56.1645,-34.9011 | locview geocode reverse
{"point":{"lat":-34.9011,"lng":-56.1645},"address":"…"}
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		g, _, closeCache, err := options.newGeocoder(cmd.Context())
		if err != nil {
			return err
		}
		defer closeCache()

		if len(args) > 0 {
			return reverseAll(cmd.Context(), g, args, os.Stdout, nil)
		}

		lines, err := readLines(os.Stdin)
		if err != nil {
			return err
		}

		var bar *progressbar.ProgressBar
		if isatty.IsTerminal(os.Stderr.Fd()) {
			bar = progressbar.NewOptions(len(lines),
				progressbar.OptionSetDescription("Reverse geocoding"),
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}

		return reverseAll(cmd.Context(), g, lines, os.Stdout, bar)
	},
}

var geocodeProbeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Checks the credential against the geocoding service",
	RunE: func(cmd *cobra.Command, _ []string) error {
		g, _, closeCache, err := options.newGeocoder(cmd.Context())
		if err != nil {
			return err
		}
		defer closeCache()

		if err := g.Probe(cmd.Context()); err != nil {
			return err
		}

		log.Println("✅ credential accepted")

		return nil
	},
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}

	return lines, nil
}

type reverseResult struct {
	Input   string         `json:"input,omitempty"`
	Point   *spatial.Point `json:"point,omitempty"`
	Address string         `json:"address,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// reverseAll resolves every "lng,lat" in inputs. Failures are reported per
// line; only a rejected credential stops the run.
func reverseAll(ctx context.Context, g geocoding.Geocoder, inputs []string, w io.Writer, bar *progressbar.ProgressBar) error {
	enc := json.NewEncoder(w)

	for _, in := range inputs {
		res := reverseResult{Input: in}

		p, err := spatial.ParseLngLat(in)
		if err == nil {
			res.Point = &p

			var f *geocoding.Feature

			f, err = g.Reverse(ctx, p)
			if err == nil {
				res.Input = ""
				res.Address = f.PlaceName
			}
		}

		if err != nil {
			res.Error = err.Error()
		}

		if encErr := enc.Encode(res); encErr != nil {
			return encErr
		}

		if bar != nil {
			if barErr := bar.Add(1); barErr != nil {
				log.Printf("updating progress bar: %v", barErr)
			}
		}

		if geocoding.IsCredentialError(err) {
			return err
		}
	}

	return nil
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
	geocodeCmd.AddCommand(geocodeSearchCmd)
	geocodeCmd.AddCommand(geocodeReverseCmd)
	geocodeCmd.AddCommand(geocodeProbeCmd)

	geocodeSearchCmd.Flags().StringVar(&searchNear, "near", "", "Bias results toward this lng,lat")
	geocodeSearchCmd.Flags().IntVar(&searchLimit, "limit", geocoding.DefaultSuggestLimit, "Maximum number of results")
}
