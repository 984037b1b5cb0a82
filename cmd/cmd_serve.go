// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcodagnone/locview/locations"
	"github.com/jcodagnone/locview/mapview"
	"github.com/jcodagnone/locview/spatial"
	"github.com/jcodagnone/locview/viewer"
	"github.com/spf13/cobra"
)

type serveOptions struct {
	Addr         string
	Style        string
	Center       string
	SessionTTL   time.Duration
	Debounce     time.Duration
	SuggestLimit int
}

var serveOpts = &serveOptions{}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the location viewer",
	RunE: func(cmd *cobra.Command, _ []string) error {
		center, err := spatial.ParseLngLat(serveOpts.Center)
		if err != nil {
			return fmt.Errorf("--center: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, credential, closeCache, err := options.newGeocoder(ctx)
		if err != nil {
			return err
		}
		defer closeCache()

		s, err := viewer.NewServer(g, viewer.Options{
			Addr:          serveOpts.Addr,
			Credential:    credential,
			MapStyle:      serveOpts.Style,
			DefaultCenter: center,
			SessionTTL:    serveOpts.SessionTTL,
			Debounce:      serveOpts.Debounce,
			SuggestLimit:  serveOpts.SuggestLimit,
		})
		if err != nil {
			return err
		}

		err = s.Run(ctx)
		if errors.Is(err, http.ErrServerClosed) || errors.Is(err, context.Canceled) {
			return nil
		}

		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	f := serveCmd.Flags()
	f.StringVar(&serveOpts.Addr, "addr", viewer.DefaultAddr, "Address to listen on")
	f.StringVar(&serveOpts.Style, "style", mapview.DefaultStyle, "Map style URL")
	f.StringVar(&serveOpts.Center, "center", mapview.DefaultCenter.LngLat(), "Default map center as lng,lat")
	f.DurationVar(&serveOpts.SessionTTL, "session-ttl", viewer.DefaultSessionTTL, "Idle time before a session is dropped")
	f.DurationVar(&serveOpts.Debounce, "debounce", locations.DefaultDebounce, "Quiet period before a search is sent")
	f.IntVar(&serveOpts.SuggestLimit, "suggestions", 5, "Maximum number of search suggestions")
}
