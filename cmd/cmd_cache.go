// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/jcodagnone/locview/utils/textutils"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manages the DuckDB geocoding cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints the number of cached answers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := options.openDuckDBCache()
		if err != nil {
			return err
		}
		defer c.Close()

		stats, err := c.Stats(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Entries: %s\n", textutils.FormatInt(stats.Entries))

		if stats.Entries > 0 {
			fmt.Printf("Oldest:  %s\n", stats.Oldest.Format(time.DateTime))
			fmt.Printf("Newest:  %s\n", stats.Newest.Format(time.DateTime))
		}

		return nil
	},
}

var purgeOlderThan time.Duration

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Deletes cached answers older than --older-than",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := options.openDuckDBCache()
		if err != nil {
			return err
		}
		defer c.Close()

		n, err := c.Purge(cmd.Context(), time.Now().Add(-purgeOlderThan))
		if err != nil {
			return err
		}

		log.Printf("🧹 purged %s cached answers", textutils.FormatInt(n))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePurgeCmd)

	cachePurgeCmd.Flags().DurationVar(&purgeOlderThan, "older-than", 0, "Keep answers younger than this (0 purges everything)")
}
