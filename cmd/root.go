// Package cmd defines and implements the CLI commands for the ingest executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Listing ingestion pipeline for the ImovelHub marketplace.",
		Long: `ingest crawls partner real-estate agency sites, normalizes their
listing cards into the canonical schema, deduplicates by reference code,
optionally enriches records through the external scraping service, and
reconciles the results into the marketplace database.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is environment only)")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newSourcesCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
