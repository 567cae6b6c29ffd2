// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aamu-gdg/bulletin-fetcher/internal/catalog"
	"github.com/aamu-gdg/bulletin-fetcher/internal/httputil"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Compare the catalog page's bulletin links with the download list",
	Long: `Discover scans the university catalog page for undergraduate bulletin
links and prints the ranges the page offers that the download list lacks,
and the listed ranges the page no longer links. It never downloads bulletins.`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	cfg, err := catalogConfig()
	if err != nil {
		return err
	}

	client := httputil.NewClient(cfg.Timeout)
	links, err := catalog.Discover(context.Background(), client, cfg.PageURL, cfg.UserAgent)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "found %d bulletin link(s) on %s\n", len(links), cfg.PageURL)
	for _, l := range catalog.Unknown(links) {
		fmt.Fprintf(w, "new:     %s\t%s\n", l.Range, l.URL)
	}
	for _, r := range catalog.Missing(links) {
		fmt.Fprintf(w, "missing: %s\n", r)
	}
	return nil
}
