// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aamu-gdg/bulletin-fetcher/internal/bulletin"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print every bulletin range with its URL and output file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := fetchConfig()
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, r := range bulletin.YearRanges() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r, bulletin.URL(cfg.BaseURL, r), bulletin.Path(cfg.OutDir, r))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
