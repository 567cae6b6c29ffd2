// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aamu-gdg/bulletin-fetcher/internal/bulletin"
	"github.com/aamu-gdg/bulletin-fetcher/internal/httputil"
	"github.com/aamu-gdg/bulletin-fetcher/internal/manifest"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [ranges...]",
	Short: "Download bulletins (all of them when no range is given)",
	Long: `Fetch downloads the named bulletins, or every bulletin when no range is
given, in the fixed catalog order. Ranges use the YYYY-YYYY form and must be
one of the ranges listed by "bulletin-fetcher list".`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	ranges, err := bulletin.Select(args)
	if err != nil {
		return err
	}
	cfg, err := fetchConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	client := httputil.NewClient(cfg.Timeout)

	if cfg.ManifestPath == "" {
		_, err := bulletin.FetchAll(ctx, client, ranges, cfg, nil, cmd.OutOrStdout())
		return err
	}

	store, err := manifest.Open(cfg.ManifestPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runID, err := store.StartRun(ctx)
	if err != nil {
		return err
	}
	slog.Debug("recording run", "run", runID, "manifest", cfg.ManifestPath)

	_, fetchErr := bulletin.FetchAll(ctx, client, ranges, cfg, store.Recorder(runID), cmd.OutOrStdout())
	if err := store.FinishRun(ctx, runID, fetchErr); err != nil {
		if fetchErr != nil {
			return fmt.Errorf("%w (and %v)", fetchErr, err)
		}
		return err
	}
	return fetchErr
}
