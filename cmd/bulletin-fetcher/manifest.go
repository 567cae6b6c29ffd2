// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/aamu-gdg/bulletin-fetcher/internal/manifest"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Inspect recorded runs (requires --manifest)",
	Long: `Manifest reads the SQLite run manifest written by fetch when --manifest
(or "manifest" in the config file) is set. Use subcommands to list runs,
show the bulletins of one run, or export a run as YAML.`,
}

// --- runs subcommand ---

var manifestRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openManifest()
		if err != nil {
			return err
		}
		defer store.Close()

		runs, err := store.Runs(context.Background())
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, r := range runs {
			status := "completed"
			switch {
			case r.FinishedAt == nil:
				status = "unfinished"
			case r.Error != "":
				status = "failed: " + r.Error
			}
			fmt.Fprintf(w, "%s  %s  %2d bulletin(s)  %s\n",
				r.ID, r.StartedAt.Local().Format(time.DateTime), r.Bulletins, status)
		}
		return nil
	},
}

// --- show subcommand ---

var manifestShowCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show the bulletins recorded for a run (default: latest)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openManifest()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		runID, err := resolveRunID(ctx, store, args)
		if err != nil {
			return err
		}
		bulletins, err := store.Bulletins(ctx, runID)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "run %s\n", runID)
		for _, b := range bulletins {
			fmt.Fprintf(w, "%s  HTTP %d  %8d bytes  %s\n", b.Range, b.StatusCode, b.Bytes, b.PDFPath)
		}
		return nil
	},
}

// --- export subcommand ---

var manifestExportCmd = &cobra.Command{
	Use:   "export [run-id]",
	Short: "Write a run and its bulletins as YAML (default: latest)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openManifest()
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		runID, err := resolveRunID(ctx, store, args)
		if err != nil {
			return err
		}
		return store.ExportYAML(ctx, runID, cmd.OutOrStdout())
	},
}

func init() {
	manifestCmd.AddCommand(manifestRunsCmd, manifestShowCmd, manifestExportCmd)
	rootCmd.AddCommand(manifestCmd)
}

func openManifest() (*manifest.Store, error) {
	cfg, err := fetchConfig()
	if err != nil {
		return nil, err
	}
	if cfg.ManifestPath == "" {
		return nil, fmt.Errorf("no manifest configured: pass --manifest or set manifest in the config file")
	}
	return manifest.Open(cfg.ManifestPath)
}

func resolveRunID(ctx context.Context, store *manifest.Store, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return store.Latest(ctx)
}
