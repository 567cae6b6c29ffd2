// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the bulletin-fetcher CLI.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aamu-gdg/bulletin-fetcher/internal/bulletin"
	"github.com/aamu-gdg/bulletin-fetcher/internal/catalog"
	"github.com/aamu-gdg/bulletin-fetcher/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd downloads every bulletin when run without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "bulletin-fetcher",
	Short: "Download the AAMU undergraduate bulletins",
	Long: `bulletin-fetcher downloads every undergraduate bulletin published by
Alabama A&M University, from 2000-2002 through 2024-2025, and saves each one
as Pdfstore/Bulletin-<range>.pdf.

Bulletins are fetched one at a time in a fixed order. Whatever the server
returns is saved, error pages included. A network or filesystem error stops
the batch. The output directory must already exist unless --create-dir is
given.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(viper.GetBool("verbose"))
		if used := viper.ConfigFileUsed(); used != "" {
			slog.Debug("using config file", "path", used)
		}
		return nil
	},
	RunE: runFetch,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./bulletin-fetcher.yaml or ~/.config/bulletin-fetcher/config.yaml)")
	pf.BoolP("verbose", "v", false, "log progress to stderr")
	pf.String("base-url", bulletin.DefaultBaseURL, "directory URL the bulletin files are published under")
	pf.String("out-dir", bulletin.DefaultOutDir, "directory bulletins are written to")
	pf.Bool("create-dir", false, "create the output directory if it is missing")
	pf.Duration("timeout", 0, "HTTP request timeout (0 waits forever)")
	pf.Duration("delay", 0, "minimum delay between consecutive downloads")
	pf.String("user-agent", "", "User-Agent header (default: Go's)")
	pf.String("manifest", "", "SQLite file to record runs in (disabled when empty)")
	pf.String("catalog-url", catalog.DefaultPageURL, "catalog page scanned by discover")

	for key, flag := range map[string]string{
		"verbose":     "verbose",
		"base_url":    "base-url",
		"out_dir":     "out-dir",
		"create_dir":  "create-dir",
		"timeout":     "timeout",
		"delay":       "delay",
		"user_agent":  "user-agent",
		"manifest":    "manifest",
		"catalog_url": "catalog-url",
	} {
		if err := viper.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("bulletin-fetcher")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "bulletin-fetcher"))
		}
	}

	viper.SetEnvPrefix("BULLETIN_FETCHER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Error: reading config:", err)
			os.Exit(1)
		}
	}
}

// setupLogging routes slog to stderr. Without verbose only warnings and
// errors are shown, so stdout and stderr stay quiet on a clean run.
func setupLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// fetchConfig builds the batch settings from flags, environment and config file.
func fetchConfig() (types.FetchConfig, error) {
	var cfg types.FetchConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// catalogConfig builds the discovery settings.
func catalogConfig() (types.CatalogConfig, error) {
	var cfg types.CatalogConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
