// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by commands that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout. Zero means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with requests. Empty leaves
	// the Go default in place.
	UserAgent string `json:"user_agent,omitempty" yaml:"user_agent,omitempty" mapstructure:"user_agent"`
}

// FetchConfig holds settings for the bulletin batch.
type FetchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the directory URL the bulletin filenames are appended to.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// OutDir is the directory bulletins are written to (default "Pdfstore").
	OutDir string `json:"out_dir" yaml:"out_dir" mapstructure:"out_dir"`

	// CreateDir creates OutDir when it is missing. Off by default: a
	// missing directory fails the batch.
	CreateDir bool `json:"create_dir" yaml:"create_dir" mapstructure:"create_dir"`

	// DownloadDelay is the minimum spacing between consecutive requests.
	// Zero disables pacing.
	DownloadDelay time.Duration `json:"delay" yaml:"delay" mapstructure:"delay"`

	// ManifestPath is the SQLite file runs are recorded in. Empty disables
	// the manifest.
	ManifestPath string `json:"manifest,omitempty" yaml:"manifest,omitempty" mapstructure:"manifest"`
}

// CatalogConfig holds settings for catalog page discovery.
type CatalogConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// PageURL is the catalog page scanned for bulletin links.
	PageURL string `json:"catalog_url" yaml:"catalog_url" mapstructure:"catalog_url"`
}
