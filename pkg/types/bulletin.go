// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Bulletin records the outcome of fetching one undergraduate bulletin.
// The body is written to PDFPath whatever StatusCode the server returned.
type Bulletin struct {
	// Range is the academic-year range, e.g. "2024-2025".
	Range string `json:"range" yaml:"range"`

	// SourceURL is the URL the bulletin was requested from.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// PDFPath is the local file the response body was written to.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"status_code" yaml:"status_code"`

	// ContentType is the Content-Type header of the response, if any.
	ContentType string `json:"content_type,omitempty" yaml:"content_type,omitempty"`

	// Bytes is the number of body bytes written.
	Bytes int64 `json:"bytes" yaml:"bytes"`

	// SHA256 is the hex digest of the body.
	SHA256 string `json:"sha256" yaml:"sha256"`

	// FetchedAt is when the response was received.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// OK reports whether the server answered with a 2xx status.
func (b Bulletin) OK() bool {
	return b.StatusCode >= 200 && b.StatusCode < 300
}
