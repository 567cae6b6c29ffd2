// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bulletin downloads the university's undergraduate bulletins and
// saves each one under a predictable file name.
//
// The batch is strictly sequential and does not judge responses: whatever
// body the server returns, including an error page, is written to the
// bulletin's file. A transport or filesystem failure stops the batch.
package bulletin

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/aamu-gdg/bulletin-fetcher/internal/httputil"
	"github.com/aamu-gdg/bulletin-fetcher/pkg/types"
)

// CompletionMessage is printed once every range has been processed.
const CompletionMessage = "✅ All downloads attempted."

// Recorder persists the outcome of each fetched bulletin.
type Recorder interface {
	Record(ctx context.Context, b *types.Bulletin) error
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Written   int
	NonOK     int
	Bulletins []*types.Bulletin
}

// Total returns the number of ranges processed.
func (r BatchResult) Total() int {
	return len(r.Bulletins)
}

// now is replaced in tests.
var now = time.Now

// FetchBulletin downloads the bulletin for r and writes the response body
// to its file, creating or truncating it. The HTTP status is recorded in
// the returned Bulletin but never checked.
func FetchBulletin(ctx context.Context, client httputil.Doer, r YearRange, cfg types.FetchConfig) (*types.Bulletin, error) {
	url := URL(cfg.BaseURL, r)
	path := Path(cfg.OutDir, r)

	resp, err := httputil.Get(ctx, client, url, cfg.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", r, err)
	}

	if err := os.WriteFile(path, resp.Body, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}

	sum := sha256.Sum256(resp.Body)
	return &types.Bulletin{
		Range:       string(r),
		SourceURL:   url,
		PDFPath:     path,
		StatusCode:  resp.StatusCode,
		ContentType: resp.ContentType,
		Bytes:       int64(len(resp.Body)),
		SHA256:      hex.EncodeToString(sum[:]),
		FetchedAt:   now().UTC(),
	}, nil
}

// FetchAll downloads every range in order, one at a time. It stops at the
// first error and returns the bulletins written so far; the completion
// message is written to w only when the loop finishes. rec may be nil.
func FetchAll(ctx context.Context, client httputil.Doer, ranges []YearRange, cfg types.FetchConfig, rec Recorder, w io.Writer) (BatchResult, error) {
	var result BatchResult

	if cfg.CreateDir {
		dir := cfg.OutDir
		if dir == "" {
			dir = DefaultOutDir
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return result, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	limiter := newLimiter(cfg.DownloadDelay)

	for _, r := range ranges {
		if err := limiter.Wait(ctx); err != nil {
			return result, fmt.Errorf("waiting to fetch %s: %w", r, err)
		}

		b, err := FetchBulletin(ctx, client, r, cfg)
		if err != nil {
			return result, err
		}
		result.Written++
		if !b.OK() {
			result.NonOK++
		}
		result.Bulletins = append(result.Bulletins, b)

		slog.Debug("fetched",
			slog.String("range", b.Range),
			slog.Int("status", b.StatusCode),
			slog.Int64("bytes", b.Bytes),
			slog.String("path", b.PDFPath),
		)

		if rec != nil {
			if err := rec.Record(ctx, b); err != nil {
				return result, fmt.Errorf("recording %s: %w", r, err)
			}
		}
	}

	slog.Info("batch summary",
		slog.Int("written", result.Written),
		slog.Int("non_ok", result.NonOK),
		slog.Int("total", result.Total()),
	)
	fmt.Fprintln(w, CompletionMessage)
	return result, nil
}

// newLimiter spaces requests at least delay apart. The first request is
// never delayed; a zero delay disables pacing.
func newLimiter(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(delay), 1)
}
