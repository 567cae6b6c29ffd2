// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bulletin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aamu-gdg/bulletin-fetcher/pkg/types"
)

const fakePDFContent = "%PDF-1.4 fake"

// fakeDoer answers requests without a network. respond decides the
// outcome for each URL; calls records the URLs in request order.
type fakeDoer struct {
	mu      sync.Mutex
	calls   []string
	respond func(url string) (*http.Response, error)
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req.URL.String())
	f.mu.Unlock()
	return f.respond(req.URL.String())
}

func newResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/pdf"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// payloadDoer returns body with status 200 for every URL.
func payloadDoer(body string) *fakeDoer {
	return &fakeDoer{respond: func(string) (*http.Response, error) {
		return newResponse(http.StatusOK, body), nil
	}}
}

func testConfig(dir string) types.FetchConfig {
	return types.FetchConfig{
		BaseURL: DefaultBaseURL,
		OutDir:  dir,
	}
}

// pdfFiles lists the file names in dir.
func pdfFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestFetchAllWritesEveryRange(t *testing.T) {
	dir := t.TempDir()
	doer := payloadDoer(fakePDFContent)
	var buf bytes.Buffer

	result, err := FetchAll(context.Background(), doer, YearRanges(), testConfig(dir), nil, &buf)
	require.NoError(t, err)

	assert.Equal(t, 18, result.Written)
	assert.Equal(t, 0, result.NonOK)
	assert.Equal(t, 18, result.Total())
	assert.Len(t, pdfFiles(t, dir), 18)

	for _, r := range YearRanges() {
		data, err := os.ReadFile(filepath.Join(dir, "Bulletin-"+string(r)+".pdf"))
		require.NoError(t, err, "range %s", r)
		assert.Equal(t, fakePDFContent, string(data), "range %s", r)
	}

	// Requests follow the fixed order, one per range.
	require.Len(t, doer.calls, 18)
	for i, r := range YearRanges() {
		assert.Equal(t, URL(DefaultBaseURL, r), doer.calls[i])
	}

	assert.Equal(t, CompletionMessage+"\n", buf.String())
}

func TestFetchAllSavesErrorBody(t *testing.T) {
	dir := t.TempDir()
	missing := URL(DefaultBaseURL, "2014-2015")
	doer := &fakeDoer{respond: func(url string) (*http.Response, error) {
		if url == missing {
			return newResponse(http.StatusNotFound, "not found"), nil
		}
		return newResponse(http.StatusOK, fakePDFContent), nil
	}}
	var buf bytes.Buffer

	result, err := FetchAll(context.Background(), doer, YearRanges(), testConfig(dir), nil, &buf)
	require.NoError(t, err)

	assert.Equal(t, 18, result.Written)
	assert.Equal(t, 1, result.NonOK)

	data, err := os.ReadFile(filepath.Join(dir, "Bulletin-2014-2015.pdf"))
	require.NoError(t, err)
	assert.Equal(t, []byte("not found"), data)

	assert.Equal(t, CompletionMessage+"\n", buf.String())
}

func TestFetchAllStopsOnConnectionError(t *testing.T) {
	dir := t.TempDir()
	ranges := YearRanges()
	fifth := URL(DefaultBaseURL, ranges[4])
	connErr := errors.New("dial tcp: connection refused")
	doer := &fakeDoer{respond: func(url string) (*http.Response, error) {
		if url == fifth {
			return nil, connErr
		}
		return newResponse(http.StatusOK, fakePDFContent), nil
	}}
	var buf bytes.Buffer

	result, err := FetchAll(context.Background(), doer, ranges, testConfig(dir), nil, &buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, connErr)
	assert.Contains(t, err.Error(), string(ranges[4]))

	assert.Equal(t, 4, result.Written)
	assert.Len(t, doer.calls, 5)

	files := pdfFiles(t, dir)
	require.Len(t, files, 4)
	for _, r := range ranges[:4] {
		assert.Contains(t, files, FileName(r))
	}
	for _, r := range ranges[4:] {
		assert.NotContains(t, files, FileName(r))
	}

	assert.Empty(t, buf.String(), "completion message must not be printed after an error")
}

func TestFetchAllIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	doer := &fakeDoer{respond: func(url string) (*http.Response, error) {
		return newResponse(http.StatusOK, "body of "+url), nil
	}}

	_, err := FetchAll(context.Background(), doer, YearRanges(), testConfig(dir), nil, io.Discard)
	require.NoError(t, err)

	first := make(map[string][]byte)
	for _, name := range pdfFiles(t, dir) {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		first[name] = data
	}

	_, err = FetchAll(context.Background(), doer, YearRanges(), testConfig(dir), nil, io.Discard)
	require.NoError(t, err)

	second := pdfFiles(t, dir)
	require.Len(t, second, len(first))
	for _, name := range second {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, first[name], data, "file %s", name)
	}
}

func TestFetchAllOverwritesLongerFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Bulletin-2024-2025.pdf")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x", 1024)), 0o644))

	_, err := FetchAll(context.Background(), payloadDoer("short"), []YearRange{"2024-2025"}, testConfig(dir), nil, io.Discard)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "short", string(data))
}

func TestFetchAllMissingOutDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Pdfstore")
	doer := payloadDoer(fakePDFContent)
	var buf bytes.Buffer

	result, err := FetchAll(context.Background(), doer, YearRanges(), testConfig(dir), nil, &buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 0, result.Written)
	assert.Len(t, doer.calls, 1)
	assert.Empty(t, buf.String())

	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr), "output directory must not be created")
}

func TestFetchAllCreateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "Pdfstore")
	cfg := testConfig(dir)
	cfg.CreateDir = true

	result, err := FetchAll(context.Background(), payloadDoer(fakePDFContent), YearRanges(), cfg, nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 18, result.Written)
	assert.Len(t, pdfFiles(t, dir), 18)
}

type memRecorder struct {
	recorded []*types.Bulletin
	failAt   int
}

func (m *memRecorder) Record(_ context.Context, b *types.Bulletin) error {
	if m.failAt > 0 && len(m.recorded)+1 == m.failAt {
		return errors.New("database is locked")
	}
	m.recorded = append(m.recorded, b)
	return nil
}

func TestFetchAllRecordsBulletins(t *testing.T) {
	fixed := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	origNow := now
	now = func() time.Time { return fixed }
	defer func() { now = origNow }()

	dir := t.TempDir()
	rec := &memRecorder{}

	_, err := FetchAll(context.Background(), payloadDoer(fakePDFContent), YearRanges()[:3], testConfig(dir), rec, io.Discard)
	require.NoError(t, err)

	require.Len(t, rec.recorded, 3)
	b := rec.recorded[0]
	assert.Equal(t, "2024-2025", b.Range)
	assert.Equal(t, URL(DefaultBaseURL, "2024-2025"), b.SourceURL)
	assert.Equal(t, filepath.Join(dir, "Bulletin-2024-2025.pdf"), b.PDFPath)
	assert.Equal(t, http.StatusOK, b.StatusCode)
	assert.Equal(t, "application/pdf", b.ContentType)
	assert.Equal(t, int64(len(fakePDFContent)), b.Bytes)
	assert.Len(t, b.SHA256, 64)
	assert.Equal(t, fixed, b.FetchedAt)
}

func TestFetchAllStopsOnRecorderError(t *testing.T) {
	dir := t.TempDir()
	rec := &memRecorder{failAt: 2}
	var buf bytes.Buffer

	result, err := FetchAll(context.Background(), payloadDoer(fakePDFContent), YearRanges(), testConfig(dir), rec, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "recording 2023-2024")
	assert.Equal(t, 2, result.Written)
	assert.Len(t, pdfFiles(t, dir), 2)
	assert.Empty(t, buf.String())
}

func TestFetchAllDelay(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.DownloadDelay = 30 * time.Millisecond

	start := time.Now()
	_, err := FetchAll(context.Background(), payloadDoer(fakePDFContent), YearRanges()[:3], cfg, nil, io.Discard)
	require.NoError(t, err)

	// Three requests, two gaps.
	assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
}

func TestFetchAllCancelledDuringDelay(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.DownloadDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := FetchAll(ctx, payloadDoer(fakePDFContent), YearRanges(), cfg, nil, io.Discard)
	require.Error(t, err)
	assert.Equal(t, 0, result.Written)
}

func TestFetchAllAgainstServer(t *testing.T) {
	var mu sync.Mutex
	var paths []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		if r.URL.Path == "/bulletins/undergraduate-bulletin-2003-2005.pdf" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		fmt.Fprintf(w, "%s %s", fakePDFContent, r.URL.Path)
	}))
	defer ts.Close()

	dir := t.TempDir()
	cfg := testConfig(dir)
	cfg.BaseURL = ts.URL + "/bulletins/"

	result, err := FetchAll(context.Background(), ts.Client(), YearRanges(), cfg, nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 18, result.Written)
	assert.Equal(t, 1, result.NonOK)
	assert.Len(t, paths, 18)

	data, err := os.ReadFile(filepath.Join(dir, "Bulletin-2024-2025.pdf"))
	require.NoError(t, err)
	assert.Equal(t, fakePDFContent+" /bulletins/undergraduate-bulletin-2024-2025.pdf", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "Bulletin-2003-2005.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "404 page not found\n", string(data))
}

func TestFetchBulletin(t *testing.T) {
	dir := t.TempDir()

	b, err := FetchBulletin(context.Background(), payloadDoer(fakePDFContent), "2011-2012", testConfig(dir))
	require.NoError(t, err)
	assert.True(t, b.OK())
	assert.Equal(t, "2011-2012", b.Range)

	data, err := os.ReadFile(b.PDFPath)
	require.NoError(t, err)
	assert.Equal(t, fakePDFContent, string(data))
}
