// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest records bulletin batch runs in a SQLite database so a
// later command can tell which bulletins were fetched, with what status,
// and whether the run finished.
package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/aamu-gdg/bulletin-fetcher/pkg/types"
)

// ErrNoRuns is returned by Latest when the manifest is empty.
var ErrNoRuns = errors.New("manifest has no runs")

// Run is one batch invocation.
type Run struct {
	ID         string     `json:"id" yaml:"id"`
	StartedAt  time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty" yaml:"error,omitempty"`
	Bulletins  int        `json:"bulletins" yaml:"bulletins"`
}

// Completed reports whether the run reached the end of the batch.
func (r Run) Completed() bool {
	return r.FinishedAt != nil && r.Error == ""
}

// Store manages the manifest database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the manifest database at path, creating its parent
// directory and schema when needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating manifest directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			error TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS bulletins (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			year_range TEXT NOT NULL,
			source_url TEXT NOT NULL,
			pdf_path TEXT NOT NULL,
			status_code INTEGER NOT NULL,
			content_type TEXT,
			bytes INTEGER NOT NULL,
			sha256 TEXT NOT NULL,
			fetched_at TEXT NOT NULL,
			UNIQUE(run_id, year_range)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bulletins_run_id ON bulletins(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// StartRun inserts a new run and returns its ID.
func (s *Store) StartRun(ctx context.Context) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		id, formatTime(time.Now()),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// FinishRun marks a run as ended. A non-nil runErr is stored as the
// run's error text.
func (s *Store) FinishRun(ctx context.Context, runID string, runErr error) error {
	var msg sql.NullString
	if runErr != nil {
		msg = sql.NullString{String: runErr.Error(), Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, error = ? WHERE id = ?`,
		formatTime(time.Now()), msg, runID,
	)
	if err != nil {
		return fmt.Errorf("finishing run %s: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finishing run %s: no such run", runID)
	}
	return nil
}

// Record stores b under runID. Recording the same range twice in one run
// replaces the earlier row.
func (s *Store) Record(ctx context.Context, runID string, b *types.Bulletin) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO bulletins
			(run_id, year_range, source_url, pdf_path, status_code, content_type, bytes, sha256, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, b.Range, b.SourceURL, b.PDFPath, b.StatusCode, b.ContentType, b.Bytes, b.SHA256,
		formatTime(b.FetchedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting bulletin %s: %w", b.Range, err)
	}
	return nil
}

// RunRecorder binds a Store to one run.
type RunRecorder struct {
	store *Store
	runID string
}

// Recorder returns a recorder that writes every bulletin under runID.
func (s *Store) Recorder(runID string) *RunRecorder {
	return &RunRecorder{store: s, runID: runID}
}

// Record stores b under the recorder's run.
func (r *RunRecorder) Record(ctx context.Context, b *types.Bulletin) error {
	return r.store.Record(ctx, r.runID, b)
}

// RunID returns the run the recorder writes to.
func (r *RunRecorder) RunID() string {
	return r.runID
}

// Runs lists every run, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.started_at, r.finished_at, r.error, COUNT(b.seq)
		FROM runs r LEFT JOIN bulletins b ON b.run_id = r.id
		GROUP BY r.id
		ORDER BY r.started_at DESC, r.rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			started    string
			finished   sql.NullString
			errMessage sql.NullString
		)
		if err := rows.Scan(&run.ID, &started, &finished, &errMessage, &run.Bulletins); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.StartedAt = parseTime(started)
		if finished.Valid {
			t := parseTime(finished.String)
			run.FinishedAt = &t
		}
		run.Error = errMessage.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Latest returns the ID of the most recent run.
func (s *Store) Latest(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM runs ORDER BY started_at DESC, rowid DESC LIMIT 1`,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoRuns
	}
	if err != nil {
		return "", fmt.Errorf("querying latest run: %w", err)
	}
	return id, nil
}

// Bulletins returns the bulletins recorded for runID in fetch order.
func (s *Store) Bulletins(ctx context.Context, runID string) ([]types.Bulletin, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT year_range, source_url, pdf_path, status_code, content_type, bytes, sha256, fetched_at
		FROM bulletins WHERE run_id = ? ORDER BY seq`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying bulletins: %w", err)
	}
	defer rows.Close()

	var out []types.Bulletin
	for rows.Next() {
		var (
			b           types.Bulletin
			contentType sql.NullString
			fetched     string
		)
		if err := rows.Scan(&b.Range, &b.SourceURL, &b.PDFPath, &b.StatusCode, &contentType, &b.Bytes, &b.SHA256, &fetched); err != nil {
			return nil, fmt.Errorf("scanning bulletin: %w", err)
		}
		b.ContentType = contentType.String
		b.FetchedAt = parseTime(fetched)
		out = append(out, b)
	}
	return out, rows.Err()
}

// timeLayout has fixed-width fractional seconds so stored values sort
// lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}
