// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists conversion runs in a SQLite ledger so past
// batches can be inspected and exported.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/chriscod3/pdf-to-audio-converter/pkg/types"
)

// Run is one recorded conversion batch.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
	Language   string    `json:"language" yaml:"language"`
	Provider   string    `json:"provider" yaml:"provider"`
	Format     string    `json:"format" yaml:"format"`
	Succeeded  int       `json:"succeeded" yaml:"succeeded"`
	Failed     int       `json:"failed" yaml:"failed"`

	Results []Result `json:"results,omitempty" yaml:"results,omitempty"`
}

// Result is one recorded file conversion within a run.
type Result struct {
	SourcePath string `json:"source_path" yaml:"source_path"`
	OutputPath string `json:"output_path" yaml:"output_path"`
	Status     string `json:"status" yaml:"status"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
	Pages      int    `json:"pages" yaml:"pages"`
	DurationMS int64  `json:"duration_ms" yaml:"duration_ms"`
}

// Store manages the run-history SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path, creating the schema
// and parent directories if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
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
			finished_at TEXT NOT NULL,
			language TEXT NOT NULL,
			provider TEXT NOT NULL,
			format TEXT NOT NULL,
			succeeded INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			source_path TEXT NOT NULL,
			output_path TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			pages INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordRun stores a finished run and its per-file results in one
// transaction.
func (s *Store) RecordRun(run Run, results []types.ConversionResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	summary := types.Summarize(results)
	_, err = tx.Exec(
		`INSERT INTO runs (id, started_at, finished_at, language, provider, format, succeeded, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.StartedAt.UTC().Format(time.RFC3339),
		run.FinishedAt.UTC().Format(time.RFC3339),
		run.Language, run.Provider, run.Format,
		summary.Succeeded, summary.Failed,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	for _, r := range results {
		_, err = tx.Exec(
			`INSERT INTO results (run_id, source_path, output_path, status, error, pages, duration_ms)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, r.Job.SourcePath, r.Job.OutputPath,
			string(r.Status), r.ErrorDetail(), r.Pages, r.Duration.Milliseconds(),
		)
		if err != nil {
			return fmt.Errorf("inserting result for %s: %w", r.Job.SourcePath, err)
		}
	}

	return tx.Commit()
}

// ListRuns returns the most recent runs, newest first, without per-file
// results. A non-positive limit returns all runs.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as "no limit".
	}

	rows, err := s.db.Query(
		`SELECT id, started_at, finished_at, language, provider, format, succeeded, failed
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &started, &finished, &r.Language, &r.Provider, &r.Format, &r.Succeeded, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// results returns the per-file results of one run.
func (s *Store) results(runID string) ([]Result, error) {
	rows, err := s.db.Query(
		`SELECT source_path, output_path, status, error, pages, duration_ms
		 FROM results WHERE run_id = ? ORDER BY source_path`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying results for %s: %w", runID, err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.SourcePath, &r.OutputPath, &r.Status, &r.Error, &r.Pages, &r.DurationMS); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Export writes the full history (runs with per-file results) to
// runs.yaml and runs.json in dir.
func (s *Store) Export(dir string) error {
	runs, err := s.ListRuns(0)
	if err != nil {
		return err
	}
	for i := range runs {
		results, err := s.results(runs[i].ID)
		if err != nil {
			return err
		}
		runs[i].Results = results
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	yamlData, err := yaml.Marshal(runs)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "runs.yaml"), yamlData, 0o644); err != nil {
		return fmt.Errorf("writing runs.yaml: %w", err)
	}

	jsonData, err := json.MarshalIndent(runs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "runs.json"), jsonData, 0o644); err != nil {
		return fmt.Errorf("writing runs.json: %w", err)
	}

	return nil
}
