// Package indexdb keeps a sqlite index of estimation runs so bounds can
// be looked up and compared across sweeps without replaying configs.
package indexdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"gridbound.ai/internal/estimator"
)

type DB struct {
	db *sql.DB
}

// RunRow is one indexed estimation.
type RunRow struct {
	RunID     string  `json:"run_id"`
	CreatedAt string  `json:"created_at"`
	Tag       string  `json:"tag,omitempty"`
	Source    string  `json:"source,omitempty"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Regions   int     `json:"regions"`
	Total     float64 `json:"total"`
}

func Open(path string) (*DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error { return d.db.Close() }

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			tag TEXT,
			source TEXT,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			regions INTEGER NOT NULL,
			total REAL NOT NULL,
			report_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_tag ON runs(tag);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun indexes one run with its full report. Synchronous: callers
// run at CLI/service cadence, not at a sim tick rate.
func (d *DB) InsertRun(row RunRow, rep estimator.Report) error {
	repJSON, err := json.Marshal(rep)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(
		`INSERT INTO runs (run_id, created_at, tag, source, width, height, regions, total, report_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.RunID, row.CreatedAt, row.Tag, row.Source, row.Width, row.Height, row.Regions, row.Total, string(repJSON),
	)
	return err
}

// RecentRuns returns the newest runs, newest first.
func (d *DB) RecentRuns(limit int) ([]RunRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.Query(
		`SELECT run_id, created_at, tag, source, width, height, regions, total
		 FROM runs ORDER BY created_at DESC, run_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRow
	for rows.Next() {
		var r RunRow
		var tag, source sql.NullString
		if err := rows.Scan(&r.RunID, &r.CreatedAt, &tag, &source, &r.Width, &r.Height, &r.Regions, &r.Total); err != nil {
			return nil, err
		}
		r.Tag = tag.String
		r.Source = source.String
		out = append(out, r)
	}
	return out, rows.Err()
}

// Report loads the stored report of one run.
func (d *DB) Report(runID string) (estimator.Report, error) {
	var raw string
	err := d.db.QueryRow(`SELECT report_json FROM runs WHERE run_id = ?`, runID).Scan(&raw)
	if err != nil {
		return estimator.Report{}, err
	}
	var rep estimator.Report
	if err := json.Unmarshal([]byte(raw), &rep); err != nil {
		return estimator.Report{}, fmt.Errorf("run %s: report: %w", runID, err)
	}
	return rep, nil
}
