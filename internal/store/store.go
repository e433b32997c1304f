// Package store keeps a local history of conversion runs in SQLite, so
// successive imports of the same scope can be compared and audited.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	started_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP NOT NULL,
	scope         TEXT NOT NULL,
	type_filter   TEXT NOT NULL DEFAULT '',
	source        TEXT NOT NULL,
	records       INTEGER NOT NULL,
	converted     INTEGER NOT NULL,
	duplicates    INTEGER NOT NULL,
	rank_adjusted INTEGER NOT NULL,
	relocated     INTEGER NOT NULL,
	failed_scopes INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_scope ON runs (scope, started_at);
`

// RunRecord is one logged conversion run.
type RunRecord struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Scope      string
	TypeFilter string
	Source     string // "file" or "wfs"

	Records      int
	Converted    int
	Duplicates   int
	RankAdjusted int
	Relocated    int
	FailedScopes int
}

// Store wraps the run-history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrapf(err, "store: open %s", path)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "store: %s", pragma)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, eris.Wrap(err, "store: create schema")
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun inserts a finished run. The identifier is assigned here and
// returned through the record.
func (s *Store) RecordRun(ctx context.Context, run *RunRecord) error {
	run.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, started_at, finished_at, scope, type_filter, source,
			records, converted, duplicates, rank_adjusted, relocated, failed_scopes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.FinishedAt, run.Scope, run.TypeFilter, run.Source,
		run.Records, run.Converted, run.Duplicates, run.RankAdjusted, run.Relocated, run.FailedScopes,
	)
	if err != nil {
		return eris.Wrap(err, "store: insert run")
	}
	return nil
}

// ListRuns returns the most recent runs, newest first. A scope narrows the
// listing; empty lists everything.
func (s *Store) ListRuns(ctx context.Context, scope string, limit int) ([]RunRecord, error) {
	query := `
		SELECT id, started_at, finished_at, scope, type_filter, source,
		       records, converted, duplicates, rank_adjusted, relocated, failed_scopes
		FROM runs`
	args := []any{}
	if scope != "" {
		query += " WHERE scope = ?"
		args = append(args, scope)
	}
	query += " ORDER BY started_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "store: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		err := rows.Scan(
			&r.ID, &r.StartedAt, &r.FinishedAt, &r.Scope, &r.TypeFilter, &r.Source,
			&r.Records, &r.Converted, &r.Duplicates, &r.RankAdjusted, &r.Relocated, &r.FailedScopes,
		)
		if err != nil {
			return nil, eris.Wrap(err, "store: scan run")
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
