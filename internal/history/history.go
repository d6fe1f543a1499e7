// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history keeps a local SQLite ledger of release attempts.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Entry is one release attempt.
type Entry struct {
	ID         int64
	Package    string
	Version    string
	Tag        string
	Branch     string
	Status     string
	FailedStep string
	Warnings   int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration is how long the attempt ran.
func (e Entry) Duration() time.Duration {
	return e.FinishedAt.Sub(e.StartedAt)
}

// Store is a SQLite-backed ledger.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates the database at path if needed and applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaV1); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate history schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path is the database file location.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends e and returns its id.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.Package == "" {
		return 0, errors.New("package is required")
	}
	if e.Version == "" {
		return 0, errors.New("version is required")
	}
	if e.StartedAt.IsZero() {
		e.StartedAt = time.Now()
	}
	if e.FinishedAt.IsZero() {
		e.FinishedAt = e.StartedAt
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO releases (
			package, version, tag, branch, status, failed_step, warnings, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Package, e.Version, e.Tag, e.Branch, e.Status, e.FailedStep, e.Warnings,
		e.StartedAt.UTC().Format(timeLayout), e.FinishedAt.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to record release: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT release_id, package, version, tag, COALESCE(branch, ''), status,
		       COALESCE(failed_step, ''), warnings, started_at, finished_at
		FROM releases
		ORDER BY started_at DESC, release_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query releases: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                 Entry
			started, finished string
		)
		if err := rows.Scan(&e.ID, &e.Package, &e.Version, &e.Tag, &e.Branch, &e.Status,
			&e.FailedStep, &e.Warnings, &started, &finished); err != nil {
			return nil, err
		}
		if e.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("release %d: bad started_at: %w", e.ID, err)
		}
		if e.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("release %d: bad finished_at: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
