// Package sqlite persists per-call token metering in a SQLite database, so
// usage can be queried across runs rather than only in per-unit log files.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store records generation calls in SQLite.
type Store struct {
	db *sql.DB
}

// CallRow is one metered generation call.
type CallRow struct {
	Unit             string
	Stage            string
	Model            string
	PromptTokens     int
	CachedTokens     int
	CompletionTokens int
	CreatedAt        time.Time
}

// NewStore opens (or creates) the metering database at the given path.
// Use ":memory:" for an in-memory database in tests.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return s, nil
}

func (s *Store) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS generation_calls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		unit TEXT NOT NULL,
		stage TEXT NOT NULL,
		model TEXT NOT NULL,
		prompt_tokens INTEGER NOT NULL,
		cached_tokens INTEGER NOT NULL,
		completion_tokens INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_calls_unit ON generation_calls(unit);
	CREATE INDEX IF NOT EXISTS idx_calls_created ON generation_calls(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordCall inserts one call row.
func (s *Store) RecordCall(ctx context.Context, row CallRow) error {
	query := `
		INSERT INTO generation_calls (unit, stage, model, prompt_tokens, cached_tokens, completion_tokens, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		row.Unit, row.Stage, row.Model,
		row.PromptTokens, row.CachedTokens, row.CompletionTokens,
		row.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert generation call: %w", err)
	}
	return nil
}

// CallsForUnit returns all metered calls for a unit, oldest first.
func (s *Store) CallsForUnit(ctx context.Context, unit string) ([]CallRow, error) {
	query := `
		SELECT unit, stage, model, prompt_tokens, cached_tokens, completion_tokens, created_at
		FROM generation_calls
		WHERE unit = ?
		ORDER BY id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, unit)
	if err != nil {
		return nil, fmt.Errorf("query generation calls: %w", err)
	}
	defer rows.Close()

	var result []CallRow
	for rows.Next() {
		var row CallRow
		var createdAt int64
		if err := rows.Scan(&row.Unit, &row.Stage, &row.Model, &row.PromptTokens, &row.CachedTokens, &row.CompletionTokens, &createdAt); err != nil {
			return nil, fmt.Errorf("scan generation call: %w", err)
		}
		row.CreatedAt = time.Unix(createdAt, 0).UTC()
		result = append(result, row)
	}
	return result, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
