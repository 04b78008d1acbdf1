package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/abhijit1892/ragdemo/core"
)

// dialect captures the handful of statements that differ between
// SQLite and PostgreSQL.
type dialect struct {
	name   string
	upsert string
	order  string
	get    string
	delete string
}

var sqliteDialect = dialect{
	name: "sqlite",
	upsert: `INSERT OR REPLACE INTO runs (
			id, question, answer, passages, status, error, elapsed_ms, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	order:  `ORDER BY timestamp DESC, rowid DESC LIMIT ?`,
	get:    `WHERE id = ?`,
	delete: `DELETE FROM runs WHERE id = ?`,
}

var postgresDialect = dialect{
	name: "postgres",
	upsert: `INSERT INTO runs (
			id, question, answer, passages, status, error, elapsed_ms, timestamp
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			question = EXCLUDED.question,
			answer = EXCLUDED.answer,
			passages = EXCLUDED.passages,
			status = EXCLUDED.status,
			error = EXCLUDED.error,
			elapsed_ms = EXCLUDED.elapsed_ms,
			timestamp = EXCLUDED.timestamp`,
	order:  `ORDER BY timestamp DESC, seq DESC LIMIT $1`,
	get:    `WHERE id = $1`,
	delete: `DELETE FROM runs WHERE id = $1`,
}

const selectRuns = `SELECT id, question, answer, passages, status, error, elapsed_ms, timestamp FROM runs `

// SQLStore implements HistoryStore on database/sql.
type SQLStore struct {
	db *sql.DB
	d  dialect
}

func runMigration(db *sql.DB, fsys fs.FS, path string) error {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := db.Exec(string(data)); err != nil {
		return fmt.Errorf("exec migration: %w", err)
	}
	return nil
}

func (s *SQLStore) Add(ctx context.Context, r RunRecord) error {
	passages, err := json.Marshal(nonNil(r.Passages))
	if err != nil {
		return fmt.Errorf("marshal passages: %w", err)
	}

	_, err = s.db.ExecContext(ctx, s.d.upsert,
		r.ID, r.Question, r.Answer, string(passages), r.Status, r.Error, r.ElapsedMs, r.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (RunRecord, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, selectRuns+s.d.get, id))
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, ErrNotFound
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("query run: %w", err)
	}
	return r, nil
}

func (s *SQLStore) List(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectRuns+s.d.order, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunRecord{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.d.delete, id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return nil
}

func (s *SQLStore) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'error' THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(elapsed_ms), 0)
		FROM runs`).Scan(&sum.TotalRuns, &sum.FailedRuns, &sum.AvgLatencyMs)
	if err != nil {
		return sum, fmt.Errorf("query summary: %w", err)
	}
	return sum, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var r RunRecord
	var passages string
	if err := row.Scan(
		&r.ID, &r.Question, &r.Answer, &passages, &r.Status, &r.Error, &r.ElapsedMs, &r.Timestamp,
	); err != nil {
		return r, err
	}
	if err := json.Unmarshal([]byte(passages), &r.Passages); err != nil {
		return r, fmt.Errorf("unmarshal passages: %w", err)
	}
	return r, nil
}

func nonNil(p []core.Passage) []core.Passage {
	if p == nil {
		return []core.Passage{}
	}
	return p
}
