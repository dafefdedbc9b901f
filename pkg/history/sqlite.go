package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps history in a local SQLite file.
type SQLiteStore struct {
	conn *sql.DB
}

// NewSQLiteStore opens or creates the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set wal mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	s := &SQLiteStore{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS job_runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS job_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES job_runs(id) ON DELETE CASCADE,
		timestamp DATETIME NOT NULL,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		metadata TEXT
	);
	CREATE TABLE IF NOT EXISTS exchanges (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		user_id TEXT NOT NULL DEFAULT '',
		prompt TEXT NOT NULL,
		response TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_job_logs_run_id ON job_logs(run_id);
	CREATE INDEX IF NOT EXISTS idx_job_runs_created_at ON job_runs(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_exchanges_created_at ON exchanges(created_at DESC);
	`
	_, err := s.conn.Exec(schema)
	return err
}

func (s *SQLiteStore) SaveExchange(ctx context.Context, e *Exchange) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO exchanges (id, kind, user_id, prompt, response, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.Kind, e.UserID, e.Prompt, e.Response, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("save exchange: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListExchanges(ctx context.Context, limit int) ([]Exchange, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, kind, user_id, prompt, response, created_at FROM exchanges ORDER BY created_at DESC LIMIT ?`,
		normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list exchanges: %w", err)
	}
	defer rows.Close()

	var out []Exchange
	for rows.Next() {
		var e Exchange
		var id string
		if err := rows.Scan(&id, &e.Kind, &e.UserID, &e.Prompt, &e.Response, &e.CreatedAt); err != nil {
			return nil, err
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse exchange id: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, kind, subject string) (*Run, error) {
	now := time.Now().UTC()
	run := &Run{ID: uuid.New(), Kind: kind, Subject: subject, Status: StatusRunning, CreatedAt: now, UpdatedAt: now}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO job_runs (id, kind, subject, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID.String(), run.Kind, run.Subject, run.Status, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, id uuid.UUID, status, detail string) error {
	_, err := s.conn.ExecContext(ctx,
		`UPDATE job_runs SET status = ?, detail = ?, updated_at = ? WHERE id = ?`,
		status, detail, time.Now().UTC(), id.String())
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	r := &Run{ID: id}
	err := s.conn.QueryRowContext(ctx,
		`SELECT kind, subject, status, detail, created_at, updated_at FROM job_runs WHERE id = ?`,
		id.String()).Scan(&r.Kind, &r.Subject, &r.Status, &r.Detail, &r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, kind, subject, status, detail, created_at, updated_at FROM job_runs ORDER BY created_at DESC LIMIT ?`,
		normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var id string
		if err := rows.Scan(&id, &r.Kind, &r.Subject, &r.Status, &r.Detail, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse run id: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) AppendLog(ctx context.Context, entry LogEntry) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO job_logs (run_id, timestamp, level, message, metadata) VALUES (?, ?, ?, ?, ?)`,
		entry.RunID.String(), entry.Timestamp.UTC(), entry.Level, entry.Message, string(entry.Metadata))
	return err
}

func (s *SQLiteStore) RunLogs(ctx context.Context, runID uuid.UUID) ([]LogEntry, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, timestamp, level, message, metadata FROM job_logs WHERE run_id = ? ORDER BY timestamp ASC, id ASC`,
		runID.String())
	if err != nil {
		return nil, fmt.Errorf("get run logs: %w", err)
	}
	defer rows.Close()

	var logs []LogEntry
	for rows.Next() {
		l := LogEntry{RunID: runID}
		var meta sql.NullString
		if err := rows.Scan(&l.ID, &l.Timestamp, &l.Level, &l.Message, &meta); err != nil {
			return nil, err
		}
		if meta.Valid && meta.String != "" {
			l.Metadata = []byte(meta.String)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
