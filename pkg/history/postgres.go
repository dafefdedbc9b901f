package history

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps history in PostgreSQL.
type PostgresStore struct {
	Pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL database connection
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{Pool: pool}, nil
}

// Close closes the database connection pool
func (db *PostgresStore) Close() error {
	db.Pool.Close()
	return nil
}

func (db *PostgresStore) InitSchema(ctx context.Context) error {
	runsQuery := `
		CREATE TABLE IF NOT EXISTS job_runs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			kind TEXT NOT NULL,
			subject TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'running',
			detail TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`
	if _, err := db.Pool.Exec(ctx, runsQuery); err != nil {
		return fmt.Errorf("failed to create job_runs table: %w", err)
	}

	logsQuery := `
		CREATE TABLE IF NOT EXISTS job_logs (
			id BIGSERIAL PRIMARY KEY,
			run_id UUID NOT NULL REFERENCES job_runs(id) ON DELETE CASCADE,
			timestamp TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			level TEXT NOT NULL,
			message TEXT NOT NULL,
			metadata JSONB
		);
	`
	if _, err := db.Pool.Exec(ctx, logsQuery); err != nil {
		return fmt.Errorf("failed to create job_logs table: %w", err)
	}

	exchangesQuery := `
		CREATE TABLE IF NOT EXISTS exchanges (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			kind TEXT NOT NULL,
			user_id TEXT NOT NULL DEFAULT '',
			prompt TEXT NOT NULL,
			response TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`
	if _, err := db.Pool.Exec(ctx, exchangesQuery); err != nil {
		return fmt.Errorf("failed to create exchanges table: %w", err)
	}

	if _, err := db.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_job_logs_run_id ON job_logs(run_id)"); err != nil {
		return fmt.Errorf("failed to create index on job_logs: %w", err)
	}
	if _, err := db.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_job_runs_created_at ON job_runs(created_at DESC)"); err != nil {
		return fmt.Errorf("failed to create index on job_runs: %w", err)
	}
	if _, err := db.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_exchanges_created_at ON exchanges(created_at DESC)"); err != nil {
		return fmt.Errorf("failed to create index on exchanges: %w", err)
	}

	return nil
}

func (db *PostgresStore) SaveExchange(ctx context.Context, e *Exchange) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	query := `
		INSERT INTO exchanges (id, kind, user_id, prompt, response)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	if err := db.Pool.QueryRow(ctx, query, e.ID, e.Kind, e.UserID, e.Prompt, e.Response).Scan(&e.CreatedAt); err != nil {
		return fmt.Errorf("failed to save exchange: %w", err)
	}
	return nil
}

func (db *PostgresStore) ListExchanges(ctx context.Context, limit int) ([]Exchange, error) {
	query := `
		SELECT id, kind, user_id, prompt, response, created_at
		FROM exchanges
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := db.Pool.Query(ctx, query, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	defer rows.Close()

	var out []Exchange
	for rows.Next() {
		var e Exchange
		if err := rows.Scan(&e.ID, &e.Kind, &e.UserID, &e.Prompt, &e.Response, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (db *PostgresStore) CreateRun(ctx context.Context, kind, subject string) (*Run, error) {
	query := `
		INSERT INTO job_runs (id, kind, subject, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, kind, subject, status, detail, created_at, updated_at
	`
	run := &Run{}
	err := db.Pool.QueryRow(ctx, query, uuid.New(), kind, subject, StatusRunning).Scan(
		&run.ID, &run.Kind, &run.Subject, &run.Status, &run.Detail, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

func (db *PostgresStore) FinishRun(ctx context.Context, id uuid.UUID, status, detail string) error {
	_, err := db.Pool.Exec(ctx,
		`UPDATE job_runs SET status = $2, detail = $3, updated_at = NOW() WHERE id = $1`,
		id, status, detail)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

func (db *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	query := `
		SELECT id, kind, subject, status, detail, created_at, updated_at
		FROM job_runs
		WHERE id = $1
	`
	run := &Run{}
	err := db.Pool.QueryRow(ctx, query, id).Scan(
		&run.ID, &run.Kind, &run.Subject, &run.Status, &run.Detail, &run.CreatedAt, &run.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

func (db *PostgresStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, kind, subject, status, detail, created_at, updated_at
		FROM job_runs
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := db.Pool.Query(ctx, query, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Kind, &r.Subject, &r.Status, &r.Detail, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (db *PostgresStore) AppendLog(ctx context.Context, entry LogEntry) error {
	query := `
		INSERT INTO job_logs (run_id, timestamp, level, message, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := db.Pool.Exec(ctx, query, entry.RunID, entry.Timestamp, entry.Level, entry.Message, []byte(entry.Metadata))
	return err
}

func (db *PostgresStore) RunLogs(ctx context.Context, runID uuid.UUID) ([]LogEntry, error) {
	query := `
		SELECT id, run_id, timestamp, level, message, metadata
		FROM job_logs
		WHERE run_id = $1
		ORDER BY timestamp ASC, id ASC
	`
	rows, err := db.Pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run logs: %w", err)
	}
	defer rows.Close()

	var logs []LogEntry
	for rows.Next() {
		var l LogEntry
		if err := rows.Scan(&l.ID, &l.RunID, &l.Timestamp, &l.Level, &l.Message, &l.Metadata); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
