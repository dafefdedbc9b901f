// Package history records user exchanges with the assistant and the runs
// of scheduled notification jobs, including their log output.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrDisabled is returned by reads when no history backend is configured.
var ErrDisabled = errors.New("history is disabled")

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("not found")

const (
	KindAsk       = "ask"
	KindSummarize = "summarize"
	KindDigest    = "digest"

	KindDailyPapers  = "daily_papers"
	KindWeeklyDigest = "weekly_digest"
)

const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Exchange is one question or request and the answer that was sent back.
type Exchange struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	UserID    string    `json:"user_id"`
	Prompt    string    `json:"prompt"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}

// Run is one execution of a scheduled or manually triggered job.
type Run struct {
	ID        uuid.UUID `json:"id"`
	Kind      string    `json:"kind"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LogEntry struct {
	ID        int64           `json:"id"`
	RunID     uuid.UUID       `json:"run_id"`
	Timestamp time.Time       `json:"timestamp"`
	Level     string          `json:"level"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata"`
}

// Store persists exchanges, runs and run logs.
type Store interface {
	SaveExchange(ctx context.Context, e *Exchange) error
	ListExchanges(ctx context.Context, limit int) ([]Exchange, error)

	CreateRun(ctx context.Context, kind, subject string) (*Run, error)
	FinishRun(ctx context.Context, id uuid.UUID, status, detail string) error
	GetRun(ctx context.Context, id uuid.UUID) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	AppendLog(ctx context.Context, entry LogEntry) error
	RunLogs(ctx context.Context, runID uuid.UUID) ([]LogEntry, error)

	Close() error
}

const (
	BackendNone     = ""
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Open connects to the configured backend and prepares its schema.
func Open(ctx context.Context, backend, databaseURL, sqlitePath string) (Store, error) {
	switch backend {
	case BackendNone, "none":
		return NopStore{}, nil
	case BackendPostgres:
		if databaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres history backend")
		}
		db, err := NewPostgresStore(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.InitSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
		return db, nil
	case BackendSQLite:
		return NewSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unknown history backend %q", backend)
	}
}

// Enabled reports whether s actually stores anything.
func Enabled(s Store) bool {
	if s == nil {
		return false
	}
	_, nop := s.(NopStore)
	return !nop
}

// NopStore discards writes and reports ErrDisabled on reads.
type NopStore struct{}

func (NopStore) SaveExchange(ctx context.Context, e *Exchange) error { return nil }

func (NopStore) ListExchanges(ctx context.Context, limit int) ([]Exchange, error) {
	return nil, ErrDisabled
}

func (NopStore) CreateRun(ctx context.Context, kind, subject string) (*Run, error) {
	now := time.Now()
	return &Run{ID: uuid.New(), Kind: kind, Subject: subject, Status: StatusRunning, CreatedAt: now, UpdatedAt: now}, nil
}

func (NopStore) FinishRun(ctx context.Context, id uuid.UUID, status, detail string) error { return nil }

func (NopStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) { return nil, ErrDisabled }

func (NopStore) ListRuns(ctx context.Context, limit int) ([]Run, error) { return nil, ErrDisabled }

func (NopStore) AppendLog(ctx context.Context, entry LogEntry) error { return nil }

func (NopStore) RunLogs(ctx context.Context, runID uuid.UUID) ([]LogEntry, error) {
	return nil, ErrDisabled
}

func (NopStore) Close() error { return nil }

func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return 50
	case limit > 200:
		return 200
	default:
		return limit
	}
}
