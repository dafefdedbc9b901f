package history

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteExchanges(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	first := &Exchange{Kind: KindAsk, UserID: "42", Prompt: "what is a transformer?", Response: "A model.",
		CreatedAt: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)}
	second := &Exchange{Kind: KindSummarize, Prompt: "2010.11929", Response: "Summary",
		CreatedAt: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, s.SaveExchange(ctx, first))
	require.NoError(t, s.SaveExchange(ctx, second))
	assert.NotEqual(t, uuid.Nil, first.ID)

	got, err := s.ListExchanges(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID, "newest first")
	assert.Equal(t, "what is a transformer?", got[1].Prompt)
	assert.Equal(t, "42", got[1].UserID)
	assert.True(t, first.CreatedAt.Equal(got[1].CreatedAt))

	got, err = s.ListExchanges(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSQLiteRunsAndLogs(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, KindDailyPapers, "cs.AI,cs.LG")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, run.Status)

	require.NoError(t, s.AppendLog(ctx, LogEntry{RunID: run.ID, Timestamp: time.Now(), Level: "INFO", Message: "fetching", Metadata: json.RawMessage(`{"count":3}`)}))
	require.NoError(t, s.AppendLog(ctx, LogEntry{RunID: run.ID, Timestamp: time.Now().Add(time.Second), Level: "ERROR", Message: "post failed"}))
	require.NoError(t, s.FinishRun(ctx, run.ID, StatusCompleted, "sent 3 papers"))

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, StatusCompleted, runs[0].Status)
	assert.Equal(t, "sent 3 papers", runs[0].Detail)
	assert.Equal(t, "cs.AI,cs.LG", runs[0].Subject)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, got.Status)

	_, err = s.GetRun(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	logs, err := s.RunLogs(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "fetching", logs[0].Message)
	assert.JSONEq(t, `{"count":3}`, string(logs[0].Metadata))
	assert.Equal(t, "ERROR", logs[1].Level)
	assert.Empty(t, logs[1].Metadata)

	other, err := s.RunLogs(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, BackendNone, "", "")
	require.NoError(t, err)
	assert.False(t, Enabled(s))

	s, err = Open(ctx, BackendSQLite, "", filepath.Join(t.TempDir(), "h.db"))
	require.NoError(t, err)
	defer s.Close()
	assert.True(t, Enabled(s))

	_, err = Open(ctx, BackendPostgres, "", "")
	assert.Error(t, err)

	_, err = Open(ctx, "mongo", "", "")
	assert.Error(t, err)
}

func TestNopStore(t *testing.T) {
	ctx := context.Background()
	var s Store = NopStore{}

	assert.NoError(t, s.SaveExchange(ctx, &Exchange{Prompt: "p"}))
	run, err := s.CreateRun(ctx, KindWeeklyDigest, "agents")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, run.ID)
	assert.NoError(t, s.FinishRun(ctx, run.ID, StatusFailed, "x"))

	_, err = s.ListExchanges(ctx, 10)
	assert.ErrorIs(t, err, ErrDisabled)
	_, err = s.ListRuns(ctx, 10)
	assert.ErrorIs(t, err, ErrDisabled)
	assert.False(t, Enabled(nil))
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, 50, normalizeLimit(0))
	assert.Equal(t, 7, normalizeLimit(7))
	assert.Equal(t, 200, normalizeLimit(1000))
}
