package history

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	NopStore
	mu      sync.Mutex
	entries []LogEntry
}

func (s *recordingStore) AppendLog(ctx context.Context, entry LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func TestLogHandlerWritesRunLog(t *testing.T) {
	store := &recordingStore{}
	runID := uuid.New()
	var console bytes.Buffer

	logger := slog.New(NewLogHandler(store, runID, slog.NewTextHandler(&console, nil)))
	logger.With("topic", "agents").Error("digest failed", "error", errors.New("boom"), "papers", 3)

	require.Len(t, store.entries, 1)
	e := store.entries[0]
	assert.Equal(t, runID, e.RunID)
	assert.Equal(t, "ERROR", e.Level)
	assert.Equal(t, "digest failed", e.Message)
	assert.JSONEq(t, `{"topic":"agents","error":"boom","papers":3}`, string(e.Metadata))

	assert.Contains(t, console.String(), "digest failed")
	assert.Contains(t, console.String(), "topic=agents")
}

func TestLogHandlerWithoutNext(t *testing.T) {
	store := &recordingStore{}
	logger := slog.New(NewLogHandler(store, uuid.New(), nil))
	logger.Debug("debug lines are kept")

	require.Len(t, store.entries, 1)
	assert.Equal(t, "DEBUG", store.entries[0].Level)
}
