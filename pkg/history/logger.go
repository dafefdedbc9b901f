package history

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// LogHandler is a slog.Handler that writes records to the run log of a
// single job run and forwards them to Next, if set.
type LogHandler struct {
	Store Store
	RunID uuid.UUID
	Next  slog.Handler

	attrs []slog.Attr
}

func NewLogHandler(store Store, runID uuid.UUID, next slog.Handler) *LogHandler {
	return &LogHandler{
		Store: store,
		RunID: runID,
		Next:  next,
	}
}

func (h *LogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true
}

func (h *LogHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = attrValue(a.Value)
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = attrValue(a.Value)
		return true
	})

	metaJSON, err := json.Marshal(attrs)
	if err != nil {
		metaJSON = []byte("{}")
	}

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	// The run may outlive the request that started it.
	err = h.Store.AppendLog(context.WithoutCancel(ctx), LogEntry{
		RunID:     h.RunID,
		Timestamp: ts,
		Level:     r.Level.String(),
		Message:   r.Message,
		Metadata:  metaJSON,
	})

	if h.Next != nil && h.Next.Enabled(ctx, r.Level) {
		if nextErr := h.Next.Handle(ctx, r); nextErr != nil && err == nil {
			err = nextErr
		}
	}
	return err
}

func (h *LogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	if h.Next != nil {
		clone.Next = h.Next.WithAttrs(attrs)
	}
	return &clone
}

func (h *LogHandler) WithGroup(name string) slog.Handler {
	clone := *h
	if h.Next != nil {
		clone.Next = h.Next.WithGroup(name)
	}
	return &clone
}

func attrValue(v slog.Value) any {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	default:
		return v.Any()
	}
}
