package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mikeboe/thesis-herald/pkg/arxiv"
	"github.com/mikeboe/thesis-herald/pkg/history"
	"github.com/mikeboe/thesis-herald/pkg/research/tools"
)

var testPaper = arxiv.Paper{
	ID:         "2010.11929",
	Title:      "An Image is Worth 16x16 Words",
	Authors:    []string{"Alexey Dosovitskiy", "Lucas Beyer"},
	Abstract:   "Transformers for image recognition.",
	PDFURL:     "https://arxiv.org/pdf/2010.11929",
	Published:  time.Date(2020, 10, 22, 0, 0, 0, 0, time.UTC),
	Categories: []string{"cs.CV"},
}

type fakePapers struct {
	err     error
	gotKw   []string
	gotCats []string
	limit   int
}

func (f *fakePapers) SearchByCategory(ctx context.Context, categories []string, limit int) ([]arxiv.Paper, error) {
	f.gotCats, f.limit = categories, limit
	if f.err != nil {
		return nil, f.err
	}
	return []arxiv.Paper{testPaper}, nil
}

func (f *fakePapers) SearchByKeywords(ctx context.Context, keywords, categories []string, limit int) ([]arxiv.Paper, error) {
	f.gotKw, f.gotCats, f.limit = keywords, categories, limit
	if f.err != nil {
		return nil, f.err
	}
	return []arxiv.Paper{testPaper}, nil
}

func (f *fakePapers) GetByID(ctx context.Context, idOrURL string) (*arxiv.Paper, error) {
	if f.err != nil {
		return nil, f.err
	}
	if id, _ := arxiv.ExtractID(idOrURL); id == testPaper.ID {
		p := testPaper
		return &p, nil
	}
	return nil, nil
}

type fakeAssistant struct{}

func (fakeAssistant) Converse(ctx context.Context, question string) string {
	return "answer to " + question
}

func (fakeAssistant) Summarize(ctx context.Context, paper arxiv.Paper, language string) string {
	return "summary of " + paper.ID + " (" + language + ")"
}

func (fakeAssistant) Digest(ctx context.Context, topic, language string) string {
	return "digest of " + topic
}

func newWebSearcher(t *testing.T) *tools.WebSearcher {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"AbstractText":"Go is a programming language.","AbstractURL":"https://go.dev"}`))
	}))
	t.Cleanup(srv.Close)

	web := tools.NewWebSearcher()
	web.BaseURL = srv.URL
	web.Logger = slog.New(slog.DiscardHandler)
	return web
}

func newSQLiteHistory(t *testing.T) history.Store {
	t.Helper()
	store, err := history.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}
