package tools

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mikeboe/thesis-herald/pkg/arxiv"
)

type fakeSearcher struct {
	papers     []arxiv.Paper
	err        error
	keywords   []string
	categories []string
	limit      int
}

func (f *fakeSearcher) SearchByKeywords(ctx context.Context, keywords, categories []string, limit int) ([]arxiv.Paper, error) {
	f.keywords, f.categories, f.limit = keywords, categories, limit
	return f.papers, f.err
}

func TestSearchRepository(t *testing.T) {
	searcher := &fakeSearcher{papers: []arxiv.Paper{{
		ID:        "2010.11929",
		Title:     "An Image is Worth 16x16 Words",
		Authors:   []string{"A", "B", "C", "D"},
		Abstract:  "Transformers\nfor images.",
		PDFURL:    "https://arxiv.org/pdf/2010.11929v2",
		Published: time.Date(2020, 10, 22, 0, 0, 0, 0, time.UTC),
	}}}

	got := SearchRepository(context.Background(), searcher, RepositorySearchArgs{
		Query:      "vision transformer, scaling ",
		Categories: []string{"cs.CV"},
	})

	assert.Equal(t, []string{"vision transformer", "scaling"}, searcher.keywords)
	assert.Equal(t, []string{"cs.CV"}, searcher.categories)
	assert.Equal(t, DefaultRepositoryResults, searcher.limit)

	want := "Found 1 papers:\n\n" +
		"\n1. **An Image is Worth 16x16 Words**\n" +
		"   Authors: A, B, C et al.\n" +
		"   Published: 2020-10-22\n" +
		"   arXiv: 2010.11929\n" +
		"   PDF: https://arxiv.org/pdf/2010.11929v2\n" +
		"   Summary: Transformers for images...."
	assert.Equal(t, want, got)
}

func TestSearchRepositoryEmpty(t *testing.T) {
	got := SearchRepository(context.Background(), &fakeSearcher{}, RepositorySearchArgs{Query: "nothing", MaxResults: 2})
	assert.Equal(t, "No papers found for the given query.", got)
}

func TestSearchRepositoryError(t *testing.T) {
	got := SearchRepository(context.Background(), &fakeSearcher{err: errors.New("boom")}, RepositorySearchArgs{Query: "x"})
	assert.True(t, strings.HasPrefix(got, "Error searching arXiv: "), got)
	assert.Contains(t, got, "boom")
}
