package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mikeboe/thesis-herald/pkg/arxiv"
)

// DefaultRepositoryResults is the result cap when the model does not ask for one.
const DefaultRepositoryResults = 5

type RepositorySearchArgs struct {
	Query      string   `json:"query" jsonschema:"Comma separated search keywords"`
	Categories []string `json:"categories,omitempty" jsonschema:"Optional arXiv categories such as cs.AI"`
	MaxResults int      `json:"max_results,omitempty" jsonschema:"Maximum number of papers to return (default 5)"`
}

// KeywordSearcher is the part of the arXiv client the tool needs.
type KeywordSearcher interface {
	SearchByKeywords(ctx context.Context, keywords, categories []string, limit int) ([]arxiv.Paper, error)
}

// SearchRepository runs a keyword search and renders the papers for a model.
// Failures are reported inside the returned text.
func SearchRepository(ctx context.Context, searcher KeywordSearcher, args RepositorySearchArgs) string {
	limit := args.MaxResults
	if limit <= 0 {
		limit = DefaultRepositoryResults
	}

	papers, err := searcher.SearchByKeywords(ctx, arxiv.SplitList(args.Query), args.Categories, limit)
	if err != nil {
		slog.Warn("repository search failed", "query", args.Query, "error", err)
		return fmt.Sprintf("Error searching arXiv: %v", err)
	}
	return FormatPapers(papers)
}

// FormatPapers renders a numbered paper listing with short abstracts.
func FormatPapers(papers []arxiv.Paper) string {
	if len(papers) == 0 {
		return "No papers found for the given query."
	}

	parts := []string{fmt.Sprintf("Found %d papers:\n", len(papers))}
	for i, p := range papers {
		parts = append(parts, fmt.Sprintf(
			"\n%d. **%s**\n   Authors: %s\n   Published: %s\n   arXiv: %s\n   PDF: %s\n   Summary: %s...",
			i+1,
			p.Title,
			p.AuthorList(3, " et al."),
			p.PublishedDate(),
			p.ID,
			p.PDFURL,
			arxiv.Truncate(strings.ReplaceAll(p.Abstract, "\n", " "), 200),
		))
	}
	return strings.Join(parts, "\n")
}
