package arxiv

import (
	"fmt"
	"strings"
)

// SortBy is the ordering key accepted by the arXiv API.
type SortBy string

const (
	SortBySubmitted   SortBy = "submittedDate"
	SortByLastUpdated SortBy = "lastUpdatedDate"
	SortByRelevance   SortBy = "relevance"
)

// SortOrder is the ordering direction accepted by the arXiv API.
type SortOrder string

const (
	Descending SortOrder = "descending"
	Ascending  SortOrder = "ascending"
)

// ParseSortBy validates a configured sort key.
func ParseSortBy(s string) (SortBy, error) {
	switch SortBy(s) {
	case SortBySubmitted, SortByLastUpdated, SortByRelevance:
		return SortBy(s), nil
	}
	return "", fmt.Errorf("invalid sort key %q", s)
}

// ParseSortOrder validates a configured sort direction.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case Descending, Ascending:
		return SortOrder(s), nil
	}
	return "", fmt.Errorf("invalid sort order %q", s)
}

// SearchQuery describes one search against the repository. Categories
// are OR-combined, keywords are AND-combined exact phrases.
type SearchQuery struct {
	Categories []string
	Keywords   []string
	MaxResults int
	SortBy     SortBy
	SortOrder  SortOrder
}

// Expression renders the query in the arXiv search language.
func (q SearchQuery) Expression() string {
	if len(cleanTerms(q.Keywords)) > 0 {
		return KeywordQuery(q.Keywords, q.Categories)
	}
	return CategoryQuery(q.Categories)
}

// CategoryQuery returns cat:X for one category and cat:A OR cat:B for several.
func CategoryQuery(categories []string) string {
	cats := cleanTerms(categories)
	parts := make([]string, len(cats))
	for i, c := range cats {
		parts[i] = "cat:" + c
	}
	return strings.Join(parts, " OR ")
}

// KeywordQuery AND-joins quoted keyword phrases and narrows them to the
// given categories. Several categories are grouped in parentheses.
func KeywordQuery(keywords, categories []string) string {
	kws := cleanTerms(keywords)
	parts := make([]string, len(kws))
	for i, kw := range kws {
		parts[i] = fmt.Sprintf(`all:"%s"`, kw)
	}
	query := strings.Join(parts, " AND ")

	cats := cleanTerms(categories)
	switch {
	case len(cats) == 1:
		query += " AND " + CategoryQuery(cats)
	case len(cats) > 1:
		query += " AND (" + CategoryQuery(cats) + ")"
	}
	return query
}

// SplitList splits a comma separated list and drops empty entries.
func SplitList(s string) []string {
	return cleanTerms(strings.Split(s, ","))
}

func cleanTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
