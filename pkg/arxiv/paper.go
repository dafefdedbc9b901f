package arxiv

import (
	"strings"
	"time"
)

// Paper is one publication record returned by the arXiv API.
type Paper struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Authors         []string  `json:"authors"`
	Abstract        string    `json:"abstract"`
	PDFURL          string    `json:"pdf_url"`
	Published       time.Time `json:"published"`
	Updated         time.Time `json:"updated"`
	Categories      []string  `json:"categories"`
	PrimaryCategory string    `json:"primary_category"`
}

// AbsURL returns the abstract page of the paper.
func (p Paper) AbsURL() string {
	return "https://arxiv.org/abs/" + p.ID
}

// PublishedDate formats the publication date as YYYY-MM-DD.
func (p Paper) PublishedDate() string {
	return p.Published.Format("2006-01-02")
}

// AuthorList joins at most limit author names with ", ".
// etAl is appended when authors were left out.
func (p Paper) AuthorList(limit int, etAl string) string {
	if len(p.Authors) <= limit {
		return strings.Join(p.Authors, ", ")
	}
	return strings.Join(p.Authors[:limit], ", ") + etAl
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// collapse normalizes the whitespace of Atom text fields.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
