package bot

import (
	"fmt"
	"strings"

	"github.com/mikeboe/thesis-herald/pkg/arxiv"
)

const (
	abstractLimit   = 300
	threadNameLimit = 100
	separator       = "--------------------------------------------------"
)

// FormatPaper renders a paper as a chat message.
func FormatPaper(p arxiv.Paper) string {
	authors := p.AuthorList(3, "")
	if len(p.Authors) > 3 {
		authors += fmt.Sprintf(" et al. (%d authors)", len(p.Authors))
	}

	categories := p.Categories
	if len(categories) > 3 {
		categories = categories[:3]
	}

	abstract := strings.ReplaceAll(p.Abstract, "\n", " ")
	if len([]rune(abstract)) > abstractLimit {
		abstract = arxiv.Truncate(abstract, abstractLimit-3) + "..."
	}

	return fmt.Sprintf("**%s**\n**Authors:** %s\n**Published:** %s\n**Categories:** %s\n**arXiv ID:** %s\n**PDF:** %s\n\n%s\n",
		p.Title, authors, p.PublishedDate(), strings.Join(categories, ", "), p.ID, p.PDFURL, abstract)
}

// numbered wraps a formatted paper with its position in a listing.
func numbered(i, n int, body string) string {
	return fmt.Sprintf("**[%d/%d]**\n%s\n%s", i, n, body, separator)
}

// ThreadName trims name to the platform limit.
func ThreadName(name string) string {
	return arxiv.Truncate(name, threadNameLimit)
}
