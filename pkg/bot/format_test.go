package bot

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mikeboe/thesis-herald/pkg/arxiv"
)

func TestFormatPaper(t *testing.T) {
	p := arxiv.Paper{
		ID:         "2010.11929",
		Title:      "An Image is Worth 16x16 Words",
		Authors:    []string{"A", "B", "C", "D", "E"},
		Abstract:   "line one\nline two",
		PDFURL:     "https://arxiv.org/pdf/2010.11929",
		Published:  time.Date(2020, 10, 22, 0, 0, 0, 0, time.UTC),
		Categories: []string{"cs.CV", "cs.AI", "cs.LG", "cs.CL"},
	}

	got := FormatPaper(p)
	want := "**An Image is Worth 16x16 Words**\n" +
		"**Authors:** A, B, C et al. (5 authors)\n" +
		"**Published:** 2020-10-22\n" +
		"**Categories:** cs.CV, cs.AI, cs.LG\n" +
		"**arXiv ID:** 2010.11929\n" +
		"**PDF:** https://arxiv.org/pdf/2010.11929\n\n" +
		"line one line two\n"
	assert.Equal(t, want, got)
}

func TestFormatPaperTruncatesAbstract(t *testing.T) {
	p := arxiv.Paper{Title: "T", Authors: []string{"A"}, Abstract: strings.Repeat("x", 400)}

	got := FormatPaper(p)
	assert.Contains(t, got, strings.Repeat("x", 297)+"...\n")
	assert.NotContains(t, got, strings.Repeat("x", 298))
}

func TestNumberedAndThreadName(t *testing.T) {
	assert.Equal(t, "**[2/5]**\nbody\n"+strings.Repeat("-", 50), numbered(2, 5, "body"))
	assert.Len(t, []rune(ThreadName(strings.Repeat("é", 150))), 100)
	assert.Equal(t, "short", ThreadName("short"))
}
