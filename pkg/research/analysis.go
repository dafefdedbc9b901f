package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mikeboe/thesis-herald/pkg/arxiv"
)

// DigestPaperLimit is the number of papers handed to the model per digest.
const DigestPaperLimit = 20

// PaperSearcher finds papers for digests.
type PaperSearcher interface {
	SearchByKeywords(ctx context.Context, keywords, categories []string, limit int) ([]arxiv.Paper, error)
}

var languageInstructions = map[string]string{
	"en": "in English",
	"ja": "in Japanese (日本語)",
	"zh": "in Chinese (中文)",
	"ko": "in Korean (한국어)",
	"es": "in Spanish (Español)",
	"fr": "in French (Français)",
	"de": "in German (Deutsch)",
}

// LanguageInstruction maps a language code to the phrase used in prompts.
func LanguageInstruction(language string) string {
	if language == "" {
		language = "en"
	}
	if s, ok := languageInstructions[strings.ToLower(language)]; ok {
		return s
	}
	return "in " + language
}

// Summarize asks the model for a short structured summary of paper.
func (e *Engine) Summarize(ctx context.Context, paper arxiv.Paper, language string) string {
	lang := LanguageInstruction(language)

	authors := paper.AuthorList(5, "...")
	prompt := fmt.Sprintf(`You are a research paper analysis assistant. Summarize the research paper below %s.

Title: %s
Authors: %s
Published: %s
arXiv ID: %s
Categories: %s

Abstract:
%s

Provide:
1. A brief summary of 3-5 sentences covering the main contribution and findings
2. The key contributions as 3-5 bullet points

Use this format:
**Summary:**
[summary]

**Key Contributions:**
• [point]
• [point]
• [point]

Keep the language technical but accessible and focus on the core idea and results. Write the whole response %s.`,
		lang, paper.Title, authors, paper.PublishedDate(), paper.ID,
		strings.Join(paper.Categories, ", "), paper.Abstract, lang)

	summary, err := e.complete(ctx, prompt)
	if err != nil {
		e.Logger.Error("failed to summarize paper", "paper", paper.ID, "error", err)
		return fmt.Sprintf("❌ Failed to generate summary: %v", err)
	}

	return fmt.Sprintf("📄 **Paper Summary**\n\n**Title:** %s\n**Authors:** %s\n**Published:** %s\n**arXiv ID:** %s\n**PDF:** %s\n\n%s\n",
		paper.Title, paper.AuthorList(3, "..."), paper.PublishedDate(), paper.ID, paper.PDFURL, summary)
}

// Digest collects recent papers on topic and asks the model to pick and
// explain the most important ones.
func (e *Engine) Digest(ctx context.Context, topic, language string) string {
	lang := LanguageInstruction(language)

	papers, err := e.Papers.SearchByKeywords(ctx, []string{topic}, nil, DigestPaperLimit)
	if err != nil {
		e.Logger.Error("failed to search papers for digest", "topic", topic, "error", err)
		return fmt.Sprintf("❌ Failed to generate digest for topic '%s': %v", topic, err)
	}
	if len(papers) == 0 {
		return fmt.Sprintf("📭 No papers found for topic: **%s**", topic)
	}

	listing := make([]string, 0, len(papers))
	for i, p := range papers {
		cats := p.Categories
		if len(cats) > 3 {
			cats = cats[:3]
		}
		listing = append(listing, fmt.Sprintf("%d. **%s**\n   Authors: %s\n   Published: %s\n   arXiv ID: %s\n   Categories: %s\n   Abstract: %s...",
			i+1, p.Title, p.AuthorList(3, "..."), p.PublishedDate(), p.ID,
			strings.Join(cats, ", "), arxiv.Truncate(p.Abstract, 300)))
	}

	prompt := fmt.Sprintf(`You are a research digest curator. Analyze the recent papers on the topic "%s" listed below and write a weekly digest %s.

RECENT PAPERS:
%s

Provide:
1. **Topic Overview** (2-3 sentences) on current trends in this field
2. **Top Papers** (5-7 papers), each with its number from the list, a 2-3 sentence summary, 2-3 key contributions and why it matters

Use this format:
📊 **Weekly Digest: [Topic Name]**

**🔍 Topic Overview:**
[overview]

**📚 Top Papers:**

**#[number] - [Paper Title]**
**Summary:** [summary]
**Key Contributions:**
• [contribution]
• [contribution]
**Why It Matters:** [1-2 sentences]
**Link:** https://arxiv.org/abs/[arxiv_id]

Prefer papers with novel contributions, practical impact or significant progress. Write the whole response %s.`,
		topic, lang, strings.Join(listing, "\n\n"), lang)

	digest, err := e.complete(ctx, prompt)
	if err != nil {
		e.Logger.Error("failed to generate digest", "topic", topic, "error", err)
		return fmt.Sprintf("❌ Failed to generate digest for topic '%s': %v", topic, err)
	}

	return digest + fmt.Sprintf("\n\n---\n*Generated on %s | Analyzed %d recent papers*",
		time.Now().Format("2006-01-02"), len(papers))
}
