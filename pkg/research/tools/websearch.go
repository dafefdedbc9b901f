package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DuckDuckGoURL is the instant answer endpoint used by WebSearcher.
const DuckDuckGoURL = "https://api.duckduckgo.com/"

// WebSearchTimeout bounds every web search request.
const WebSearchTimeout = 10 * time.Second

type WebSearchArgs struct {
	Query string `json:"query" jsonschema:"The search query"`
}

// WebSearcher looks up instant answers on DuckDuckGo.
type WebSearcher struct {
	BaseURL string
	Client  *http.Client
	Logger  *slog.Logger
}

func NewWebSearcher() *WebSearcher {
	return &WebSearcher{
		BaseURL: DuckDuckGoURL,
		Client:  &http.Client{Timeout: WebSearchTimeout},
		Logger:  slog.Default(),
	}
}

type instantAnswer struct {
	AbstractText  string         `json:"AbstractText"`
	AbstractURL   string         `json:"AbstractURL"`
	RelatedTopics []relatedTopic `json:"RelatedTopics"`
}

type relatedTopic struct {
	Text string `json:"Text"`
}

// Search returns a plain text digest of the instant answer for query.
// Failures are reported inside the returned text.
func (w *WebSearcher) Search(ctx context.Context, query string) string {
	answer, err := w.lookup(ctx, query)
	if err != nil {
		w.Logger.Warn("web search failed", "query", query, "error", err)
		return fmt.Sprintf("Error performing web search: %v", err)
	}

	var lines []string
	if answer.AbstractText != "" {
		lines = append(lines, "Summary: "+answer.AbstractText)
	}
	if answer.AbstractURL != "" {
		lines = append(lines, "Source: "+answer.AbstractURL)
	}
	topics := 0
	for _, topic := range answer.RelatedTopics {
		if topics == 3 {
			break
		}
		// Grouped topics carry no text of their own.
		if topic.Text == "" {
			continue
		}
		lines = append(lines, "- "+topic.Text)
		topics++
	}

	if len(lines) == 0 {
		return "No results found."
	}
	return strings.Join(lines, "\n")
}

func (w *WebSearcher) lookup(ctx context.Context, query string) (*instantAnswer, error) {
	ctx, cancel := context.WithTimeout(ctx, WebSearchTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := w.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	var answer instantAnswer
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &answer, nil
}
