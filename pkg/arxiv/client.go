package arxiv

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed/atom"
)

// DefaultBaseURL is the public arXiv query endpoint.
const DefaultBaseURL = "https://export.arxiv.org/api/query"

// UnavailableError reports a non-success HTTP status from the arXiv API.
type UnavailableError struct {
	StatusCode int
	Body       string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("arXiv API returned status %d", e.StatusCode)
}

// Client queries the arXiv API. Zero values fall back to the defaults
// used by the hosted service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	MaxResults int
	SortBy     SortBy
	SortOrder  SortOrder
	Logger     *slog.Logger
}

// NewClient creates a client with the given default result cap and ordering.
func NewClient(maxResults int, sortBy SortBy, sortOrder SortOrder) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{},
		MaxResults: maxResults,
		SortBy:     sortBy,
		SortOrder:  sortOrder,
		Logger:     slog.Default(),
	}
}

// SearchByCategory returns the most recent papers in any of the categories.
func (c *Client) SearchByCategory(ctx context.Context, categories []string, limit int) ([]Paper, error) {
	return c.Search(ctx, SearchQuery{Categories: categories, MaxResults: limit})
}

// SearchByKeywords returns papers matching all keywords, optionally
// restricted to categories.
func (c *Client) SearchByKeywords(ctx context.Context, keywords, categories []string, limit int) ([]Paper, error) {
	return c.Search(ctx, SearchQuery{Keywords: keywords, Categories: categories, MaxResults: limit})
}

// Search runs an arbitrary query.
func (c *Client) Search(ctx context.Context, q SearchQuery) ([]Paper, error) {
	params := url.Values{}
	params.Set("search_query", q.Expression())
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(c.limit(q.MaxResults)))
	params.Set("sortBy", string(c.sortBy(q.SortBy)))
	params.Set("sortOrder", string(c.sortOrder(q.SortOrder)))

	papers, err := c.fetch(ctx, params)
	if err != nil {
		return nil, err
	}
	c.logger().Info("arXiv search completed", "query", params.Get("search_query"), "count", len(papers))
	return papers, nil
}

// GetByID looks up a single paper. idOrURL may be any shape accepted by
// ExtractID. It returns nil, nil when the paper does not exist or the
// identifier is not recognized.
func (c *Client) GetByID(ctx context.Context, idOrURL string) (*Paper, error) {
	id, ok := ExtractID(idOrURL)
	if !ok {
		return nil, nil
	}

	params := url.Values{}
	params.Set("id_list", id)
	params.Set("max_results", "1")

	papers, err := c.fetch(ctx, params)
	if err != nil {
		return nil, err
	}
	for i := range papers {
		if papers[i].ID == id {
			return &papers[i], nil
		}
	}
	return nil, nil
}

func (c *Client) fetch(ctx context.Context, params url.Values) ([]Paper, error) {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	apiURL := base + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger().Error("arXiv API returned non-200 status code", "status", resp.StatusCode, "url", apiURL)
		return nil, &UnavailableError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	feed, err := (&atom.Parser{}).Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse arXiv feed: %w", err)
	}

	papers := make([]Paper, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		// The API reports query errors as a pseudo entry.
		if strings.Contains(entry.ID, "/api/errors") {
			return nil, fmt.Errorf("arXiv API error: %s", collapse(entry.Summary))
		}
		papers = append(papers, toPaper(entry))
	}
	return papers, nil
}

func toPaper(entry *atom.Entry) Paper {
	p := Paper{
		ID:       entryID(entry.ID),
		Title:    collapse(entry.Title),
		Abstract: strings.TrimSpace(entry.Summary),
	}
	if entry.PublishedParsed != nil {
		p.Published = entry.PublishedParsed.UTC()
	}
	if entry.UpdatedParsed != nil {
		p.Updated = entry.UpdatedParsed.UTC()
	}
	for _, author := range entry.Authors {
		if author != nil && author.Name != "" {
			p.Authors = append(p.Authors, collapse(author.Name))
		}
	}
	for _, cat := range entry.Categories {
		if cat != nil && cat.Term != "" {
			p.Categories = append(p.Categories, cat.Term)
		}
	}
	for _, link := range entry.Links {
		if link != nil && (link.Title == "pdf" || link.Type == "application/pdf") {
			p.PDFURL = strings.Replace(link.Href, "http://", "https://", 1)
			break
		}
	}
	if p.PDFURL == "" && p.ID != "" {
		p.PDFURL = "https://arxiv.org/pdf/" + p.ID
	}
	if exts, ok := entry.Extensions["arxiv"]; ok {
		if pc := exts["primary_category"]; len(pc) > 0 {
			p.PrimaryCategory = pc[0].Attrs["term"]
		}
	}
	if p.PrimaryCategory == "" && len(p.Categories) > 0 {
		p.PrimaryCategory = p.Categories[0]
	}
	return p
}

func (c *Client) limit(n int) int {
	if n > 0 {
		return n
	}
	if c.MaxResults > 0 {
		return c.MaxResults
	}
	return 10
}

func (c *Client) sortBy(s SortBy) SortBy {
	if s != "" {
		return s
	}
	if c.SortBy != "" {
		return c.SortBy
	}
	return SortBySubmitted
}

func (c *Client) sortOrder(o SortOrder) SortOrder {
	if o != "" {
		return o
	}
	if c.SortOrder != "" {
		return c.SortOrder
	}
	return Descending
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
