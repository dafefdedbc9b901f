package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mikeboe/thesis-herald/pkg/arxiv"
	"github.com/mikeboe/thesis-herald/pkg/history"
	"github.com/mikeboe/thesis-herald/pkg/splitter"
)

const (
	DefaultMaxResults = 10
	MaxResultsCap     = 20

	keywordsThreadLimit = 80

	llmDisabledReply = "❌ LLM integration is not enabled. Please configure ANTHROPIC_API_KEY."
	noChannelReply   = "❌ This command must be used in a text channel."
)

// Repository is the part of the arXiv client the commands use.
type Repository interface {
	SearchByCategory(ctx context.Context, categories []string, limit int) ([]arxiv.Paper, error)
	SearchByKeywords(ctx context.Context, keywords, categories []string, limit int) ([]arxiv.Paper, error)
	GetByID(ctx context.Context, idOrURL string) (*arxiv.Paper, error)
}

// Assistant answers questions with the model. All methods return text that
// can be shown to the user as is.
type Assistant interface {
	Converse(ctx context.Context, question string) string
	Summarize(ctx context.Context, paper arxiv.Paper, language string) string
	Digest(ctx context.Context, topic, language string) string
}

// DailySender runs the daily notification and reports how many papers it
// found.
type DailySender interface {
	SendDaily(ctx context.Context) (int, error)
}

// Commands implements the slash commands independent of the chat platform.
type Commands struct {
	Repo Repository
	// Assistant is nil when no model provider is configured.
	Assistant             Assistant
	Notifier              DailySender
	Poster                *Poster
	History               history.Store
	NotificationChannelID string
	Logger                *slog.Logger
}

func (c *Commands) Ping(ctx context.Context, in Interaction) error {
	return in.Respond(ctx, "🏓 Pong!")
}

// Search lists recent papers in one category.
func (c *Commands) Search(ctx context.Context, in Interaction, category string, maxResults int) error {
	if err := in.Defer(ctx); err != nil {
		return err
	}

	papers, err := c.Repo.SearchByCategory(ctx, []string{category}, CapResults(maxResults))
	if err != nil {
		c.Logger.Error("search command failed", "category", category, "error", err)
		return in.Followup(ctx, errorReply(err, "❌ An error occurred while searching"))
	}
	if len(papers) == 0 {
		return in.Followup(ctx, fmt.Sprintf("No papers found for category '%s'.", category))
	}

	return c.postResults(ctx, in, papers,
		fmt.Sprintf("📚 Found %d papers in '%s':", len(papers), category),
		fmt.Sprintf("Search results for **%s**:", category),
		fmt.Sprintf("Search: %s (%d papers)", category, len(papers)))
}

// Keywords lists papers matching every comma separated keyword.
func (c *Commands) Keywords(ctx context.Context, in Interaction, keywords string, maxResults int) error {
	if err := in.Defer(ctx); err != nil {
		return err
	}

	papers, err := c.Repo.SearchByKeywords(ctx, arxiv.SplitList(keywords), nil, CapResults(maxResults))
	if err != nil {
		c.Logger.Error("keywords command failed", "keywords", keywords, "error", err)
		return in.Followup(ctx, errorReply(err, "❌ An error occurred while searching"))
	}
	if len(papers) == 0 {
		return in.Followup(ctx, fmt.Sprintf("No papers found for keywords: %s", keywords))
	}

	return c.postResults(ctx, in, papers,
		fmt.Sprintf("📚 Found %d papers for keywords '%s':", len(papers), keywords),
		fmt.Sprintf("Search results for keywords: **%s**", keywords),
		fmt.Sprintf("Keywords: %s (%d papers)", arxiv.Truncate(keywords, keywordsThreadLimit), len(papers)))
}

func (c *Commands) postResults(ctx context.Context, in Interaction, papers []arxiv.Paper, summary, header, thread string) error {
	if err := in.Followup(ctx, summary); err != nil {
		return err
	}
	channelID := in.ChannelID()
	if channelID == "" {
		return in.Followup(ctx, noChannelReply)
	}
	if _, err := c.Poster.PostPapers(ctx, channelID, header, thread, papers); err != nil {
		c.Logger.Error("failed to post search results", "channel", channelID, "error", err)
		return in.Followup(ctx, fmt.Sprintf("❌ An error occurred while searching: %v", err))
	}
	return nil
}

// Daily runs the daily notification right away.
func (c *Commands) Daily(ctx context.Context, in Interaction) error {
	if err := in.Defer(ctx); err != nil {
		return err
	}

	n, err := c.Notifier.SendDaily(ctx)
	if err != nil {
		c.Logger.Error("daily command failed", "error", err)
		return in.Followup(ctx, errorReply(err, "❌ An error occurred"))
	}
	return in.Followup(ctx, fmt.Sprintf("✅ Sent %d papers to <#%s>", n, c.NotificationChannelID))
}

// Ask routes a free form question through the tool loop.
func (c *Commands) Ask(ctx context.Context, in Interaction, question string) error {
	if c.Assistant == nil {
		return in.Respond(ctx, llmDisabledReply)
	}
	if err := in.Defer(ctx); err != nil {
		return err
	}

	answer := c.Assistant.Converse(ctx, question)
	c.record(ctx, history.KindAsk, in.UserID(), question, answer)
	return c.followupLong(ctx, in, answer)
}

// Summarize explains a single paper given by identifier or URL.
func (c *Commands) Summarize(ctx context.Context, in Interaction, idOrURL, language string) error {
	if c.Assistant == nil {
		return in.Respond(ctx, llmDisabledReply)
	}
	if _, ok := arxiv.ExtractID(idOrURL); !ok {
		return in.Respond(ctx, fmt.Sprintf("❌ Could not find an arXiv ID in '%s'.", idOrURL))
	}
	if err := in.Defer(ctx); err != nil {
		return err
	}

	paper, err := c.Repo.GetByID(ctx, idOrURL)
	if err != nil {
		c.Logger.Error("summarize command failed", "paper", idOrURL, "error", err)
		return in.Followup(ctx, errorReply(err, "❌ An error occurred"))
	}
	if paper == nil {
		return in.Followup(ctx, fmt.Sprintf("❌ Paper not found: %s", idOrURL))
	}

	summary := c.Assistant.Summarize(ctx, *paper, language)
	c.record(ctx, history.KindSummarize, in.UserID(), idOrURL, summary)
	return c.followupLong(ctx, in, summary)
}

// Digest writes an overview of recent papers on topic.
func (c *Commands) Digest(ctx context.Context, in Interaction, topic, language string) error {
	if c.Assistant == nil {
		return in.Respond(ctx, llmDisabledReply)
	}
	if err := in.Defer(ctx); err != nil {
		return err
	}

	digest := c.Assistant.Digest(ctx, topic, language)
	c.record(ctx, history.KindDigest, in.UserID(), topic, digest)
	return c.followupLong(ctx, in, digest)
}

func (c *Commands) followupLong(ctx context.Context, in Interaction, text string) error {
	for _, chunk := range splitter.Split(text, splitter.DiscordLimit) {
		if err := in.Followup(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

// record stores an exchange. History is best effort and never changes
// the reply.
func (c *Commands) record(ctx context.Context, kind, userID, prompt, response string) {
	if c.History == nil {
		return
	}
	e := &history.Exchange{Kind: kind, UserID: userID, Prompt: prompt, Response: response}
	if err := c.History.SaveExchange(ctx, e); err != nil {
		c.Logger.Warn("failed to save exchange", "kind", kind, "error", err)
	}
}

// CapResults applies the default and the hard cap to a requested count.
func CapResults(n int) int {
	if n <= 0 {
		return DefaultMaxResults
	}
	return min(n, MaxResultsCap)
}

func errorReply(err error, prefix string) string {
	var unavailable *arxiv.UnavailableError
	if errors.As(err, &unavailable) {
		return fmt.Sprintf("❌ arXiv API is temporarily unavailable (HTTP %d). Please try again in a few moments.", unavailable.StatusCode)
	}
	return fmt.Sprintf("%s: %v", prefix, err)
}
