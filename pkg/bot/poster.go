package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mikeboe/thesis-herald/pkg/arxiv"
	"github.com/mikeboe/thesis-herald/pkg/splitter"
	"github.com/mikeboe/thesis-herald/pkg/translate"
)

// Poster publishes paper listings and long texts into threads.
type Poster struct {
	Messenger Messenger
	// Translator is optional; when set abstracts are shown in Language.
	Translator translate.Translator
	Language   string
	Logger     *slog.Logger
}

func NewPoster(m Messenger) *Poster {
	return &Poster{Messenger: m, Logger: slog.Default()}
}

// PostPapers sends header to channelID, opens a thread on it and posts one
// message per paper. A paper that fails to send is logged and skipped.
// It returns the number of papers delivered.
func (p *Poster) PostPapers(ctx context.Context, channelID, header, threadName string, papers []arxiv.Paper) (int, error) {
	threadID, err := p.openThread(ctx, channelID, header, threadName)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for i, paper := range papers {
		paper = p.translated(ctx, paper)
		if _, err := p.Messenger.Send(ctx, threadID, numbered(i+1, len(papers), FormatPaper(paper))); err != nil {
			p.Logger.Error("failed to send paper", "paper", paper.ID, "thread", threadID, "error", err)
			continue
		}
		delivered++
	}
	return delivered, nil
}

// PostDaily publishes the daily update for papers.
func (p *Poster) PostDaily(ctx context.Context, channelID string, papers []arxiv.Paper) (int, error) {
	if len(papers) == 0 {
		if _, err := p.Messenger.Send(ctx, channelID, "No new papers found today."); err != nil {
			return 0, fmt.Errorf("failed to send empty notice: %w", err)
		}
		return 0, nil
	}

	header := fmt.Sprintf("📚 **Daily Paper Update** - Found %d new papers:", len(papers))
	thread := fmt.Sprintf("Daily Papers: %s (%d papers)", time.Now().Format("2006-01-02"), len(papers))
	return p.PostPapers(ctx, channelID, header, thread, papers)
}

// PostThreadText sends header, opens a thread on it and posts text there
// split into message sized chunks.
func (p *Poster) PostThreadText(ctx context.Context, channelID, header, threadName, text string) error {
	threadID, err := p.openThread(ctx, channelID, header, threadName)
	if err != nil {
		return err
	}
	return p.SendLong(ctx, threadID, text)
}

// SendLong posts text to channelID split at line boundaries.
func (p *Poster) SendLong(ctx context.Context, channelID, text string) error {
	for _, chunk := range splitter.Split(text, splitter.DiscordLimit) {
		if _, err := p.Messenger.Send(ctx, channelID, chunk); err != nil {
			return fmt.Errorf("failed to send message: %w", err)
		}
	}
	return nil
}

func (p *Poster) openThread(ctx context.Context, channelID, header, threadName string) (string, error) {
	messageID, err := p.Messenger.Send(ctx, channelID, header)
	if err != nil {
		return "", fmt.Errorf("failed to send header: %w", err)
	}
	threadID, err := p.Messenger.StartThread(ctx, channelID, messageID, ThreadName(threadName))
	if err != nil {
		return "", fmt.Errorf("failed to create thread: %w", err)
	}
	return threadID, nil
}

func (p *Poster) translated(ctx context.Context, paper arxiv.Paper) arxiv.Paper {
	if p.Translator == nil || p.Language == "" || paper.Abstract == "" {
		return paper
	}
	text, err := p.Translator.Translate(ctx, paper.Abstract, p.Language)
	if err != nil {
		p.Logger.Warn("translation failed, posting original abstract", "paper", paper.ID, "error", err)
		return paper
	}
	paper.Abstract = text
	return paper
}
