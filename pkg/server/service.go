package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mikeboe/thesis-herald/pkg/arxiv"
	"github.com/mikeboe/thesis-herald/pkg/bot"
	"github.com/mikeboe/thesis-herald/pkg/history"
	"github.com/mikeboe/thesis-herald/pkg/research/tools"
)

var (
	ErrLLMDisabled   = errors.New("LLM integration is not enabled")
	ErrInvalidID     = errors.New("no arXiv identifier found")
	ErrPaperNotFound = errors.New("paper not found")
)

type Service struct {
	Papers bot.Repository
	Web    *tools.WebSearcher
	// Assistant is nil when no model provider is configured.
	Assistant bot.Assistant
	History   history.Store
	Logger    *slog.Logger
}

func NewService(papers bot.Repository, web *tools.WebSearcher, assistant bot.Assistant, store history.Store) *Service {
	if store == nil {
		store = history.NopStore{}
	}
	return &Service{
		Papers:    papers,
		Web:       web,
		Assistant: assistant,
		History:   store,
		Logger:    slog.Default(),
	}
}

type SearchRequest struct {
	Category   string
	Keywords   string
	Categories string
	MaxResults int
}

// Search lists papers of a category or papers matching keywords.
func (s *Service) Search(ctx context.Context, req SearchRequest) ([]arxiv.Paper, error) {
	limit := bot.CapResults(req.MaxResults)
	if req.Keywords != "" {
		return s.Papers.SearchByKeywords(ctx, arxiv.SplitList(req.Keywords), arxiv.SplitList(req.Categories), limit)
	}
	if req.Category == "" {
		return nil, fmt.Errorf("either category or keywords is required")
	}
	return s.Papers.SearchByCategory(ctx, []string{req.Category}, limit)
}

func (s *Service) GetPaper(ctx context.Context, idOrURL string) (*arxiv.Paper, error) {
	if _, ok := arxiv.ExtractID(idOrURL); !ok {
		return nil, ErrInvalidID
	}
	paper, err := s.Papers.GetByID(ctx, idOrURL)
	if err != nil {
		return nil, err
	}
	if paper == nil {
		return nil, ErrPaperNotFound
	}
	return paper, nil
}

type AskRequest struct {
	Question string `json:"question" binding:"required"`
	UserID   string `json:"user_id"`
}

func (s *Service) Ask(ctx context.Context, req AskRequest) (*history.Exchange, error) {
	if s.Assistant == nil {
		return nil, ErrLLMDisabled
	}
	answer := s.Assistant.Converse(ctx, req.Question)
	return s.record(ctx, history.KindAsk, req.UserID, req.Question, answer), nil
}

type SummarizeRequest struct {
	Paper    string `json:"paper" binding:"required"`
	Language string `json:"language"`
	UserID   string `json:"user_id"`
}

func (s *Service) Summarize(ctx context.Context, req SummarizeRequest) (*history.Exchange, error) {
	if s.Assistant == nil {
		return nil, ErrLLMDisabled
	}
	paper, err := s.GetPaper(ctx, req.Paper)
	if err != nil {
		return nil, err
	}
	summary := s.Assistant.Summarize(ctx, *paper, req.Language)
	return s.record(ctx, history.KindSummarize, req.UserID, req.Paper, summary), nil
}

type DigestRequest struct {
	Topic    string `json:"topic" binding:"required"`
	Language string `json:"language"`
}

// CreateDigestJob starts a digest in the background and returns its run.
// The digest text is stored as the run detail once it is ready.
func (s *Service) CreateDigestJob(ctx context.Context, req DigestRequest) (*history.Run, error) {
	if s.Assistant == nil {
		return nil, ErrLLMDisabled
	}
	if !history.Enabled(s.History) {
		return nil, history.ErrDisabled
	}

	run, err := s.History.CreateRun(ctx, history.KindDigest, req.Topic)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	go s.runDigest(run.ID, req)

	return run, nil
}

// Digest writes a digest synchronously.
func (s *Service) Digest(ctx context.Context, req DigestRequest) (*history.Exchange, error) {
	if s.Assistant == nil {
		return nil, ErrLLMDisabled
	}
	digest := s.Assistant.Digest(ctx, req.Topic, req.Language)
	return s.record(ctx, history.KindDigest, "", req.Topic, digest), nil
}

func (s *Service) runDigest(runID uuid.UUID, req DigestRequest) {
	ctx := context.Background()
	runLogger := slog.New(history.NewLogHandler(s.History, runID, s.Logger.Handler()))

	runLogger.Info("Generating digest", "topic", req.Topic, "language", req.Language)
	digest := s.Assistant.Digest(ctx, req.Topic, req.Language)

	if err := s.History.FinishRun(ctx, runID, history.StatusCompleted, digest); err != nil {
		runLogger.Error("Failed to save digest", "error", err)
		return
	}
	runLogger.Info("Digest completed", "topic", req.Topic)
}

func (s *Service) ListRuns(ctx context.Context, limit int) ([]history.Run, error) {
	return s.History.ListRuns(ctx, limit)
}

func (s *Service) GetRun(ctx context.Context, id uuid.UUID) (*history.Run, error) {
	return s.History.GetRun(ctx, id)
}

func (s *Service) GetRunLogs(ctx context.Context, id uuid.UUID) ([]history.LogEntry, error) {
	return s.History.RunLogs(ctx, id)
}

func (s *Service) ListExchanges(ctx context.Context, limit int) ([]history.Exchange, error) {
	return s.History.ListExchanges(ctx, limit)
}

func (s *Service) record(ctx context.Context, kind, userID, prompt, response string) *history.Exchange {
	e := &history.Exchange{Kind: kind, UserID: userID, Prompt: prompt, Response: response}
	if err := s.History.SaveExchange(ctx, e); err != nil {
		s.Logger.Warn("failed to save exchange", "kind", kind, "error", err)
	}
	return e
}
