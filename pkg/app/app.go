// Package app builds the shared components from configuration and runs
// the Discord bot together with the notification scheduler.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mikeboe/thesis-herald/pkg/arxiv"
	"github.com/mikeboe/thesis-herald/pkg/bot"
	"github.com/mikeboe/thesis-herald/pkg/clients"
	"github.com/mikeboe/thesis-herald/pkg/config"
	"github.com/mikeboe/thesis-herald/pkg/discord"
	"github.com/mikeboe/thesis-herald/pkg/history"
	"github.com/mikeboe/thesis-herald/pkg/notify"
	"github.com/mikeboe/thesis-herald/pkg/research"
	"github.com/mikeboe/thesis-herald/pkg/research/tools"
	"github.com/mikeboe/thesis-herald/pkg/scheduler"
	"github.com/mikeboe/thesis-herald/pkg/translate"
)

// App holds the components shared by the bot, the CLI and the HTTP server.
type App struct {
	Config *config.Config
	Arxiv  *arxiv.Client
	Web    *tools.WebSearcher
	// Engine is nil when no model provider key is configured.
	Engine     *research.Engine
	Translator translate.Translator
	History    history.Store
	Logger     *slog.Logger
}

// Build creates the components described by cfg.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{
		Config: cfg,
		Arxiv:  arxiv.NewClient(cfg.Arxiv.MaxResults, cfg.Arxiv.SortBy, cfg.Arxiv.SortOrder),
		Web:    tools.NewWebSearcher(),
		Logger: slog.Default(),
	}

	if cfg.LLM.Enabled() {
		model, err := clients.NewModel(ctx, cfg.LLM.Provider, cfg.LLM.APIKey, cfg.LLM.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM client: %w", err)
		}
		toolset := research.NewToolset(a.Web, a.Arxiv)
		a.Engine = research.NewEngine(research.NewLLMProvider(model, cfg.LLM.MaxTokens), toolset, a.Arxiv)
		a.Logger.Info("LLM client initialized", "provider", cfg.LLM.Provider)
	} else {
		a.Logger.Warn("LLM client disabled - /ask, /summarize and /digest will not be available")
	}

	if cfg.Translation.Enabled {
		tr, err := translate.NewGoogleTranslator(ctx, cfg.Translation.Model, cfg.Translation.APIKey)
		if err != nil {
			return nil, err
		}
		a.Translator = tr
	}

	store, err := history.Open(ctx, cfg.History.Backend, cfg.History.DatabaseURL, cfg.History.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	a.History = store

	return a, nil
}

// Close releases the history backend.
func (a *App) Close() error {
	if a.History == nil {
		return nil
	}
	return a.History.Close()
}

// Assistant returns the engine as a bot.Assistant, or nil when the model
// is disabled.
func (a *App) Assistant() bot.Assistant {
	if a.Engine == nil {
		return nil
	}
	return a.Engine
}

// NewPoster creates a poster that translates abstracts when enabled.
func (a *App) NewPoster(m bot.Messenger) *bot.Poster {
	p := bot.NewPoster(m)
	p.Logger = a.Logger
	if a.Translator != nil {
		p.Translator = a.Translator
		p.Language = a.Config.Translation.TargetLanguage
	}
	return p
}

// NewNotifier wires the notification jobs to poster.
func (a *App) NewNotifier(poster *bot.Poster) *notify.Notifier {
	cfg := a.Config
	n := &notify.Notifier{
		Repo:       a.Arxiv,
		Poster:     poster,
		History:    a.History,
		Categories: cfg.Arxiv.Categories,
		MaxResults: cfg.Arxiv.MaxResults,
		ChannelID:  cfg.Bot.NotificationChannelID,
		Time:       cfg.Bot.NotificationTime,
		Digest: notify.DigestSettings{
			Enabled:   cfg.Digest.Enabled,
			Topics:    cfg.Digest.Topics,
			ChannelID: cfg.Digest.ChannelID,
			Language:  cfg.Digest.Language,
			Day:       notify.Weekday(cfg.Digest.DayOfWeek),
			Time:      cfg.Digest.Time,
		},
		Logger: a.Logger,
	}
	if a.Engine != nil {
		n.Writer = a.Engine
	}
	return n
}

// NewCommands creates the slash command implementations.
func (a *App) NewCommands(poster *bot.Poster, notifier *notify.Notifier) *bot.Commands {
	return &bot.Commands{
		Repo:                  a.Arxiv,
		Assistant:             a.Assistant(),
		Notifier:              notifier,
		Poster:                poster,
		History:               a.History,
		NotificationChannelID: a.Config.Bot.NotificationChannelID,
		Logger:                a.Logger,
	}
}

// RunBot connects to Discord, starts the scheduler and blocks until ctx is
// cancelled.
func (a *App) RunBot(ctx context.Context) error {
	if err := a.Config.ValidateBot(); err != nil {
		return err
	}

	b, err := discord.New(a.Config.Bot.Token, a.Config.Bot.GuildID)
	if err != nil {
		return err
	}
	b.Logger = a.Logger

	poster := a.NewPoster(b.Messenger())
	notifier := a.NewNotifier(poster)
	b.Commands = a.NewCommands(poster, notifier)

	sched := scheduler.New(scheduler.WithLogger(a.Logger))
	if err := notifier.Schedule(sched); err != nil {
		return err
	}

	if err := b.Open(ctx); err != nil {
		return err
	}
	a.Logger.Info("Bot is ready!")

	done := make(chan error, 1)
	go func() { done <- sched.Start(ctx) }()

	<-ctx.Done()
	a.Logger.Info("Shutting down...")
	sched.Stop()

	var errs []error
	if err := <-done; err != nil && !errors.Is(err, scheduler.ErrStopped) {
		errs = append(errs, err)
	}
	if err := b.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close discord session: %w", err))
	}
	return errors.Join(errs...)
}
