// Package discord connects the platform neutral bot commands to Discord.
package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/mikeboe/thesis-herald/pkg/bot"
)

type handlerFunc func(ctx context.Context, in bot.Interaction, opts options) error

// Bot owns the gateway session and routes slash commands to Commands.
type Bot struct {
	Session  *discordgo.Session
	Commands *bot.Commands
	GuildID  string
	Logger   *slog.Logger

	handlers map[string]handlerFunc
	ctx      context.Context
	cancel   context.CancelFunc
}

// New creates a bot for token. Commands must be set before Open.
func New(token, guildID string) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	return &Bot{
		Session: session,
		GuildID: guildID,
		Logger:  slog.Default(),
	}, nil
}

// Messenger returns a bot.Messenger that posts through the session.
func (b *Bot) Messenger() *Messenger {
	return &Messenger{Session: b.Session}
}

// Open connects to the gateway and registers the slash commands, scoped to
// GuildID when set.
func (b *Bot) Open(ctx context.Context) error {
	if b.Commands == nil {
		return fmt.Errorf("discord bot has no commands")
	}
	b.handlers = b.routes()
	b.ctx, b.cancel = context.WithCancel(context.WithoutCancel(ctx))

	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.Logger.Info("Logged in", "user", r.User.String(), "id", r.User.ID)
	})
	b.Session.AddHandler(b.onInteraction)

	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	appID := b.Session.State.User.ID
	if _, err := b.Session.ApplicationCommandBulkOverwrite(appID, b.GuildID, Definitions(), discordgo.WithContext(ctx)); err != nil {
		b.Session.Close()
		return fmt.Errorf("failed to register commands: %w", err)
	}
	if b.GuildID != "" {
		b.Logger.Info("Synced commands to guild", "guild", b.GuildID)
	} else {
		b.Logger.Info("Synced commands globally")
	}
	return nil
}

// Close disconnects from the gateway.
func (b *Bot) Close() error {
	if b.cancel != nil {
		b.cancel()
	}
	return b.Session.Close()
}

func (b *Bot) routes() map[string]handlerFunc {
	c := b.Commands
	return map[string]handlerFunc{
		"ping": func(ctx context.Context, in bot.Interaction, opts options) error {
			return c.Ping(ctx, in)
		},
		"search": func(ctx context.Context, in bot.Interaction, opts options) error {
			return c.Search(ctx, in, opts.String("category"), opts.Int("max_results", bot.DefaultMaxResults))
		},
		"keywords": func(ctx context.Context, in bot.Interaction, opts options) error {
			return c.Keywords(ctx, in, opts.String("keywords"), opts.Int("max_results", bot.DefaultMaxResults))
		},
		"daily": func(ctx context.Context, in bot.Interaction, opts options) error {
			return c.Daily(ctx, in)
		},
		"ask": func(ctx context.Context, in bot.Interaction, opts options) error {
			return c.Ask(ctx, in, opts.String("question"))
		},
		"summarize": func(ctx context.Context, in bot.Interaction, opts options) error {
			return c.Summarize(ctx, in, opts.String("paper"), opts.String("language"))
		},
		"digest": func(ctx context.Context, in bot.Interaction, opts options) error {
			return c.Digest(ctx, in, opts.String("topic"), opts.String("language"))
		},
	}
}

func (b *Bot) onInteraction(s *discordgo.Session, ic *discordgo.InteractionCreate) {
	if ic.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := ic.ApplicationCommandData()
	in := &interaction{session: s, event: ic.Interaction}

	// Each event handler already runs on its own goroutine (SyncEvents is off).
	b.dispatch(b.ctx, in, data.Name, newOptions(data.Options))
}

func (b *Bot) dispatch(ctx context.Context, in bot.Interaction, name string, opts options) {
	handler, ok := b.handlers[name]
	if !ok {
		b.Logger.Warn("unknown command", "command", name)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.Logger.Error("command panicked", "command", name, "panic", r)
		}
	}()

	b.Logger.Info("command received", "command", name, "user", in.UserID())
	if err := handler(ctx, in, opts); err != nil {
		b.Logger.Error("failed to reply to command", "command", name, "error", err)
	}
}

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func newOptions(opts []*discordgo.ApplicationCommandInteractionDataOption) options {
	m := make(options, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func (o options) String(name string) string {
	if opt, ok := o[name]; ok {
		return opt.StringValue()
	}
	return ""
}

func (o options) Int(name string, def int) int {
	if opt, ok := o[name]; ok {
		return int(opt.IntValue())
	}
	return def
}
