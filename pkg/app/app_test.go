package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeboe/thesis-herald/pkg/arxiv"
	"github.com/mikeboe/thesis-herald/pkg/config"
	"github.com/mikeboe/thesis-herald/pkg/history"
)

func testConfig() *config.Config {
	return &config.Config{
		Bot:   config.BotConfig{NotificationChannelID: "news", NotificationTime: "09:00"},
		Arxiv: config.ArxivConfig{Categories: []string{"cs.AI"}, MaxResults: 5, SortBy: arxiv.SortBySubmitted, SortOrder: arxiv.Descending},
		LLM:   config.LLMConfig{Provider: config.ProviderAnthropic, MaxTokens: 1024},
		Digest: config.DigestConfig{
			Enabled: true, Topics: []string{"agents"}, DayOfWeek: 2, Time: "10:00", ChannelID: "digests", Language: "en",
		},
	}
}

func TestBuildWithoutModel(t *testing.T) {
	a, err := Build(context.Background(), testConfig())
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Engine)
	assert.Nil(t, a.Assistant(), "a disabled model must not leak a typed nil")
	assert.False(t, history.Enabled(a.History))
	assert.Equal(t, 5, a.Arxiv.MaxResults)

	poster := a.NewPoster(nil)
	assert.Nil(t, poster.Translator)

	n := a.NewNotifier(poster)
	assert.Nil(t, n.Writer)
	assert.Equal(t, time.Wednesday, n.Digest.Day)
	assert.Equal(t, "digests", n.Digest.ChannelID)

	c := a.NewCommands(poster, n)
	assert.Nil(t, c.Assistant)
	assert.Equal(t, "news", c.NotificationChannelID)
}

func TestBuildWithModelAndHistory(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.APIKey = "sk-test"
	cfg.History = config.HistoryConfig{Backend: history.BackendSQLite, SQLitePath: filepath.Join(t.TempDir(), "h.db")}

	a, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.Engine)
	assert.NotNil(t, a.Assistant())
	assert.True(t, history.Enabled(a.History))
	assert.NotNil(t, a.NewNotifier(a.NewPoster(nil)).Writer)
}

func TestRunBotRequiresToken(t *testing.T) {
	a, err := Build(context.Background(), testConfig())
	require.NoError(t, err)
	assert.ErrorContains(t, a.RunBot(context.Background()), "DISCORD_TOKEN")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"", slog.LevelInfo, true},
		{"DEBUG", slog.LevelDebug, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.ok {
			require.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, got, tt.in)
		} else {
			assert.Error(t, err, tt.in)
		}
	}
}

func TestSetupLoggingTeesToFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "thesisherald.log")
	closeFn, err := SetupLogging(config.LogConfig{Level: "info", File: path}, io.Discard)
	require.NoError(t, err)

	slog.Info("scheduler started")
	slog.Debug("hidden")
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scheduler started")
	assert.NotContains(t, string(data), "hidden")
}
