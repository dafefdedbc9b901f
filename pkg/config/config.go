package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mikeboe/thesis-herald/pkg/arxiv"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderGoogleAI  = "googleai"
)

type BotConfig struct {
	Token                 string
	GuildID               string
	NotificationChannelID string
	NotificationTime      string
}

type ArxivConfig struct {
	Categories []string
	MaxResults int
	SortBy     arxiv.SortBy
	SortOrder  arxiv.SortOrder
}

type LLMConfig struct {
	Provider  string
	APIKey    string
	Model     string
	MaxTokens int
}

// Enabled reports whether a key for the selected provider is configured.
func (c LLMConfig) Enabled() bool {
	return c.APIKey != ""
}

type TranslationConfig struct {
	Enabled        bool
	TargetLanguage string
	Model          string
	APIKey         string
}

type DigestConfig struct {
	Enabled bool
	Topics  []string
	// DayOfWeek counts from 0 for Monday.
	DayOfWeek int
	Time      string
	ChannelID string
	Language  string
}

type HistoryConfig struct {
	Backend     string
	DatabaseURL string
	SQLitePath  string
}

type LogConfig struct {
	Level string
	File  string
}

type Config struct {
	Bot         BotConfig
	Arxiv       ArxivConfig
	LLM         LLMConfig
	Translation TranslationConfig
	Digest      DigestConfig
	History     HistoryConfig
	Log         LogConfig
	Port        string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("discord_guild_id", "")
	v.SetDefault("notification_time", "09:00")
	v.SetDefault("arxiv_categories", "cs.AI,cs.LG,cs.CL")
	v.SetDefault("arxiv_max_results", 10)
	v.SetDefault("arxiv_sort_by", string(arxiv.SortBySubmitted))
	v.SetDefault("arxiv_sort_order", string(arxiv.Descending))
	v.SetDefault("llm_provider", ProviderAnthropic)
	v.SetDefault("llm_model", "")
	v.SetDefault("llm_max_tokens", 4096)
	v.SetDefault("translation_enabled", false)
	v.SetDefault("translation_target_language", "ja")
	v.SetDefault("translation_model", "gemini-2.0-flash")
	v.SetDefault("digest_enabled", false)
	v.SetDefault("digest_topics", "")
	v.SetDefault("digest_day_of_week", 0)
	v.SetDefault("digest_time", "10:00")
	v.SetDefault("digest_channel_id", "")
	v.SetDefault("digest_language", "en")
	v.SetDefault("history_backend", "")
	v.SetDefault("database_url", "")
	v.SetDefault("history_sqlite_path", "thesisherald.db")
	v.SetDefault("port", "8081")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
}

// Load reads configuration from the environment and an optional YAML file
// whose keys are the lower-cased variable names. Environment variables win
// over the file.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	sortBy, err := arxiv.ParseSortBy(v.GetString("arxiv_sort_by"))
	if err != nil {
		return nil, err
	}
	sortOrder, err := arxiv.ParseSortOrder(v.GetString("arxiv_sort_order"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Bot: BotConfig{
			Token:                 v.GetString("discord_token"),
			GuildID:               v.GetString("discord_guild_id"),
			NotificationChannelID: v.GetString("notification_channel_id"),
			NotificationTime:      v.GetString("notification_time"),
		},
		Arxiv: ArxivConfig{
			Categories: list(v, "arxiv_categories"),
			MaxResults: v.GetInt("arxiv_max_results"),
			SortBy:     sortBy,
			SortOrder:  sortOrder,
		},
		LLM: LLMConfig{
			Provider:  strings.ToLower(v.GetString("llm_provider")),
			Model:     v.GetString("llm_model"),
			MaxTokens: v.GetInt("llm_max_tokens"),
		},
		Translation: TranslationConfig{
			Enabled:        v.GetBool("translation_enabled"),
			TargetLanguage: v.GetString("translation_target_language"),
			Model:          v.GetString("translation_model"),
			APIKey:         v.GetString("google_api_key"),
		},
		Digest: DigestConfig{
			Enabled:   v.GetBool("digest_enabled"),
			Topics:    list(v, "digest_topics"),
			DayOfWeek: v.GetInt("digest_day_of_week"),
			Time:      v.GetString("digest_time"),
			ChannelID: v.GetString("digest_channel_id"),
			Language:  v.GetString("digest_language"),
		},
		History: HistoryConfig{
			Backend:     strings.ToLower(v.GetString("history_backend")),
			DatabaseURL: v.GetString("database_url"),
			SQLitePath:  v.GetString("history_sqlite_path"),
		},
		Log: LogConfig{
			Level: v.GetString("log_level"),
			File:  v.GetString("log_file"),
		},
		Port: v.GetString("port"),
	}

	switch cfg.LLM.Provider {
	case ProviderAnthropic:
		cfg.LLM.APIKey = v.GetString("anthropic_api_key")
	case ProviderGoogleAI:
		cfg.LLM.APIKey = v.GetString("google_api_key")
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q", cfg.LLM.Provider)
	}

	if cfg.Digest.ChannelID == "" {
		cfg.Digest.ChannelID = cfg.Bot.NotificationChannelID
	}
	if cfg.Arxiv.MaxResults <= 0 {
		return nil, fmt.Errorf("ARXIV_MAX_RESULTS must be positive, got %d", cfg.Arxiv.MaxResults)
	}
	if err := checkClock("NOTIFICATION_TIME", cfg.Bot.NotificationTime); err != nil {
		return nil, err
	}
	if err := checkClock("DIGEST_TIME", cfg.Digest.Time); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidateBot checks the settings the Discord bot cannot run without.
func (c *Config) ValidateBot() error {
	var errs []error
	if c.Bot.Token == "" {
		errs = append(errs, errors.New("DISCORD_TOKEN environment variable is required"))
	}
	if c.Bot.NotificationChannelID == "" {
		errs = append(errs, errors.New("NOTIFICATION_CHANNEL_ID environment variable is required"))
	}
	if c.Translation.Enabled && c.Translation.APIKey == "" {
		errs = append(errs, errors.New("GOOGLE_API_KEY is required when TRANSLATION_ENABLED is set"))
	}
	return errors.Join(errs...)
}

// list reads a comma separated string or a YAML sequence.
func list(v *viper.Viper, key string) []string {
	switch raw := v.Get(key).(type) {
	case string:
		return arxiv.SplitList(raw)
	case []string:
		return arxiv.SplitList(strings.Join(raw, ","))
	case []any:
		parts := make([]string, 0, len(raw))
		for _, p := range raw {
			parts = append(parts, fmt.Sprint(p))
		}
		return arxiv.SplitList(strings.Join(parts, ","))
	default:
		return nil
	}
}

func checkClock(key, value string) error {
	if _, err := time.Parse("15:04", value); err != nil {
		return fmt.Errorf("%s must be HH:MM, got %q", key, value)
	}
	return nil
}
