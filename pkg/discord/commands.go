package discord

import "github.com/bwmarrin/discordgo"

var minResults = 1.0

// Definitions returns the slash commands registered with Discord.
func Definitions() []*discordgo.ApplicationCommand {
	maxResults := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "max_results",
		Description: "Maximum number of results (default: 10)",
		MinValue:    &minResults,
		MaxValue:    20,
	}
	language := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "language",
		Description: "Response language code (en, ja, zh, ko, es, fr, de)",
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "ping",
			Description: "Check if the bot is responsive",
		},
		{
			Name:        "search",
			Description: "Search for papers by category",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "category",
					Description: "arXiv category (e.g., cs.AI, cs.LG)",
					Required:    true,
				},
				maxResults,
			},
		},
		{
			Name:        "keywords",
			Description: "Search for papers by keywords",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "keywords",
					Description: "Keywords to search for (comma-separated)",
					Required:    true,
				},
				maxResults,
			},
		},
		{
			Name:        "daily",
			Description: "Manually trigger daily paper notification",
		},
		{
			Name:        "ask",
			Description: "Ask a question and get AI-powered paper recommendations",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "question",
					Description: "Your question about research papers or topics",
					Required:    true,
				},
			},
		},
		{
			Name:        "summarize",
			Description: "Summarize a paper by arXiv ID or URL",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "paper",
					Description: "arXiv ID or URL (e.g., 2010.11929)",
					Required:    true,
				},
				language,
			},
		},
		{
			Name:        "digest",
			Description: "Write a digest of recent papers on a topic",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "topic",
					Description: "Research topic",
					Required:    true,
				},
				language,
			},
		},
	}
}
