package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// interaction adapts a slash command invocation to bot.Interaction.
type interaction struct {
	session *discordgo.Session
	event   *discordgo.Interaction
}

func (i *interaction) Respond(ctx context.Context, content string) error {
	return i.session.InteractionRespond(i.event, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content},
	}, discordgo.WithContext(ctx))
}

func (i *interaction) Defer(ctx context.Context) error {
	return i.session.InteractionRespond(i.event, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}, discordgo.WithContext(ctx))
}

func (i *interaction) Followup(ctx context.Context, content string) error {
	_, err := i.session.FollowupMessageCreate(i.event, true, &discordgo.WebhookParams{Content: content}, discordgo.WithContext(ctx))
	return err
}

// ChannelID is empty outside guild text channels, where threads cannot be
// created.
func (i *interaction) ChannelID() string {
	if i.event.GuildID == "" {
		return ""
	}
	return i.event.ChannelID
}

func (i *interaction) UserID() string {
	if i.event.Member != nil && i.event.Member.User != nil {
		return i.event.Member.User.ID
	}
	if i.event.User != nil {
		return i.event.User.ID
	}
	return ""
}
