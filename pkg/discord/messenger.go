package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// threadArchiveMinutes is the auto archive duration of created threads.
const threadArchiveMinutes = 1440

// Messenger posts through a discordgo session.
type Messenger struct {
	Session *discordgo.Session
}

func (m *Messenger) Send(ctx context.Context, channelID, content string) (string, error) {
	msg, err := m.Session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to send message to %s: %w", channelID, err)
	}
	return msg.ID, nil
}

func (m *Messenger) StartThread(ctx context.Context, channelID, messageID, name string) (string, error) {
	ch, err := m.Session.MessageThreadStart(channelID, messageID, name, threadArchiveMinutes, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to start thread in %s: %w", channelID, err)
	}
	return ch.ID, nil
}
