package bot

import "context"

// Messenger posts to channels and opens threads.
type Messenger interface {
	Send(ctx context.Context, channelID, content string) (messageID string, err error)
	StartThread(ctx context.Context, channelID, messageID, name string) (threadID string, err error)
}

// Interaction is one invocation of a slash command.
type Interaction interface {
	// Respond answers immediately without deferring.
	Respond(ctx context.Context, content string) error
	// Defer acknowledges the command so that the answer can take longer.
	Defer(ctx context.Context) error
	// Followup sends a message after Defer.
	Followup(ctx context.Context, content string) error
	ChannelID() string
	UserID() string
}
