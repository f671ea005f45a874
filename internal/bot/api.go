// Package bot implements SlackAdder's command engine: parsing mention
// commands, resolving channel groups and channel references to canonical
// IDs, authorizing the requester, and orchestrating join-then-invite across
// the resolved channels.
package bot

import (
	"context"

	"github.com/nextlevelbuilder/slackadder/internal/slack"
)

// API is the directory/membership surface the engine needs from Slack.
// *slack.Client satisfies it.
type API interface {
	UsersInfo(ctx context.Context, userID string) (*slack.User, error)
	ConversationsInfo(ctx context.Context, channelID string) (*slack.Conversation, error)
	ConversationsList(ctx context.Context, cursor string, limit int) (*slack.ConversationPage, error)
	ConversationsJoin(ctx context.Context, channelID string) error
	ConversationsInvite(ctx context.Context, channelID, userID string) error
}

// Replier posts reply text to the thread of the triggering message.
// *slack.Client satisfies it.
type Replier interface {
	PostMessage(ctx context.Context, channelID, threadTS, text string) error
}
