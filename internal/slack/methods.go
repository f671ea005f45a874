package slack

import (
	"context"
	"net/url"
	"strconv"
)

// AuthTest verifies the bot token and returns the bot's own identity.
func (c *Client) AuthTest(ctx context.Context) (*AuthIdentity, error) {
	var resp authTestResponse
	if err := c.call(ctx, "auth.test", url.Values{}, &resp); err != nil {
		return nil, err
	}
	return &resp.AuthIdentity, nil
}

// UsersInfo fetches a single user's profile flags.
func (c *Client) UsersInfo(ctx context.Context, userID string) (*User, error) {
	form := url.Values{"user": {userID}}
	var resp usersInfoResponse
	if err := c.call(ctx, "users.info", form, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// ConversationsInfo fetches a single channel's shared/external flags.
func (c *Client) ConversationsInfo(ctx context.Context, channelID string) (*Conversation, error) {
	form := url.Values{
		"channel":        {channelID},
		"include_locale": {"false"},
	}
	var resp conversationsInfoResponse
	if err := c.call(ctx, "conversations.info", form, &resp); err != nil {
		return nil, err
	}
	return &resp.Channel, nil
}

// ConversationsList fetches one page of public and private channels.
// An empty cursor starts from the beginning; the returned page carries the
// continuation cursor ("" when exhausted).
func (c *Client) ConversationsList(ctx context.Context, cursor string, limit int) (*ConversationPage, error) {
	form := url.Values{
		"limit": {strconv.Itoa(limit)},
		"types": {"public_channel,private_channel"},
	}
	if cursor != "" {
		form.Set("cursor", cursor)
	}
	var resp conversationsListResponse
	if err := c.call(ctx, "conversations.list", form, &resp); err != nil {
		return nil, err
	}
	return &ConversationPage{
		Channels:   resp.Channels,
		NextCursor: resp.ResponseMetadata.NextCursor,
	}, nil
}

// ConversationsJoin joins the bot to a public channel.
func (c *Client) ConversationsJoin(ctx context.Context, channelID string) error {
	form := url.Values{"channel": {channelID}}
	var resp apiEnvelope
	return c.call(ctx, "conversations.join", form, &resp)
}

// ConversationsInvite invites a user into a channel the bot is a member of.
func (c *Client) ConversationsInvite(ctx context.Context, channelID, userID string) error {
	form := url.Values{
		"channel": {channelID},
		"users":   {userID},
	}
	var resp apiEnvelope
	return c.call(ctx, "conversations.invite", form, &resp)
}

// PostMessage posts text to a channel, threaded when threadTS is non-empty.
func (c *Client) PostMessage(ctx context.Context, channelID, threadTS, text string) error {
	form := url.Values{
		"channel": {channelID},
		"text":    {text},
	}
	if threadTS != "" {
		form.Set("thread_ts", threadTS)
	}
	var resp apiEnvelope
	return c.call(ctx, "chat.postMessage", form, &resp)
}

// apiEnvelope is used for methods whose payload SlackAdder ignores.
type apiEnvelope struct {
	apiResponse
}
