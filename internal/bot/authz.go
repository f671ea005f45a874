package bot

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/nextlevelbuilder/slackadder/internal/slack"
)

// Denial messages. Only these fixed strings reach the requester; raw remote
// error codes go to the log.
const (
	msgNotAuthorized      = "Sorry, you're not authorized to use SlackAdder."
	msgGuestNotPermitted  = "Sorry, SlackAdder can only be used by full workspace members."
	msgExternalChannel    = "Sorry, SlackAdder cannot be used in shared or external channels."
	msgUsersScopeMissing  = "SlackAdder is missing the users:read scope. An admin needs to reinstall the app with the latest manifest."
	msgChannelScopeMissing = "SlackAdder is missing channel read permissions. Ask an admin to reinstall with the latest manifest."
	msgUserVerifyFailed   = "Couldn't verify your account status."
	msgChannelVerifyFailed = "Couldn't verify this channel."
)

// Gate decides whether a request may proceed: allow-list membership, guest
// exclusion, and external/shared-channel exclusion. Lookup results are
// cached for the process lifetime; lookup failures fail closed.
type Gate struct {
	api       API
	allowList map[string]bool // nil when no allow-list is configured
	users     *UserFlagCache
	channels  *ChannelFlagCache
}

// NewGate creates an authorization gate. allowedUsers are normalized to
// upper case; an empty slice disables the allow-list check entirely.
func NewGate(api API, allowedUsers []string, users *UserFlagCache, channels *ChannelFlagCache) *Gate {
	var allowList map[string]bool
	if len(allowedUsers) > 0 {
		allowList = make(map[string]bool, len(allowedUsers))
		for _, u := range allowedUsers {
			allowList[strings.ToUpper(strings.TrimSpace(u))] = true
		}
	}
	return &Gate{
		api:       api,
		allowList: allowList,
		users:     users,
		channels:  channels,
	}
}

// Check evaluates the request. It returns ok=true when the request may
// proceed; otherwise the returned message is the user-safe denial text.
func (g *Gate) Check(ctx context.Context, userID, channelID string) (string, bool) {
	if g.allowList != nil && !g.allowList[strings.ToUpper(userID)] {
		return msgNotAuthorized, false
	}

	if guest, msg := g.isGuestUser(ctx, userID); guest {
		if msg == "" {
			msg = msgGuestNotPermitted
		}
		return msg, false
	}

	if external, msg := g.isExternalChannel(ctx, channelID); external {
		if msg == "" {
			msg = msgExternalChannel
		}
		return msg, false
	}

	return "", true
}

// isGuestUser reports whether the user carries any restricted flag. A
// failed lookup is treated as restricted; the message distinguishes a
// missing API scope from a generic verification failure.
func (g *Gate) isGuestUser(ctx context.Context, userID string) (bool, string) {
	if flags, ok := g.users.Get(userID); ok {
		return flags.Guest(), ""
	}

	var user *slack.User
	err := retryOnRateLimit(ctx, maxRateLimitRetries, func() error {
		var callErr error
		user, callErr = g.api.UsersInfo(ctx, userID)
		return callErr
	})
	if err != nil {
		var apiErr *slack.APIError
		if errors.As(err, &apiErr) && apiErr.Code == "missing_scope" {
			slog.Error("users:read scope missing; reinstall SlackAdder with updated manifest")
			return true, msgUsersScopeMissing
		}
		slog.Error("unable to fetch user info", "user", userID, "error", err)
		return true, msgUserVerifyFailed
	}

	flags := UserFlags{
		Restricted:      user.IsRestricted,
		UltraRestricted: user.IsUltraRestricted,
		Stranger:        user.IsStranger,
	}
	g.users.Put(userID, flags)
	return flags.Guest(), ""
}

// isExternalChannel reports whether the invoking channel is a DM or carries
// any shared/external flag. DMs are recognized by the ID prefix without a
// remote call.
func (g *Gate) isExternalChannel(ctx context.Context, channelID string) (bool, string) {
	if strings.HasPrefix(channelID, "D") {
		return true, ""
	}
	if flags, ok := g.channels.Get(channelID); ok {
		return flags.External(), ""
	}

	var ch *slack.Conversation
	err := retryOnRateLimit(ctx, maxRateLimitRetries, func() error {
		var callErr error
		ch, callErr = g.api.ConversationsInfo(ctx, channelID)
		return callErr
	})
	if err != nil {
		var apiErr *slack.APIError
		if errors.As(err, &apiErr) && apiErr.Code == "missing_scope" {
			slog.Error("channels:read scope missing; reinstall SlackAdder with updated manifest")
			return true, msgChannelScopeMissing
		}
		slog.Error("unable to fetch channel info", "channel", channelID, "error", err)
		return true, msgChannelVerifyFailed
	}

	flags := ChannelFlags{
		Shared:    ch.IsShared,
		ExtShared: ch.IsExtShared,
		OrgShared: ch.IsOrgShared,
	}
	g.channels.Put(channelID, flags)
	return flags.External(), ""
}
