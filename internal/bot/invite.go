package bot

import (
	"context"
	"errors"
	"fmt"

	"github.com/nextlevelbuilder/slackadder/internal/slack"
)

// Join failures that do not block the invite attempt: the bot may already
// be a member, and private channels do not support conversations.join.
const (
	joinAlreadyInChannel  = "already_in_channel"
	joinUnsupportedType   = "method_not_supported_for_channel_type"
	joinNotInChannel      = "not_in_channel"
	inviteAlreadyInChannel = "already_in_channel"
	inviteCantInvite       = "cant_invite"
)

// Inviter performs the per-channel join-then-invite sequence. Channel
// outcomes are independent: one channel's failure never aborts the rest.
type Inviter struct {
	api API
}

// NewInviter creates an inviter over the given API.
func NewInviter(api API) *Inviter {
	return &Inviter{api: api}
}

// InviteToChannels joins and invites targetID into each channel, returning
// one outcome line per channel in input order.
func (iv *Inviter) InviteToChannels(ctx context.Context, targetID string, channelIDs []string) []string {
	results := make([]string, 0, len(channelIDs))
	for _, channelID := range channelIDs {
		results = append(results, iv.inviteOne(ctx, targetID, channelID))
	}
	return results
}

// inviteOne runs the join-then-invite state machine for a single channel.
// Both remote calls are retried on rate limits only.
func (iv *Inviter) inviteOne(ctx context.Context, targetID, channelID string) string {
	joinCode := ""
	joinErr := retryOnRateLimit(ctx, maxRateLimitRetries, func() error {
		return iv.api.ConversationsJoin(ctx, channelID)
	})
	if joinErr != nil {
		joinCode = errorCode(joinErr)
		if joinCode != joinUnsupportedType && joinCode != joinAlreadyInChannel {
			return fmt.Sprintf("❌ <#%s>: failed to join channel (%s)", channelID, joinCode)
		}
	}

	inviteErr := retryOnRateLimit(ctx, maxRateLimitRetries, func() error {
		return iv.api.ConversationsInvite(ctx, channelID, targetID)
	})
	if inviteErr == nil {
		return fmt.Sprintf("✅ Invited to <#%s>", channelID)
	}

	code := errorCode(inviteErr)
	switch {
	case code == inviteAlreadyInChannel:
		return fmt.Sprintf("⚠️ Already in <#%s>", channelID)
	case code == inviteCantInvite && (joinCode == joinUnsupportedType || joinCode == joinNotInChannel):
		return fmt.Sprintf("❌ <#%s>: can't invite. Add SlackAdder to the channel first (private channels require a manual invite).", channelID)
	default:
		return fmt.Sprintf("❌ <#%s>: %s", channelID, code)
	}
}

// errorCode extracts the remote error code, mapping non-API failures
// (transport errors, cancellation) to a generic code.
func errorCode(err error) string {
	var apiErr *slack.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return "unknown_error"
}
