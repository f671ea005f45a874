package bot

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// channelIDMinLen is the shortest real channel ID. Tokens that carry a
	// valid prefix letter but fewer characters are rejected rather than
	// passed through as malformed IDs.
	channelIDMinLen = 9

	// listPageSize is the conversations.list page size.
	listPageSize = 200
)

// ChannelResolver turns a single text token into a canonical channel ID
// using mention syntax, raw-ID heuristics, or a name lookup backed by the
// injected NameCache.
type ChannelResolver struct {
	api   API
	cache *NameCache
}

// NewChannelResolver creates a resolver over the given API and cache.
func NewChannelResolver(api API, cache *NameCache) *ChannelResolver {
	return &ChannelResolver{api: api, cache: cache}
}

// Resolve maps a token to an upper-cased canonical channel ID. The second
// return is false when the token cannot be resolved; callers aggregate
// unresolved tokens rather than treating them as errors here.
func (r *ChannelResolver) Resolve(ctx context.Context, token string) (string, bool) {
	token = strings.TrimSpace(token)

	if strings.HasPrefix(token, "<#") && strings.HasSuffix(token, ">") {
		return extractMentionID(token)
	}

	if upper := strings.ToUpper(token); validIDPrefix(upper) {
		if len(upper) >= channelIDMinLen {
			return upper, true
		}
		// Looks like an ID but is too short: reject, don't fall through.
		return "", false
	}

	name := strings.ToLower(strings.TrimPrefix(token, "#"))
	if name == "" {
		return "", false
	}
	return r.lookupName(ctx, name)
}

// extractMentionID parses <#ID> or <#ID|label> bracket mentions.
func extractMentionID(token string) (string, bool) {
	body := token[2 : len(token)-1]
	if idx := strings.Index(body, "|"); idx >= 0 {
		body = body[:idx]
	}
	upper := strings.ToUpper(body)
	if validIDPrefix(upper) {
		return upper, true
	}
	return "", false
}

// validIDPrefix reports whether an upper-cased token starts with a public
// or private channel ID prefix letter.
func validIDPrefix(upper string) bool {
	return strings.HasPrefix(upper, "C") || strings.HasPrefix(upper, "G")
}

// lookupName resolves a lowercased channel name through the cache, paging
// the full channel listing on a miss. Every channel seen while paging is
// cached, so one listing pass serves all subsequent name lookups.
func (r *ChannelResolver) lookupName(ctx context.Context, name string) (string, bool) {
	if id, ok := r.cache.Get(name); ok {
		return id, true
	}

	cursor := ""
	for {
		page, err := r.api.ConversationsList(ctx, cursor, listPageSize)
		if err != nil {
			slog.Error("failed to look up channel", "name", name, "error", err)
			return "", false
		}
		for _, ch := range page.Channels {
			r.cache.Put(strings.ToLower(ch.Name), ch.ID)
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	return r.cache.Get(name)
}
