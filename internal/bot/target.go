package bot

import (
	"regexp"
	"strings"
)

// userMentionRe matches <@UXXXX> and <@UXXXX|label> user mentions.
var userMentionRe = regexp.MustCompile(`^<@(U[A-Z0-9]+)(?:\|[^>]+)?>$`)

// ResolveTargetUser extracts the user ID of the account to invite from a
// mention token or a raw U-prefixed ID.
func ResolveTargetUser(token string) (string, bool) {
	token = strings.TrimSpace(token)
	if m := userMentionRe.FindStringSubmatch(token); m != nil {
		return m[1], true
	}
	if upper := strings.ToUpper(token); strings.HasPrefix(upper, "U") {
		return upper, true
	}
	return "", false
}
