package bot

import (
	"context"
	"sort"
	"strings"

	"github.com/nextlevelbuilder/slackadder/internal/groups"
)

// ResolvedSet is the outcome of expanding a token list: the deduplicated,
// insertion-ordered channel IDs plus the three error categories. Built once
// per add command and never mutated afterwards.
type ResolvedSet struct {
	// Channels are canonical channel IDs, first-seen order, no duplicates.
	Channels []string
	// Unknown are tokens that are neither group names nor resolvable
	// channel references.
	Unknown []string
	// EmptyGroups are group tokens whose members all failed to resolve.
	EmptyGroups []string
	// MissingInGroup records partially-unresolvable groups as
	// "group -> member, member".
	MissingInGroup []string
}

// ErrorText aggregates the error categories into the user-facing failure
// message, or returns "" when the set is cleanly resolved. Any unresolved
// token, empty group, or missing member fails the whole command: inviting
// to a silently reduced subset of channels is worse than failing loudly.
func (s *ResolvedSet) ErrorText() string {
	var msgs []string
	if len(s.Unknown) > 0 {
		msgs = append(msgs, "Unknown channel or channel group: "+joinSorted(s.Unknown))
	}
	if len(s.EmptyGroups) > 0 {
		msgs = append(msgs, "Channel groups without any valid channels: "+joinSorted(s.EmptyGroups))
	}
	if len(s.MissingInGroup) > 0 {
		msgs = append(msgs, "Could not resolve channels within groups: "+joinSorted(s.MissingInGroup))
	}
	if len(msgs) == 0 && len(s.Channels) == 0 {
		return msgNameChannels
	}
	return strings.Join(msgs, "\n")
}

func joinSorted(items []string) string {
	sorted := make([]string, len(items))
	copy(sorted, items)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}

// Expander partitions command tokens into named groups and direct channel
// references, expanding groups through the resolver.
type Expander struct {
	resolver *ChannelResolver
}

// NewExpander creates an expander over the given resolver.
func NewExpander(resolver *ChannelResolver) *Expander {
	return &Expander{resolver: resolver}
}

type groupResult struct {
	resolved []string
	missing  []string
}

// Expand resolves every token against the group definitions. Each distinct
// group is expanded exactly once regardless of how often it appears in the
// input, and its errors are accounted once. The final channel list keeps
// first-seen order across the whole token sequence.
func (e *Expander) Expand(ctx context.Context, tokens []string, defs *groups.Definitions) *ResolvedSet {
	set := &ResolvedSet{}

	var (
		seenChannels = map[string]bool{}
		seenUnknown  = map[string]bool{}
		seenGroups   = map[string]bool{}
	)

	addChannel := func(id string) {
		if !seenChannels[id] {
			seenChannels[id] = true
			set.Channels = append(set.Channels, id)
		}
	}

	for _, token := range tokens {
		lower := strings.ToLower(token)

		if group, ok := defs.Lookup(lower); ok {
			if seenGroups[lower] {
				continue
			}
			seenGroups[lower] = true

			res := e.expandGroup(ctx, group)
			if len(res.resolved) == 0 {
				set.EmptyGroups = append(set.EmptyGroups, token)
			}
			for _, id := range res.resolved {
				addChannel(id)
			}
			if len(res.missing) > 0 {
				set.MissingInGroup = append(set.MissingInGroup,
					token+" -> "+strings.Join(res.missing, ", "))
			}
			continue
		}

		if id, ok := e.resolver.Resolve(ctx, token); ok {
			addChannel(id)
		} else if !seenUnknown[token] {
			seenUnknown[token] = true
			set.Unknown = append(set.Unknown, token)
		}
	}

	return set
}

// expandGroup resolves one group's members, keeping the resolved members
// even when others are missing.
func (e *Expander) expandGroup(ctx context.Context, group groups.Group) groupResult {
	var res groupResult
	seenResolved := map[string]bool{}
	seenMissing := map[string]bool{}

	for _, entry := range group.Channels {
		if id, ok := e.resolver.Resolve(ctx, entry); ok {
			if !seenResolved[id] {
				seenResolved[id] = true
				res.resolved = append(res.resolved, id)
			}
		} else if !seenMissing[entry] {
			seenMissing[entry] = true
			res.missing = append(res.missing, entry)
		}
	}
	return res
}
