package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nextlevelbuilder/slackadder/internal/bus"
	"github.com/nextlevelbuilder/slackadder/internal/groups"
)

const usageHelp = "Usage: `@your_bot add @bot_to_invite customers <#channel-one> team-support>`\n" +
	"Use `@your_bot list` to view available channel groups.\n" +
	"Channel groups come from channel_groups.json; the `default` group applies when no channels are provided."

const (
	msgMissingEventInfo = "Unable to process request: missing user or channel info."
	msgNameChannels     = "Please name channel group(s) and/or channel names."
	msgMissingTarget    = "Missing bot user ID to invite"
	msgBadTarget        = "Couldn't understand which bot to invite. Mention it or provide the user ID."
	msgListNoArgs       = "The `list` command does not take any additional arguments."
	msgNoGroups         = "No channel groups defined in channel_groups.json."
	msgNoDescription    = "(no description provided)"
)

// Bot is the command engine: it authorizes, parses, and executes mention
// commands, replying in the triggering thread. The caches live for the
// bot's lifetime and tolerate concurrent event handling.
type Bot struct {
	selfID     string
	replier    Replier
	gate       *Gate
	expander   *Expander
	inviter    *Inviter
	groupsFile string
}

// New wires up a Bot. selfID is the bot's own user ID (from auth.test),
// used to strip the leading mention. allowedUsers empty disables the
// allow-list check.
func New(selfID string, api API, replier Replier, allowedUsers []string, groupsFile string) *Bot {
	resolver := NewChannelResolver(api, NewNameCache())
	return &Bot{
		selfID:     selfID,
		replier:    replier,
		gate:       NewGate(api, allowedUsers, NewUserFlagCache(), NewChannelFlagCache()),
		expander:   NewExpander(resolver),
		inviter:    NewInviter(api),
		groupsFile: groupsFile,
	}
}

// HandleMention processes one incoming command event to completion. Every
// code path ends in a same-thread reply or a deliberate no-op; no failure
// escapes the handler.
func (b *Bot) HandleMention(ctx context.Context, ev bus.MentionEvent) {
	reply := func(text string) {
		if err := b.replier.PostMessage(ctx, ev.ChannelID, ev.ThreadTS, text); err != nil {
			slog.Error("failed to post reply", "event_id", ev.EventID, "channel", ev.ChannelID, "error", err)
		}
	}

	if ev.UserID == "" || ev.ChannelID == "" {
		reply(msgMissingEventInfo)
		return
	}

	if msg, ok := b.gate.Check(ctx, ev.UserID, ev.ChannelID); !ok {
		reply(msg)
		return
	}

	command, args, err := ParseCommand(ev.Text, b.selfID)
	if err != nil {
		reply(err.Error() + "\n" + usageHelp)
		return
	}

	slog.Info("command received",
		"event_id", ev.EventID,
		"command", command,
		"args", len(args),
		"user", ev.UserID,
	)

	switch command {
	case "", "help":
		reply(usageHelp)
	case "list":
		b.handleList(ctx, ev, args, reply)
	case "add":
		b.handleAdd(ctx, ev, args, reply)
	default:
		reply(fmt.Sprintf("Unknown command '%s'.\n", command) + usageHelp)
	}
}

// handleList enumerates the configured groups with their descriptions.
func (b *Bot) handleList(ctx context.Context, ev bus.MentionEvent, args []string, reply func(string)) {
	defs, err := groups.Load(b.groupsFile)
	if err != nil {
		reply(err.Error())
		return
	}

	if len(args) > 0 {
		reply(msgListNoArgs)
		return
	}

	if defs.Len() == 0 {
		reply(msgNoGroups)
		return
	}

	var lines []string
	for _, name := range defs.Names() {
		group, _ := defs.Lookup(name)
		description := strings.TrimSpace(group.Description)
		if description == "" {
			description = msgNoDescription
		}
		lines = append(lines, fmt.Sprintf("*%s*: %s", group.DisplayName, description))
	}
	b.replyBatched(ctx, ev, lines)
}

// handleAdd resolves the target account and channel tokens, then runs the
// invitation orchestration. Resolution is all-or-nothing: any unresolved
// token fails the command before any invite is attempted.
func (b *Bot) handleAdd(ctx context.Context, ev bus.MentionEvent, args []string, reply func(string)) {
	defs, err := groups.Load(b.groupsFile)
	if err != nil {
		reply(err.Error())
		return
	}

	if len(args) == 0 {
		reply(msgMissingTarget + "\n" + usageHelp)
		return
	}
	target, ok := ResolveTargetUser(args[0])
	if !ok {
		reply(msgBadTarget + "\n" + usageHelp)
		return
	}

	tokens := args[1:]
	if len(tokens) == 0 {
		if _, ok := defs.Lookup("default"); ok {
			tokens = []string{"default"}
		} else {
			reply(msgNameChannels + "\n" + usageHelp)
			return
		}
	}

	set := b.expander.Expand(ctx, tokens, defs)
	if msg := set.ErrorText(); msg != "" {
		reply(msg + "\n" + usageHelp)
		return
	}

	slog.Info("inviting to channels",
		"event_id", ev.EventID,
		"target", target,
		"channels", len(set.Channels),
	)

	results := b.inviter.InviteToChannels(ctx, target, set.Channels)
	b.replyBatched(ctx, ev, results)
}

// replyBatched packs lines into size-bounded messages and posts each one.
func (b *Bot) replyBatched(ctx context.Context, ev bus.MentionEvent, lines []string) {
	for _, batch := range BatchLines(lines) {
		if err := b.replier.PostMessage(ctx, ev.ChannelID, ev.ThreadTS, batch); err != nil {
			slog.Error("failed to post reply batch", "event_id", ev.EventID, "channel", ev.ChannelID, "error", err)
		}
	}
}
