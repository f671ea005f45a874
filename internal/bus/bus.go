// Package bus decouples the Socket Mode transport from command handling:
// the transport publishes mention events, the consumer loop in cmd drains
// them and dispatches each to the bot.
package bus

import (
	"context"
	"log/slog"
)

// MentionEvent is one incoming command: the bot was mentioned in a channel.
type MentionEvent struct {
	// EventID is a process-local identifier used to correlate log lines.
	EventID string
	// Text is the raw message text, self-mention included.
	Text string
	// UserID is the invoking user.
	UserID string
	// ChannelID is the channel the mention happened in.
	ChannelID string
	// ThreadTS is the thread replies must go to (the triggering message's
	// thread, or the message itself when it started one).
	ThreadTS string
}

// MessageBus is a buffered in-process queue of mention events.
type MessageBus struct {
	inbound chan MentionEvent
}

// New creates a MessageBus with the given buffer size.
func New(buffer int) *MessageBus {
	return &MessageBus{inbound: make(chan MentionEvent, buffer)}
}

// PublishInbound enqueues an event. When the buffer is full the event is
// dropped with a warning rather than blocking the transport read loop.
func (b *MessageBus) PublishInbound(ev MentionEvent) {
	select {
	case b.inbound <- ev:
	default:
		slog.Warn("inbound bus full, dropping mention event",
			"event_id", ev.EventID,
			"channel", ev.ChannelID,
		)
	}
}

// ConsumeInbound blocks until an event is available or the context ends.
// The second return is false when the context was cancelled.
func (b *MessageBus) ConsumeInbound(ctx context.Context) (MentionEvent, bool) {
	select {
	case <-ctx.Done():
		return MentionEvent{}, false
	case ev := <-b.inbound:
		return ev, true
	}
}
