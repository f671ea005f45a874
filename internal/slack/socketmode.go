package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nextlevelbuilder/slackadder/internal/bus"
)

// SocketMode receives events over Slack's Socket Mode WebSocket and
// publishes app_mention events to the message bus. Each connection is
// opened via apps.connections.open using the app-level token.
type SocketMode struct {
	appToken   string
	apiBase    string
	bus        *bus.MessageBus
	httpClient *http.Client

	mu      sync.Mutex
	conn    *websocket.Conn
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// SocketModeOption configures a SocketMode listener.
type SocketModeOption func(*SocketMode)

// WithSocketAPIBase overrides the Web API root used to open connections
// (for testing).
func WithSocketAPIBase(u string) SocketModeOption {
	return func(s *SocketMode) { s.apiBase = strings.TrimSuffix(u, "/") }
}

// NewSocketMode creates a Socket Mode listener from an app-level token.
func NewSocketMode(appToken string, msgBus *bus.MessageBus, opts ...SocketModeOption) *SocketMode {
	s := &SocketMode{
		appToken:   appToken,
		apiBase:    DefaultBaseURL,
		bus:        msgBus,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens the Socket Mode connection and begins the listen loop.
// Connection failures are retried with backoff rather than failing hard.
func (s *SocketMode) Start(ctx context.Context) error {
	slog.Info("starting socket mode listener")

	s.ctx, s.cancel = context.WithCancel(ctx)

	if err := s.connect(); err != nil {
		slog.Warn("initial socket mode connection failed, will retry", "error", err)
	}

	go s.listenLoop()

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	return nil
}

// Stop shuts down the listener and closes the WebSocket.
func (s *SocketMode) Stop(_ context.Context) error {
	slog.Info("stopping socket mode listener")

	if s.cancel != nil {
		s.cancel()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	s.running = false
	return nil
}

// IsRunning reports whether the listener is active.
func (s *SocketMode) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// openConnection calls apps.connections.open and returns the WebSocket URL.
func (s *SocketMode) openConnection() (string, error) {
	req, err := http.NewRequestWithContext(s.ctx, http.MethodPost, s.apiBase+"/apps.connections.open", nil)
	if err != nil {
		return "", fmt.Errorf("create connections.open request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.appToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call connections.open: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
		URL   string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("parse connections.open response: %w", err)
	}
	if !result.OK {
		return "", &APIError{Method: "apps.connections.open", Code: result.Error, StatusCode: resp.StatusCode}
	}
	return result.URL, nil
}

// connect opens a fresh Socket Mode WebSocket.
func (s *SocketMode) connect() error {
	wsURL, err := s.openConnection()
	if err != nil {
		return err
	}

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial socket mode: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	slog.Info("socket mode connected")
	return nil
}

// envelope is a Socket Mode frame. events_api frames must be acknowledged
// by echoing the envelope_id.
type envelope struct {
	Type       string          `json:"type"`
	EnvelopeID string          `json:"envelope_id"`
	Reason     string          `json:"reason,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

type eventsAPIPayload struct {
	Event struct {
		Type     string `json:"type"`
		User     string `json:"user"`
		Text     string `json:"text"`
		Channel  string `json:"channel"`
		TS       string `json:"ts"`
		ThreadTS string `json:"thread_ts"`
	} `json:"event"`
}

// listenLoop reads envelopes with automatic reconnection. Slack routinely
// sends disconnect frames to rotate connections; treating every read error
// the same keeps the loop simple.
func (s *SocketMode) listenLoop() {
	backoff := time.Second

	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()

		if conn == nil {
			slog.Info("attempting socket mode reconnect", "backoff", backoff)

			select {
			case <-s.ctx.Done():
				return
			case <-time.After(backoff):
			}

			if err := s.connect(); err != nil {
				slog.Warn("socket mode reconnect failed", "error", err)
				backoff = min(backoff*2, 30*time.Second)
				continue
			}

			backoff = time.Second
			continue
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			slog.Warn("socket mode read error, will reconnect", "error", err)
			s.dropConn()
			continue
		}

		var env envelope
		if err := json.Unmarshal(message, &env); err != nil {
			slog.Warn("invalid socket mode frame", "error", err)
			continue
		}

		switch env.Type {
		case "hello":
			slog.Debug("socket mode hello received")
		case "disconnect":
			slog.Info("socket mode disconnect requested", "reason", env.Reason)
			s.dropConn()
		case "events_api":
			s.ack(conn, env.EnvelopeID)
			s.handleEventsAPI(env.Payload)
		default:
			slog.Debug("socket mode frame skipped", "type", env.Type)
		}
	}
}

func (s *SocketMode) dropConn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

// ack acknowledges an events_api envelope so Slack does not redeliver it.
func (s *SocketMode) ack(conn *websocket.Conn, envelopeID string) {
	payload, _ := json.Marshal(map[string]string{"envelope_id": envelopeID})
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		slog.Warn("failed to ack socket mode envelope", "error", err)
	}
}

// handleEventsAPI publishes app_mention events to the bus. Other event
// types are a deliberate no-op.
func (s *SocketMode) handleEventsAPI(payload json.RawMessage) {
	var p eventsAPIPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		slog.Warn("invalid events_api payload", "error", err)
		return
	}
	if p.Event.Type != "app_mention" {
		slog.Debug("event skipped", "type", p.Event.Type)
		return
	}

	threadTS := p.Event.ThreadTS
	if threadTS == "" {
		threadTS = p.Event.TS
	}

	ev := bus.MentionEvent{
		EventID:   uuid.NewString(),
		Text:      p.Event.Text,
		UserID:    p.Event.User,
		ChannelID: p.Event.Channel,
		ThreadTS:  threadTS,
	}

	slog.Debug("app mention received",
		"event_id", ev.EventID,
		"user", ev.UserID,
		"channel", ev.ChannelID,
	)

	s.bus.PublishInbound(ev)
}
