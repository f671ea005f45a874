package slack

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nextlevelbuilder/slackadder/internal/bus"
)

// TestSocketMode_OpenConnection verifies token handling and URL extraction
// for apps.connections.open.
func TestSocketMode_OpenConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/apps.connections.open" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer xapp-test" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{"ok":true,"url":"wss://example.invalid/link"}`))
	}))
	defer srv.Close()

	s := NewSocketMode("xapp-test", bus.New(1), WithSocketAPIBase(srv.URL))
	s.ctx = context.Background()

	url, err := s.openConnection()
	if err != nil {
		t.Fatalf("openConnection: %v", err)
	}
	if url != "wss://example.invalid/link" {
		t.Errorf("url = %q", url)
	}
}

// TestSocketMode_OpenConnectionRejected verifies the error envelope path.
func TestSocketMode_OpenConnectionRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"error":"invalid_auth"}`))
	}))
	defer srv.Close()

	s := NewSocketMode("xapp-bad", bus.New(1), WithSocketAPIBase(srv.URL))
	s.ctx = context.Background()

	_, err := s.openConnection()
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Code != "invalid_auth" {
		t.Errorf("code = %q, want invalid_auth", apiErr.Code)
	}
}

// TestSocketMode_HandleEventsAPI verifies mention filtering and the
// thread-timestamp fallback.
func TestSocketMode_HandleEventsAPI(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantEvent  bool
		wantThread string
	}{
		{
			name:       "top-level mention threads on its own ts",
			payload:    `{"event":{"type":"app_mention","user":"U11111111","text":"<@UBOT> help","channel":"C12345678","ts":"100.1"}}`,
			wantEvent:  true,
			wantThread: "100.1",
		},
		{
			name:       "threaded mention keeps the thread",
			payload:    `{"event":{"type":"app_mention","user":"U11111111","text":"<@UBOT> help","channel":"C12345678","ts":"100.2","thread_ts":"100.1"}}`,
			wantEvent:  true,
			wantThread: "100.1",
		},
		{
			name:      "non-mention event skipped",
			payload:   `{"event":{"type":"message","user":"U11111111","text":"hi","channel":"C12345678","ts":"100.3"}}`,
			wantEvent: false,
		},
		{
			name:      "malformed payload skipped",
			payload:   `{"event":`,
			wantEvent: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgBus := bus.New(1)
			s := NewSocketMode("xapp-test", msgBus)

			s.handleEventsAPI(json.RawMessage(tt.payload))

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()
			ev, ok := msgBus.ConsumeInbound(ctx)

			if ok != tt.wantEvent {
				t.Fatalf("event published = %v, want %v", ok, tt.wantEvent)
			}
			if !ok {
				return
			}
			if ev.ThreadTS != tt.wantThread {
				t.Errorf("ThreadTS = %q, want %q", ev.ThreadTS, tt.wantThread)
			}
			if ev.UserID != "U11111111" || ev.ChannelID != "C12345678" {
				t.Errorf("event = %+v", ev)
			}
			if ev.EventID == "" {
				t.Error("EventID not assigned")
			}
		})
	}
}

// TestSocketMode_EndToEnd runs a real WebSocket round trip: connect, hello,
// events_api with ack, and a published mention event.
func TestSocketMode_EndToEnd(t *testing.T) {
	upgrader := websocket.Upgrader{}
	acks := make(chan string, 1)

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/apps.connections.open", func(w http.ResponseWriter, r *http.Request) {
		wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/link"
		json.NewEncoder(w).Encode(map[string]any{"ok": true, "url": wsURL})
	})
	mux.HandleFunc("/link", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"hello"}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{
			"type": "events_api",
			"envelope_id": "env-1",
			"payload": {"event": {"type": "app_mention", "user": "U11111111", "text": "<@UBOT> list", "channel": "C12345678", "ts": "100.1"}}
		}`))

		var ack struct {
			EnvelopeID string `json:"envelope_id"`
		}
		if _, msg, err := conn.ReadMessage(); err == nil {
			json.Unmarshal(msg, &ack)
		}
		acks <- ack.EnvelopeID

		// Hold the connection open until the client goes away.
		conn.ReadMessage()
	})

	msgBus := bus.New(4)
	s := NewSocketMode("xapp-test", msgBus, WithSocketAPIBase(srv.URL))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop(context.Background())

	if !s.IsRunning() {
		t.Error("listener not running after Start")
	}

	ev, ok := msgBus.ConsumeInbound(ctx)
	if !ok {
		t.Fatal("no mention event published")
	}
	if ev.ChannelID != "C12345678" || ev.Text != "<@UBOT> list" {
		t.Errorf("event = %+v", ev)
	}

	select {
	case id := <-acks:
		if id != "env-1" {
			t.Errorf("acked envelope %q, want env-1", id)
		}
	case <-ctx.Done():
		t.Fatal("envelope never acknowledged")
	}
}
