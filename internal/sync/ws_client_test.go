// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

package sync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// wsTestServer upgrades the connection and relays the messages it receives
// on send as text frames.
func wsTestServer(t *testing.T) (*httptest.Server, chan string) {
	t.Helper()
	send := make(chan string)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for msg := range send {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(func() {
		close(send)
		srv.Close()
	})
	return srv, send
}

func TestWSClientUpdatedMessage(t *testing.T) {
	srv, send := wsTestServer(t)
	client := NewWSClient(srv.URL, 5*time.Second)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Close()

	send <- `{"type":"BroadcastUpdated","payload":{"ok":true,"items":{"breaking":[{"text":"x"}],"live":[]}}}`

	ev := recvEvent(t, client.Events())
	if ev.Kind != StreamUpdated {
		t.Fatalf("kind = %q, want %q", ev.Kind, StreamUpdated)
	}
	payload, ok := ev.Payload.(map[string]any)
	if !ok {
		t.Fatalf("payload type = %T, want map", ev.Payload)
	}
	if payload["ok"] != true {
		t.Errorf("payload not decoded: %v", payload)
	}
}

func TestWSClientOtherMessagesArePings(t *testing.T) {
	srv, send := wsTestServer(t)
	client := NewWSClient(srv.URL, 5*time.Second)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Close()

	tests := []string{
		`{"type":"KeepAlive"}`,
		`{"type":"BroadcastUpdated"}`,
		`not json at all`,
	}
	for _, msg := range tests {
		send <- msg
		ev := recvEvent(t, client.Events())
		if ev.Kind != StreamPing {
			t.Errorf("message %q: kind = %q, want ping", msg, ev.Kind)
		}
	}
}

func TestWSClientSchemeRewrite(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"http://example.com/stream", "ws://example.com/stream"},
		{"https://example.com/stream", "wss://example.com/stream"},
		{"ws://example.com/stream", "ws://example.com/stream"},
		{"http://example.com/stream?lang=hi", "ws://example.com/stream?lang=hi"},
	}
	for _, tt := range tests {
		if got := NewWSClient(tt.in, time.Second).url; got != tt.want {
			t.Errorf("NewWSClient(%q).url = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWSClientServerCloseYieldsError(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	client := NewWSClient(srv.URL, 5*time.Second)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Close()

	ev := recvEvent(t, client.Events())
	if ev.Kind != StreamError {
		t.Fatalf("kind = %q, want %q", ev.Kind, StreamError)
	}
}
