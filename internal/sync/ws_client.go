// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

/*
ws_client.go - WebSocket push transport

Alternative push channel for upstreams that expose a WebSocket endpoint
instead of SSE. Messages are JSON objects with a "type" discriminator:

  {"type": "BroadcastUpdated", "payload": {...}}  -> StreamUpdated
  anything else                                   -> StreamPing

Like the SSE client, this transport never reconnects; a read or write
failure tears the connection down and surfaces one StreamError.
*/

package sync

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	gosync "sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/newslive/tickersync/internal/logging"
	"github.com/newslive/tickersync/internal/metrics"
)

const (
	wsUpdatedType  = "BroadcastUpdated"
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsReadLimit    = 4 << 20
)

// wsMessage is the upstream WebSocket envelope.
type wsMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// WSClient consumes a WebSocket broadcast stream.
type WSClient struct {
	url    string
	dialer *websocket.Dialer

	connMu gosync.Mutex
	conn   *websocket.Conn

	events   chan StreamEvent
	stopChan chan struct{}
	stopOnce gosync.Once
	wg       gosync.WaitGroup
}

// NewWSClient creates a client for the given WebSocket URL. An http(s)
// scheme is rewritten to ws(s) so the same base URL config works for both
// transports.
func NewWSClient(url string, timeout time.Duration) *WSClient {
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return &WSClient{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: timeout,
		},
		events:   make(chan StreamEvent, 8),
		stopChan: make(chan struct{}),
	}
}

// Connect dials the endpoint and starts the listener and keepalive
// goroutines.
func (c *WSClient) Connect(ctx context.Context) error {
	conn, resp, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("websocket dial: status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("websocket dial: %w", err)
	}
	if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
		conn.Close()
		return fmt.Errorf("websocket dial: unexpected status %d", resp.StatusCode)
	}
	conn.SetReadLimit(wsReadLimit)

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	metrics.StreamConnected.Set(1)
	logging.Info().
		Str("component", "ws_client").
		Str("url", c.url).
		Msg("websocket stream connected")

	c.wg.Add(2)
	go c.listen(conn)
	go c.keepalive(conn)
	return nil
}

// Events returns the event channel.
func (c *WSClient) Events() <-chan StreamEvent {
	return c.events
}

// Close tears down the connection and waits for goroutines to exit.
func (c *WSClient) Close() error {
	c.stopOnce.Do(func() {
		close(c.stopChan)
		c.connMu.Lock()
		if c.conn != nil {
			deadline := time.Now().Add(wsWriteTimeout)
			c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			c.conn.Close()
		}
		c.connMu.Unlock()
	})
	c.wg.Wait()
	return nil
}

// listen reads messages until the connection drops. It owns the events
// channel and closes it on exit.
func (c *WSClient) listen(conn *websocket.Conn) {
	defer c.wg.Done()
	defer close(c.events)
	defer func() {
		metrics.StreamConnected.Set(0)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-c.stopChan:
				return
			default:
			}
			logging.Warn().
				Str("component", "ws_client").
				Err(err).
				Msg("websocket stream ended")
			c.emit(StreamEvent{Kind: StreamError, Err: err})
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logging.Warn().
				Str("component", "ws_client").
				Err(err).
				Msg("discarding malformed websocket message")
			metrics.StreamEvents.WithLabelValues("ping").Inc()
			c.emit(StreamEvent{Kind: StreamPing})
			continue
		}
		if msg.Type != wsUpdatedType || msg.Payload == nil {
			metrics.StreamEvents.WithLabelValues("ping").Inc()
			c.emit(StreamEvent{Kind: StreamPing})
			continue
		}
		metrics.StreamEvents.WithLabelValues("updated").Inc()
		c.emit(StreamEvent{Kind: StreamUpdated, Payload: msg.Payload})
	}
}

// keepalive sends periodic pings so intermediaries keep the connection open.
func (c *WSClient) keepalive(conn *websocket.Conn) {
	defer c.wg.Done()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			deadline := time.Now().Add(wsWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				// The listener will observe the broken connection and
				// report the error; the keepalive just stops.
				return
			}
		}
	}
}

// emit delivers an event unless the client is shutting down.
func (c *WSClient) emit(ev StreamEvent) {
	select {
	case c.events <- ev:
	case <-c.stopChan:
	}
}
