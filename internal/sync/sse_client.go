// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

/*
sse_client.go - Server-Sent Events push transport

Subscribes to the upstream text/event-stream endpoint and folds the wire
events into StreamEvents:

  - event "broadcast_updated" with a JSON data payload -> StreamUpdated
  - any other event, comment line, or empty data       -> StreamPing
  - read failure or stream end                         -> StreamError, then
    the event channel is closed

The client never reconnects on its own. Recovery policy lives in the engine,
which switches to polling after a StreamError.
*/

package sync

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	gosync "sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/newslive/tickersync/internal/logging"
	"github.com/newslive/tickersync/internal/metrics"
)

// sseEventName is the only event name that carries a broadcast payload.
const sseEventName = "broadcast_updated"

// sseMaxLineSize bounds a single SSE line (the data payload is one line).
const sseMaxLineSize = 4 << 20

// SSEClient consumes a Server-Sent Events broadcast stream.
type SSEClient struct {
	url        string
	httpClient *http.Client

	connMu gosync.Mutex
	body   io.ReadCloser

	events   chan StreamEvent
	stopChan chan struct{}
	stopOnce gosync.Once
	wg       gosync.WaitGroup
}

// NewSSEClient creates a client for the given stream URL. The URL should be
// the upstream base URL joined with the configured push path.
func NewSSEClient(url string, timeout time.Duration) *SSEClient {
	return &SSEClient{
		url: url,
		httpClient: &http.Client{
			// No overall timeout: the stream is long-lived. Connection
			// establishment is bounded via the dial/TLS phases only.
			Transport: &http.Transport{
				ResponseHeaderTimeout: timeout,
			},
		},
		events:   make(chan StreamEvent, 8),
		stopChan: make(chan struct{}),
	}
}

// Connect opens the stream and starts the reader goroutine.
func (c *SSEClient) Connect(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("SSE request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("SSE connect: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return fmt.Errorf("SSE connect: unexpected status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		resp.Body.Close()
		return fmt.Errorf("SSE connect: unexpected content type %q", ct)
	}

	c.connMu.Lock()
	c.body = resp.Body
	c.connMu.Unlock()

	metrics.StreamConnected.Set(1)
	logging.Info().
		Str("component", "sse_client").
		Str("url", c.url).
		Msg("SSE stream connected")

	c.wg.Add(1)
	go c.readLoop(resp.Body)
	return nil
}

// Events returns the event channel.
func (c *SSEClient) Events() <-chan StreamEvent {
	return c.events
}

// Close tears down the stream and waits for the reader to exit.
func (c *SSEClient) Close() error {
	c.stopOnce.Do(func() {
		close(c.stopChan)
		c.connMu.Lock()
		if c.body != nil {
			c.body.Close()
		}
		c.connMu.Unlock()
	})
	c.wg.Wait()
	return nil
}

// readLoop parses the event stream line by line and emits StreamEvents.
// It owns the events channel and closes it on exit.
func (c *SSEClient) readLoop(body io.ReadCloser) {
	defer c.wg.Done()
	defer close(c.events)
	defer func() {
		metrics.StreamConnected.Set(0)
	}()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 64*1024), sseMaxLineSize)

	var eventName string
	var data strings.Builder

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case line == "":
			// Blank line dispatches the accumulated event.
			c.dispatch(eventName, data.String())
			eventName = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
			// Comment line, used by servers as a heartbeat.
			c.emit(StreamEvent{Kind: StreamPing})
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		default:
			// id:, retry:, unknown fields are ignored.
		}
	}

	// Reader ended: either Close was called or the connection dropped.
	err := scanner.Err()
	select {
	case <-c.stopChan:
		return
	default:
	}
	if err == nil {
		err = ErrStreamClosed
	}
	logging.Warn().
		Str("component", "sse_client").
		Err(err).
		Msg("SSE stream ended")
	c.emit(StreamEvent{Kind: StreamError, Err: err})
}

// dispatch converts one complete wire event into a StreamEvent.
func (c *SSEClient) dispatch(eventName, data string) {
	if eventName != sseEventName {
		metrics.StreamEvents.WithLabelValues("ping").Inc()
		c.emit(StreamEvent{Kind: StreamPing})
		return
	}
	if strings.TrimSpace(data) == "" {
		metrics.StreamEvents.WithLabelValues("ping").Inc()
		c.emit(StreamEvent{Kind: StreamPing})
		return
	}
	var payload any
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		logging.Warn().
			Str("component", "sse_client").
			Err(err).
			Msg("discarding malformed SSE payload")
		metrics.StreamEvents.WithLabelValues("ping").Inc()
		c.emit(StreamEvent{Kind: StreamPing})
		return
	}
	metrics.StreamEvents.WithLabelValues("updated").Inc()
	c.emit(StreamEvent{Kind: StreamUpdated, Payload: payload})
}

// emit delivers an event unless the client is shutting down.
func (c *SSEClient) emit(ev StreamEvent) {
	select {
	case c.events <- ev:
	case <-c.stopChan:
	}
}
