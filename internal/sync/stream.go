// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

package sync

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// ErrStreamClosed is reported on the event channel when the push stream
// ends without a lower-level error (EOF, server close).
var ErrStreamClosed = errors.New("push stream closed")

// StreamEventKind enumerates the closed set of push-channel events. The raw
// wire protocols (SSE event names, WebSocket message types) are folded into
// this variant type by the transport adapters so the engine's handler is a
// total match over a finite set instead of string comparisons.
type StreamEventKind string

const (
	// StreamUpdated carries a full raw broadcast payload.
	StreamUpdated StreamEventKind = "updated"
	// StreamPing is a keep-alive; any unrecognized wire event maps here.
	StreamPing StreamEventKind = "ping"
	// StreamError signals the channel is dead; the transport has already
	// torn the connection down and will emit nothing further.
	StreamError StreamEventKind = "error"
)

// StreamEvent is one event from the push channel.
type StreamEvent struct {
	Kind StreamEventKind
	// Payload is the raw decoded broadcast payload for StreamUpdated.
	Payload any
	// Err is set for StreamError.
	Err error
}

// StreamURL joins the upstream base URL and stream path and appends the
// language the subscription is keyed by. Upstreams localize or filter the
// stream per language, so an empty lang is passed through without a query.
func StreamURL(base, path, lang string) string {
	u := strings.TrimRight(base, "/") + path
	if lang != "" {
		u += "?lang=" + url.QueryEscape(lang)
	}
	return u
}

// StreamClient is a push-channel subscription. Implementations do not
// reconnect on their own: after a StreamError the engine decides how to
// recover (it falls back to polling).
type StreamClient interface {
	// Connect opens the stream and starts delivering events. It returns an
	// error if the initial connection fails; after a successful return,
	// failures surface as StreamError events.
	Connect(ctx context.Context) error
	// Events returns the event channel. Closed after Close or a terminal
	// StreamError.
	Events() <-chan StreamEvent
	// Close tears the subscription down and waits for internal goroutines.
	Close() error
}
