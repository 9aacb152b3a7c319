// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

/*
engine.go - Broadcast synchronization engine

The engine keeps one authoritative Snapshot of the current broadcast and
refreshes it from two channels:

  - push: a StreamClient delivering updates as they happen. While the push
    channel is healthy, periodic polls are skipped.
  - pull: the orchestrator, driven by a ticker, by Poke (rate-limited
    on-demand refresh), and by push-channel failure.

Only one fetch runs at a time. Starting a new fetch cancels the previous
one, and a cancelled fetch never touches the snapshot, so a slow stale
response cannot overwrite a newer one. Published snapshots are deduplicated
by content fingerprint; subscribers only see real changes.

The snapshot never goes blank once populated: a fetch that fails at the
transport level keeps the previous items on display, and resolved ticker
text falls back to a per-language placeholder when a list is empty.
*/

package sync

import (
	"context"
	gosync "sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/newslive/tickersync/internal/broadcast"
	"github.com/newslive/tickersync/internal/logging"
	"github.com/newslive/tickersync/internal/metrics"
)

// Snapshot sources.
const (
	SourcePoll = "poll"
	SourceSSE  = "sse"
	SourceWS   = "ws"
)

// Snapshot is one published engine state. It carries both the canonical
// broadcast and the view rendered for the engine's display language, so
// most consumers never touch the resolver.
type Snapshot struct {
	Broadcast broadcast.Broadcast `json:"broadcast"`
	Lang      string              `json:"lang"`
	// Source names the channel that produced this snapshot: poll, sse or
	// ws. Empty until the first fetch completes.
	Source        string    `json:"source"`
	Fingerprint   string    `json:"fingerprint"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	IsLoading     bool      `json:"isLoading"`
	// Error is the last transport failure, or empty. Set alongside stale
	// data kept on display.
	Error string `json:"error,omitempty"`

	BreakingTexts []string `json:"breakingTexts"`
	LiveTexts     []string `json:"liveTexts"`
	ShowBreaking  bool     `json:"showBreaking"`
	ShowLive      bool     `json:"showLive"`
	// BreakingEnabled and LiveEnabled echo the backend's explicit enabled
	// flags. Nil when the payload carried no settings, so consumers can tell
	// "explicitly disabled" from "backend has no opinion" without inspecting
	// the canonical broadcast.
	BreakingEnabled  *bool   `json:"breakingEnabled,omitempty"`
	LiveEnabled      *bool   `json:"liveEnabled,omitempty"`
	BreakingSpeedSec float64 `json:"breakingSpeedSec"`
	LiveSpeedSec     float64 `json:"liveSpeedSec"`
}

// EngineOptions configures a sync engine.
type EngineOptions struct {
	// Lang is the display language snapshots are rendered for.
	Lang string
	// PollInterval is the pull-channel refresh period.
	PollInterval time.Duration
	// StreamSource labels push-delivered snapshots: SourceSSE or SourceWS.
	// Ignored when no stream client is attached.
	StreamSource string
}

// Engine synchronizes the broadcast snapshot from push and pull channels.
type Engine struct {
	orchestrator *Orchestrator
	stream       StreamClient
	streamSource string
	lang         string
	pollInterval time.Duration

	// limiter bounds Poke-driven refreshes to one per second.
	limiter *rate.Limiter

	mu          gosync.Mutex
	snapshot    Snapshot
	lastFP      string
	active      bool
	pushHealthy bool
	ready       bool
	cancelFetch context.CancelFunc
	subscribers map[uuid.UUID]chan Snapshot

	fetchWG  gosync.WaitGroup
	pokeChan chan struct{}
	stopChan chan struct{}
	stopOnce gosync.Once
}

// NewEngine creates an engine. stream may be nil for pull-only operation.
func NewEngine(orchestrator *Orchestrator, stream StreamClient, opts EngineOptions) *Engine {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 30 * time.Second
	}
	if opts.StreamSource == "" {
		opts.StreamSource = SourceSSE
	}
	return &Engine{
		orchestrator: orchestrator,
		stream:       stream,
		streamSource: opts.StreamSource,
		lang:         opts.Lang,
		pollInterval: opts.PollInterval,
		limiter:      rate.NewLimiter(rate.Limit(1), 1),
		snapshot: Snapshot{
			Broadcast:     broadcast.Empty(),
			Lang:          opts.Lang,
			IsLoading:     true,
			BreakingTexts: []string{broadcast.PlaceholderText(opts.Lang)},
			LiveTexts:     []string{broadcast.PlaceholderText(opts.Lang)},
			ShowBreaking:  true,
			ShowLive:      true,
		},
		active:      true,
		subscribers: make(map[uuid.UUID]chan Snapshot),
		pokeChan:    make(chan struct{}, 1),
		stopChan:    make(chan struct{}),
	}
}

// Serve runs the engine until ctx is cancelled or Close is called.
// It satisfies suture.Service.
func (e *Engine) Serve(ctx context.Context) error {
	events := e.connectStream(ctx)

	// Initial fetch so the snapshot populates without waiting a full poll
	// interval.
	e.startFetch(ctx, SourcePoll)

	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.teardown()
			return ctx.Err()
		case <-e.stopChan:
			e.teardown()
			return nil
		case <-ticker.C:
			if reason, skip := e.pollSkipReason(); skip {
				metrics.EnginePollsSkipped.WithLabelValues(reason).Inc()
				continue
			}
			e.startFetch(ctx, SourcePoll)
		case <-e.pokeChan:
			e.startFetch(ctx, SourcePoll)
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			e.handleStreamEvent(ctx, ev)
		}
	}
}

// String names the engine in supervisor logs.
func (e *Engine) String() string {
	return "sync-engine"
}

// Close stops the engine. Safe to call more than once.
func (e *Engine) Close() error {
	e.stopOnce.Do(func() { close(e.stopChan) })
	return nil
}

// connectStream attaches the push channel if one is configured. A failed
// connect is not fatal: the engine simply runs pull-only.
func (e *Engine) connectStream(ctx context.Context) <-chan StreamEvent {
	if e.stream == nil {
		return nil
	}
	if err := e.stream.Connect(ctx); err != nil {
		logging.Warn().
			Str("component", "engine").
			Err(err).
			Msg("push channel unavailable, falling back to polling")
		return nil
	}
	e.mu.Lock()
	e.pushHealthy = true
	e.mu.Unlock()
	return e.stream.Events()
}

// pollSkipReason reports whether the next scheduled poll should be skipped
// and why.
func (e *Engine) pollSkipReason() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return "hidden", true
	}
	if e.pushHealthy {
		return "push_active", true
	}
	return "", false
}

// handleStreamEvent processes one push-channel event.
func (e *Engine) handleStreamEvent(ctx context.Context, ev StreamEvent) {
	switch ev.Kind {
	case StreamPing:
		e.mu.Lock()
		e.pushHealthy = true
		e.mu.Unlock()
	case StreamUpdated:
		e.mu.Lock()
		e.pushHealthy = true
		e.mu.Unlock()
		// A push means something changed server-side; cached settings may
		// be stale now.
		e.orchestrator.InvalidateSettings()

		b := broadcast.Normalize(ev.Payload)
		if len(b.Items.Breaking) == 0 && len(b.Items.Live) == 0 {
			// Thin notification without a usable payload: refresh via pull.
			e.startFetch(ctx, e.streamSource)
			return
		}
		b.OK = true
		e.applyResult(FetchResult{Broadcast: b}, e.streamSource)
	case StreamError:
		logging.Warn().
			Str("component", "engine").
			Err(ev.Err).
			Msg("push channel lost, switching to polling")
		e.mu.Lock()
		e.pushHealthy = false
		e.mu.Unlock()
		// Refresh immediately in case updates were missed while the
		// channel was dying.
		e.startFetch(ctx, SourcePoll)
	}
}

// startFetch launches an orchestrated fetch, superseding any fetch still in
// flight. The superseded fetch is cancelled and its result discarded.
func (e *Engine) startFetch(ctx context.Context, source string) {
	fctx, cancel := context.WithCancel(ctx)

	e.mu.Lock()
	if e.cancelFetch != nil {
		e.cancelFetch()
	}
	e.cancelFetch = cancel
	e.mu.Unlock()

	e.fetchWG.Add(1)
	go func() {
		defer e.fetchWG.Done()
		defer cancel()

		res, err := e.orchestrator.FetchBroadcast(fctx, e.lang)
		if err != nil {
			// Cancelled: superseded or shutting down. Never touch state.
			return
		}
		if fctx.Err() != nil {
			return
		}
		e.applyResult(res, source)
	}()
}

// applyResult folds a fetch result into the snapshot and publishes it if
// the content actually changed.
func (e *Engine) applyResult(res FetchResult, source string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	b := res.Broadcast
	if res.TransportErr != nil &&
		len(b.Items.Breaking) == 0 && len(b.Items.Live) == 0 &&
		(len(e.snapshot.Broadcast.Items.Breaking) > 0 || len(e.snapshot.Broadcast.Items.Live) > 0) {
		// Keep showing what we have rather than blanking the ticker over a
		// transient upstream failure.
		b = e.snapshot.Broadcast
	}

	e.ready = true

	fp := broadcast.Fingerprint(b, e.lang)
	if fp == e.lastFP {
		metrics.EngineDuplicatesDiscarded.Inc()
		e.snapshot.IsLoading = false
		e.snapshot.Error = errString(res.TransportErr)
		return
	}
	e.lastFP = fp

	e.snapshot = e.buildSnapshot(b, source, fp, res.TransportErr)
	metrics.EnginePublishes.Inc()
	logging.Debug().
		Str("component", "engine").
		Str("source", source).
		Str("fingerprint", fp).
		Int("breaking_items", len(b.Items.Breaking)).
		Int("live_items", len(b.Items.Live)).
		Msg("snapshot published")

	for _, ch := range e.subscribers {
		select {
		case ch <- e.snapshot:
		default:
			// Slow subscriber: drop this update, the next one carries the
			// full state anyway.
		}
	}
}

// buildSnapshot renders a Broadcast into a publishable Snapshot.
// Caller holds e.mu.
func (e *Engine) buildSnapshot(b broadcast.Broadcast, source, fp string, transportErr error) Snapshot {
	var breakingEnabled, liveEnabled *bool
	if b.Meta.HasSettings {
		be, le := b.Settings.Breaking.Enabled, b.Settings.Live.Enabled
		breakingEnabled, liveEnabled = &be, &le
	}
	return Snapshot{
		Broadcast:        b,
		Lang:             e.lang,
		Source:           source,
		Fingerprint:      fp,
		LastUpdatedAt:    time.Now().UTC(),
		IsLoading:        false,
		Error:            errString(transportErr),
		BreakingTexts:    broadcast.TextsOrPlaceholder(broadcast.ToTickerTexts(b.Items.Breaking, e.lang), e.lang),
		LiveTexts:        broadcast.TextsOrPlaceholder(broadcast.ToTickerTexts(b.Items.Live, e.lang), e.lang),
		ShowBreaking:     broadcast.ShouldRenderTicker(b.Settings.Breaking),
		ShowLive:         broadcast.ShouldRenderTicker(b.Settings.Live),
		BreakingEnabled:  breakingEnabled,
		LiveEnabled:      liveEnabled,
		BreakingSpeedSec: b.Settings.Breaking.SpeedSec,
		LiveSpeedSec:     b.Settings.Live.SpeedSec,
	}
}

// Current returns the latest snapshot.
func (e *Engine) Current() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot
}

// Ready reports whether at least one fetch has completed. Used by the
// readiness probe.
func (e *Engine) Ready() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// Poke requests an immediate refresh, rate-limited to one per second.
// Extra pokes inside the window are dropped.
func (e *Engine) Poke() {
	if !e.limiter.Allow() {
		return
	}
	select {
	case e.pokeChan <- struct{}{}:
	default:
	}
}

// SetActive tells the engine whether a viewer is watching. While inactive,
// scheduled polls are skipped; becoming active again triggers an immediate
// refresh so stale content is replaced right away.
func (e *Engine) SetActive(visible bool) {
	e.mu.Lock()
	wasActive := e.active
	e.active = visible
	e.mu.Unlock()

	if visible && !wasActive {
		e.Poke()
	}
}

// Subscribe registers a snapshot listener. The returned channel receives
// every published snapshot; slow consumers miss intermediate updates but
// never block the engine.
func (e *Engine) Subscribe() (uuid.UUID, <-chan Snapshot) {
	id := uuid.New()
	ch := make(chan Snapshot, 4)
	e.mu.Lock()
	e.subscribers[id] = ch
	e.mu.Unlock()
	return id, ch
}

// Unsubscribe removes a listener and closes its channel.
func (e *Engine) Unsubscribe(id uuid.UUID) {
	e.mu.Lock()
	ch, ok := e.subscribers[id]
	if ok {
		delete(e.subscribers, id)
	}
	e.mu.Unlock()
	if ok {
		close(ch)
	}
}

// teardown cancels any in-flight fetch and closes the push channel.
func (e *Engine) teardown() {
	e.mu.Lock()
	if e.cancelFetch != nil {
		e.cancelFetch()
	}
	subs := e.subscribers
	e.subscribers = make(map[uuid.UUID]chan Snapshot)
	e.mu.Unlock()

	e.fetchWG.Wait()
	if e.stream != nil {
		e.stream.Close()
	}
	for _, ch := range subs {
		close(ch)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
