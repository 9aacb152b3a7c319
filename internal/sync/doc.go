// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

// Package sync keeps the broadcast snapshot in step with the upstream.
//
// It contains the pull transport (HTTP client with optional circuit
// breaker), the push transports (SSE and WebSocket stream clients), the
// fetch orchestrator that assembles one canonical broadcast per refresh,
// and the engine that schedules refreshes, deduplicates results and fans
// snapshots out to subscribers.
package sync
