// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

/*
Package metrics exposes Prometheus metrics for the sync engine, transports,
circuit breaker, settings cache, and snapshot API.

All metrics are registered with the default registry via promauto at package
load and served from the API server's /metrics endpoint.
*/
package metrics
