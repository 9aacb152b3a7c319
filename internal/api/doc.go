// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

// Package api serves the reconciled broadcast snapshot over HTTP using the
// chi router. The surface is read-mostly: ticker and broadcast views,
// health probes and prometheus metrics, plus two small control endpoints
// that let a frontend poke the engine on focus and report visibility.
package api
