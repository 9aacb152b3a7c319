// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

// Package supervisor builds the suture service tree that keeps the sync
// engine and the HTTP API running and restarting independently.
package supervisor
