// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

/*
Package logging provides centralized zerolog-based logging for Tickersync.

All packages log through this facade so output format, level, and destination
are configured once at startup:

	logging.Init(logging.Config{Level: "info", Format: "json"})
	logging.Info().Str("component", "sync").Msg("engine started")

A slog.Handler bridge is included for libraries that speak log/slog (the
supervisor's sutureslog event hook).
*/
package logging
