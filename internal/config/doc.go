// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

/*
Package config loads and validates daemon configuration.

Configuration is layered with koanf: struct defaults, then an optional YAML
file (config.yaml, /etc/tickersync/config.yaml, or CONFIG_PATH), then
TICKERSYNC_* environment variables. Precedence is ENV > file > defaults.

Example environment overrides:

	TICKERSYNC_UPSTREAM_URL=https://api.example.com/broadcast
	TICKERSYNC_UPSTREAM_LANG=gu
	TICKERSYNC_PUSH_TRANSPORT=websocket
	TICKERSYNC_POLL_INTERVAL=15s
	TICKERSYNC_SERVER_PORT=8377
*/
package config
