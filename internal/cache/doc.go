// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

/*
Package cache provides a thread-safe in-memory TTL cache.

The sync subsystem uses it for the upstream settings response, which changes
rarely compared to the item lists. Caches are explicit values injected into
their owners rather than package-level singletons, so every engine instance
(and every test) gets independent state and lifecycle.
*/
package cache
