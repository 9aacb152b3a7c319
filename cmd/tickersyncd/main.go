// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

// Package main is the entry point for the tickersync daemon.
//
// The daemon keeps a canonical breaking/live news ticker snapshot in sync
// with an upstream broadcast service and serves it over HTTP. Startup
// order:
//
//  1. Configuration: koanf v2 layering defaults, config.yaml and
//     TICKERSYNC_* environment variables.
//  2. Logging: zerolog, JSON by default.
//  3. Sync plumbing: pull transport (with circuit breaker), settings
//     cache, orchestrator, optional push stream (SSE or WebSocket).
//  4. Supervisor tree: sync engine in the sync layer, HTTP API in the api
//     layer, restarted independently on failure.
//
// Shutdown is graceful on SIGINT and SIGTERM: the supervisor drains both
// layers, the engine cancels any in-flight fetch, and the HTTP server
// finishes in-flight requests.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newslive/tickersync/internal/api"
	"github.com/newslive/tickersync/internal/cache"
	"github.com/newslive/tickersync/internal/config"
	"github.com/newslive/tickersync/internal/logging"
	"github.com/newslive/tickersync/internal/supervisor"
	"github.com/newslive/tickersync/internal/sync"
)

func main() {
	configPath := flag.String("config", "", "path to config file (overrides default search)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "tickersyncd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	logging.Info().
		Str("component", "main").
		Str("upstream", cfg.Upstream.URL).
		Str("lang", cfg.Upstream.Lang).
		Bool("push_enabled", cfg.Push.Enabled).
		Str("push_transport", cfg.Push.Transport).
		Dur("poll_interval", cfg.Poll.Interval).
		Msg("starting tickersync")

	transport := sync.NewPullTransport(cfg.Upstream, cfg.Breaker)
	settingsCache := cache.New("settings", cfg.Cache.SettingsTTL)
	defer settingsCache.Close()
	orchestrator := sync.NewOrchestrator(transport, settingsCache)

	stream, streamSource := buildStream(cfg)
	engine := sync.NewEngine(orchestrator, stream, sync.EngineOptions{
		Lang:         cfg.Upstream.Lang,
		PollInterval: cfg.Poll.Interval,
		StreamSource: streamSource,
	})

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddSyncService(engine)
	tree.AddAPIService(api.NewServer(cfg.Server, engine))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = tree.Serve(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("supervisor: %w", err)
	}
	logging.Info().Str("component", "main").Msg("shutdown complete")
	return nil
}

// buildStream constructs the configured push transport, or nil for
// pull-only operation.
func buildStream(cfg *config.Config) (sync.StreamClient, string) {
	if !cfg.Push.Enabled {
		return nil, ""
	}
	streamURL := sync.StreamURL(cfg.Upstream.URL, cfg.Push.Path, cfg.Upstream.Lang)
	timeout := cfg.Upstream.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	switch cfg.Push.Transport {
	case "websocket":
		return sync.NewWSClient(streamURL, timeout), sync.SourceWS
	default:
		return sync.NewSSEClient(streamURL, timeout), sync.SourceSSE
	}
}
