// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the sync subsystem:
// - pull transport request outcomes and latency
// - push channel lifecycle and event counts
// - engine publishes vs. fingerprint-suppressed updates
// - circuit breaker state
// - settings cache efficiency
// - snapshot API traffic

var (
	// Pull transport

	FetchRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickersync_fetch_requests_total",
			Help: "Total pull-transport requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"}, // outcome: success, empty, error
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tickersync_fetch_duration_seconds",
			Help:    "Duration of pull-transport requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Push channel

	StreamConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tickersync_stream_connected",
			Help: "Whether a push stream is currently open (1) or not (0)",
		},
	)

	StreamEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickersync_stream_events_total",
			Help: "Total push-stream events by kind",
		},
		[]string{"kind"}, // updated, ping, error
	)

	// Sync engine

	EnginePublishes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickersync_engine_publishes_total",
			Help: "Total snapshot publishes (fingerprint changed)",
		},
	)

	EngineDuplicatesDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tickersync_engine_duplicates_discarded_total",
			Help: "Candidate updates discarded because the fingerprint matched the published state",
		},
	)

	EnginePollsSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickersync_engine_polls_skipped_total",
			Help: "Poll ticks skipped, by reason",
		},
		[]string{"reason"}, // hidden, push_active
	)

	// Circuit breaker

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tickersync_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickersync_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickersync_circuit_breaker_requests_total",
			Help: "Requests through the circuit breaker by result",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	// Settings cache

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickersync_cache_hits_total",
			Help: "Cache hits by cache name",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickersync_cache_misses_total",
			Help: "Cache misses by cache name",
		},
		[]string{"cache"},
	)

	// Snapshot API

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickersync_api_requests_total",
			Help: "Snapshot API requests by route and status class",
		},
		[]string{"route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tickersync_api_request_duration_seconds",
			Help:    "Snapshot API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)
