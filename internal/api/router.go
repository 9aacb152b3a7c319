// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/newslive/tickersync/internal/config"
	"github.com/newslive/tickersync/internal/metrics"
)

// NewRouter assembles the HTTP surface.
func NewRouter(cfg config.ServerConfig, engine BroadcastEngine) http.Handler {
	h := NewHandlers(engine)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// Health probes stay outside the rate limiter so aggressive monitoring
	// cannot starve real clients, and vice versa.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimitReqs, cfg.RateLimitWindow))
		r.Use(noStore)
		r.Use(requestMetrics)

		r.Get("/ticker", h.Ticker)
		r.Get("/broadcast", h.Broadcast)
		r.Post("/refresh", h.Refresh)
		r.Post("/visibility", h.Visibility)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// noStore marks snapshot responses uncacheable. The snapshot changes out of
// band, so any intermediary caching would serve stale tickers.
func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// requestMetrics records per-route request counts and latency.
func requestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		metrics.APIRequests.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
		metrics.APIRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
