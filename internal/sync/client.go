// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

/*
client.go - Pull Transport

HTTP client for the upstream broadcast service's pull endpoints:

	GET {base}/items?type={breaking|live}&lang={en|hi|gu}
	GET {base}/settings
	GET {base}/broadcast?lang=...   (combined convenience contract)

Every request disables HTTP-level caching; staleness is managed entirely by
the sync engine. Responses are decoded loosely (the normalizer is the only
shape authority) and tolerate the historical envelope variants: {items:[]},
bare arrays, {data:[]}, and {result:[]}.

Transport failures surface as errors so the circuit breaker and the
orchestrator's swallow policy both see them; cancellation is passed through
untouched so callers can tell "aborted" from "no data".
*/

package sync

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/newslive/tickersync/internal/config"
	"github.com/newslive/tickersync/internal/logging"
	"github.com/newslive/tickersync/internal/metrics"
)

// ItemType identifies one of the two ticker kinds.
type ItemType string

const (
	ItemTypeBreaking ItemType = "breaking"
	ItemTypeLive     ItemType = "live"
)

// maxResponseSize caps response bodies to keep a misbehaving upstream from
// forcing unbounded allocation.
const maxResponseSize = 4 << 20 // 4MB

// PullTransport is the pull-channel contract the orchestrator consumes.
// Implementations return raw decoded JSON; normalization happens downstream.
type PullTransport interface {
	// GetItems fetches raw items for one ticker kind. lang may be empty for
	// the backend-default last-resort fetch.
	GetItems(ctx context.Context, typ ItemType, lang string) ([]any, error)
	// GetSettings fetches the raw settings object, nil when absent.
	GetSettings(ctx context.Context) (map[string]any, error)
	// GetBroadcast fetches the combined payload, nil when unavailable.
	GetBroadcast(ctx context.Context, lang string) (map[string]any, error)
}

// BroadcastClient is the production PullTransport over net/http.
type BroadcastClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *breaker
}

// ClientOption configures a BroadcastClient.
type ClientOption func(*BroadcastClient)

// WithBreaker protects the client's requests with a circuit breaker.
func WithBreaker(b *breaker) ClientOption {
	return func(c *BroadcastClient) { c.breaker = b }
}

// WithHTTPClient swaps the underlying http.Client (tests).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *BroadcastClient) { c.httpClient = hc }
}

// NewPullTransport builds the production pull transport from configuration,
// including the circuit breaker when enabled.
func NewPullTransport(upstream config.UpstreamConfig, breakerCfg config.BreakerConfig) PullTransport {
	var opts []ClientOption
	if b := newBreaker("broadcast-pull", breakerCfg); b != nil {
		opts = append(opts, WithBreaker(b))
	}
	return NewBroadcastClient(upstream.URL, upstream.Timeout, opts...)
}

// NewBroadcastClient creates a pull-transport client for the given upstream
// base URL.
func NewBroadcastClient(baseURL string, timeout time.Duration, opts ...ClientOption) *BroadcastClient {
	c := &BroadcastClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetItems implements PullTransport.
func (c *BroadcastClient) GetItems(ctx context.Context, typ ItemType, lang string) ([]any, error) {
	query := url.Values{}
	query.Set("type", string(typ))
	if lang != "" {
		query.Set("lang", lang)
	}

	body, err := c.get(ctx, "items", "/items", query)
	if err != nil {
		return nil, err
	}
	return extractItemsEnvelope(body), nil
}

// GetSettings implements PullTransport. The settings endpoint serves either
// {settings:{...}} or the bare settings object; both come back as the bare
// object here.
func (c *BroadcastClient) GetSettings(ctx context.Context) (map[string]any, error) {
	body, err := c.get(ctx, "settings", "/settings", nil)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if jsonErr := json.Unmarshal(body, &raw); jsonErr != nil {
		logging.Debug().Err(jsonErr).Msg("settings response unparsable")
		return nil, nil
	}
	if nested, ok := raw["settings"].(map[string]any); ok {
		return nested, nil
	}
	return raw, nil
}

// GetBroadcast implements PullTransport.
func (c *BroadcastClient) GetBroadcast(ctx context.Context, lang string) (map[string]any, error) {
	query := url.Values{}
	if lang != "" {
		query.Set("lang", lang)
	}

	body, err := c.get(ctx, "broadcast", "/broadcast", query)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if jsonErr := json.Unmarshal(body, &raw); jsonErr != nil {
		logging.Debug().Err(jsonErr).Msg("broadcast response unparsable")
		return nil, nil
	}
	return raw, nil
}

// get performs one GET with caching disabled, routed through the breaker
// when one is configured. Returns the response body or an error; ctx errors
// are returned as-is so cancellation stays distinguishable.
func (c *BroadcastClient) get(ctx context.Context, endpoint, path string, query url.Values) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.FetchDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	do := func() ([]byte, error) { return c.doGet(ctx, path, query) }

	var body []byte
	var err error
	if c.breaker != nil {
		body, err = c.breaker.execute(do)
	} else {
		body, err = do()
	}

	switch {
	case err == nil:
		metrics.FetchRequests.WithLabelValues(endpoint, "success").Inc()
	case ctx.Err() != nil:
		// Superseded or shutting down; not a transport failure.
		return nil, ctx.Err()
	default:
		metrics.FetchRequests.WithLabelValues(endpoint, "error").Inc()
	}
	return body, err
}

func (c *BroadcastClient) doGet(ctx context.Context, path string, query url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			logging.Debug().Err(cerr).Msg("failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		// Drain a bounded amount so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil, fmt.Errorf("request %s: unexpected status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", path, err)
	}
	return body, nil
}

// extractItemsEnvelope pulls the raw item list out of whichever envelope the
// upstream used. Unparsable bodies yield an empty list, never an error.
func extractItemsEnvelope(body []byte) []any {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		logging.Debug().Err(err).Msg("items response unparsable")
		return []any{}
	}

	if flat, ok := raw.([]any); ok {
		return flat
	}
	if root, ok := raw.(map[string]any); ok {
		for _, key := range []string{"items", "data", "result"} {
			if list, ok := root[key].([]any); ok {
				return list
			}
		}
	}
	return []any{}
}
