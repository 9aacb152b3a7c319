// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/newslive/tickersync/internal/broadcast"
	"github.com/newslive/tickersync/internal/sync"
)

// BroadcastEngine is the slice of the sync engine the API consumes.
type BroadcastEngine interface {
	Current() sync.Snapshot
	Ready() bool
	Poke()
	SetActive(visible bool)
}

// Handlers holds the endpoint implementations.
type Handlers struct {
	engine BroadcastEngine
}

// NewHandlers creates the endpoint set around an engine.
func NewHandlers(engine BroadcastEngine) *Handlers {
	return &Handlers{engine: engine}
}

// TickerSection is one ticker's render view. Enabled is the backend's
// explicit flag and is omitted when the upstream payload carried no
// settings; Show is the final render decision either way.
type TickerSection struct {
	Show     bool     `json:"show"`
	Enabled  *bool    `json:"enabled,omitempty"`
	Mode     string   `json:"mode"`
	SpeedSec float64  `json:"speedSec"`
	Texts    []string `json:"texts"`
}

// TickerView is the rendered response of GET /api/v1/ticker.
type TickerView struct {
	Lang          string        `json:"lang"`
	Breaking      TickerSection `json:"breaking"`
	Live          TickerSection `json:"live"`
	Source        string        `json:"source"`
	IsLoading     bool          `json:"isLoading"`
	LastUpdatedAt time.Time     `json:"lastUpdatedAt"`
}

// Ticker serves the rendered ticker view. An optional lang query parameter
// re-resolves the snapshot's items for another display language; the
// resolver is pure so this needs no round trip to the upstream.
func (h *Handlers) Ticker(w http.ResponseWriter, r *http.Request) {
	snap := h.engine.Current()

	lang := r.URL.Query().Get("lang")
	breakingTexts := snap.BreakingTexts
	liveTexts := snap.LiveTexts
	if lang != "" && lang != snap.Lang {
		b := snap.Broadcast
		breakingTexts = broadcast.TextsOrPlaceholder(broadcast.ToTickerTexts(b.Items.Breaking, lang), lang)
		liveTexts = broadcast.TextsOrPlaceholder(broadcast.ToTickerTexts(b.Items.Live, lang), lang)
	} else {
		lang = snap.Lang
	}

	writeJSON(w, http.StatusOK, TickerView{
		Lang: lang,
		Breaking: TickerSection{
			Show:     snap.ShowBreaking,
			Enabled:  snap.BreakingEnabled,
			Mode:     string(snap.Broadcast.Settings.Breaking.Mode),
			SpeedSec: snap.BreakingSpeedSec,
			Texts:    breakingTexts,
		},
		Live: TickerSection{
			Show:     snap.ShowLive,
			Enabled:  snap.LiveEnabled,
			Mode:     string(snap.Broadcast.Settings.Live.Mode),
			SpeedSec: snap.LiveSpeedSec,
			Texts:    liveTexts,
		},
		Source:        snap.Source,
		IsLoading:     snap.IsLoading,
		LastUpdatedAt: snap.LastUpdatedAt,
	})
}

// Broadcast serves the full canonical snapshot with sync status.
func (h *Handlers) Broadcast(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Current())
}

// Refresh asks the engine for an immediate re-fetch. The engine rate-limits
// this internally, so a misbehaving frontend cannot hammer the upstream.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	h.engine.Poke()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh requested"})
}

type visibilityRequest struct {
	Active *bool `json:"active"`
}

// Visibility reports whether a viewer is watching the ticker. While no one
// is, the engine stops polling the upstream.
func (h *Handlers) Visibility(w http.ResponseWriter, r *http.Request) {
	var req visibilityRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req); err != nil || req.Active == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "body must be {\"active\": true|false}")
		return
	}
	h.engine.SetActive(*req.Active)
	writeJSON(w, http.StatusOK, map[string]bool{"active": *req.Active})
}

// HealthLive is the liveness probe.
func (h *Handlers) HealthLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HealthReady reports ready once the engine has completed a fetch, so load
// balancers do not route to an instance still showing the loading
// placeholder.
func (h *Handlers) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Ready() {
		writeError(w, http.StatusServiceUnavailable, "not_ready", "sync engine has not completed a fetch yet")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
