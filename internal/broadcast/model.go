// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

package broadcast

import (
	"math"
	"strings"
)

// Mode controls how a ticker's enabled flag is interpreted.
type Mode string

const (
	ModeAuto     Mode = "AUTO"
	ModeForceOn  Mode = "FORCE_ON"
	ModeForceOff Mode = "FORCE_OFF"
)

// Default scroll speeds, in seconds per full scroll.
const (
	DefaultBreakingSpeedSec = 18.0
	DefaultLiveSpeedSec     = 24.0
)

// Clamp ranges for scroll speed. The wider range applies to broadcast
// payloads, the narrower one to the site-settings admin variant.
const (
	MinSpeedSec     = 5.0
	MaxSpeedSec     = 300.0
	MinSiteSpeedSec = 10.0
	MaxSiteSpeedSec = 120.0
)

// TickerSettings holds the per-ticker configuration carried by the backend.
type TickerSettings struct {
	Enabled  bool    `json:"enabled"`
	Mode     Mode    `json:"mode"`
	SpeedSec float64 `json:"speedSec"`
}

// Settings groups the two ticker kinds.
type Settings struct {
	Breaking TickerSettings `json:"breaking"`
	Live     TickerSettings `json:"live"`
}

// Meta carries payload provenance flags.
//
// HasSettings is true only when the raw payload explicitly carried settings
// fields. Downstream rendering uses it to distinguish "backend explicitly
// disabled this ticker" from "backend has no opinion", so it must propagate
// honestly rather than defaulting to true.
type Meta struct {
	HasSettings bool `json:"hasSettings"`
}

// BroadcastItem is one ticker entry in canonical form. All fields are
// optional; an item with no resolvable text for a language is simply dropped
// from display in that language.
type BroadcastItem struct {
	ID         string `json:"id,omitempty"`
	Text       string `json:"text,omitempty"`
	Title      string `json:"title,omitempty"`
	Headline   string `json:"headline,omitempty"`
	SourceLang string `json:"sourceLang,omitempty"`
	// Texts maps lowercase language codes to display strings, merged from
	// whichever translation-map key the raw payload used.
	Texts map[string]string `json:"texts,omitempty"`
	// Type partitions flat item arrays into breaking/live.
	Type        string `json:"type,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

// Items groups the two item lists.
type Items struct {
	Breaking []BroadcastItem `json:"breaking"`
	Live     []BroadcastItem `json:"live"`
}

// Broadcast is the canonical aggregate all downstream code consumes.
// Immutable once constructed; the sync engine publishes new instances
// instead of mutating the current one.
type Broadcast struct {
	OK       bool     `json:"ok"`
	Meta     Meta     `json:"meta"`
	Settings Settings `json:"settings"`
	Items    Items    `json:"items"`
}

// DefaultSettings returns the settings used when a payload carries none.
func DefaultSettings() Settings {
	return Settings{
		Breaking: TickerSettings{Enabled: true, Mode: ModeAuto, SpeedSec: DefaultBreakingSpeedSec},
		Live:     TickerSettings{Enabled: true, Mode: ModeAuto, SpeedSec: DefaultLiveSpeedSec},
	}
}

// Empty returns a placeholder Broadcast with defaults and no items.
// OK is false so consumers know it is not fresh backend data.
func Empty() Broadcast {
	return Broadcast{
		OK:       false,
		Settings: DefaultSettings(),
		Items:    Items{Breaking: []BroadcastItem{}, Live: []BroadcastItem{}},
	}
}

// ClampSpeedSec clamps n to [MinSpeedSec, MaxSpeedSec]. Non-finite input
// falls back to fallback (itself clamped, so the result is always in range).
func ClampSpeedSec(n, fallback float64) float64 {
	return clampSpeed(n, fallback, MinSpeedSec, MaxSpeedSec)
}

// ClampSpeedSecSite clamps n to the site-settings range [MinSiteSpeedSec,
// MaxSiteSpeedSec].
func ClampSpeedSecSite(n, fallback float64) float64 {
	return clampSpeed(n, fallback, MinSiteSpeedSec, MaxSiteSpeedSec)
}

func clampSpeed(n, fallback, min, max float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		n = fallback
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		n = min
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// NormalizeMode folds arbitrary mode strings into the closed Mode set.
// Anything other than FORCE_ON/FORCE_OFF normalizes to AUTO.
func NormalizeMode(s string) Mode {
	switch Mode(strings.ToUpper(strings.TrimSpace(s))) {
	case ModeForceOn:
		return ModeForceOn
	case ModeForceOff:
		return ModeForceOff
	default:
		return ModeAuto
	}
}

// ShouldRenderTicker decides whether a ticker renders at all. FORCE_ON and
// FORCE_OFF override the enabled flag; AUTO defers to it.
func ShouldRenderTicker(s TickerSettings) bool {
	switch s.Mode {
	case ModeForceOn:
		return true
	case ModeForceOff:
		return false
	default:
		return s.Enabled
	}
}
