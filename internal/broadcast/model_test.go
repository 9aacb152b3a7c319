// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

package broadcast

import (
	"math"
	"testing"
)

func TestClampSpeedSec(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		fallback float64
		want     float64
	}{
		{name: "in range", input: 42, fallback: 18, want: 42},
		{name: "below minimum", input: 1, fallback: 18, want: MinSpeedSec},
		{name: "above maximum", input: 10000, fallback: 18, want: MaxSpeedSec},
		{name: "at minimum", input: 5, fallback: 18, want: 5},
		{name: "at maximum", input: 300, fallback: 18, want: 300},
		{name: "NaN falls back", input: math.NaN(), fallback: 18, want: 18},
		{name: "positive infinity falls back", input: math.Inf(1), fallback: 24, want: 24},
		{name: "negative infinity falls back", input: math.Inf(-1), fallback: 24, want: 24},
		{name: "non-finite fallback degrades to minimum", input: math.NaN(), fallback: math.NaN(), want: MinSpeedSec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampSpeedSec(tt.input, tt.fallback); got != tt.want {
				t.Errorf("ClampSpeedSec(%v, %v) = %v, want %v", tt.input, tt.fallback, got, tt.want)
			}
		})
	}
}

func TestClampSpeedSecSite(t *testing.T) {
	tests := []struct {
		name  string
		input float64
		want  float64
	}{
		{name: "in range", input: 60, want: 60},
		{name: "below site minimum", input: 5, want: MinSiteSpeedSec},
		{name: "above site maximum", input: 200, want: MaxSiteSpeedSec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampSpeedSecSite(tt.input, 30); got != tt.want {
				t.Errorf("ClampSpeedSecSite(%v, 30) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// Clamping must be monotonic: n1 < n2 implies clamp(n1) <= clamp(n2).
func TestClampSpeedSecMonotonic(t *testing.T) {
	inputs := []float64{-100, 0, 4.9, 5, 17, 18, 120, 299, 300, 301, 1e9}
	for i := 1; i < len(inputs); i++ {
		lo := ClampSpeedSec(inputs[i-1], 18)
		hi := ClampSpeedSec(inputs[i], 18)
		if lo > hi {
			t.Errorf("clamp not monotonic: clamp(%v)=%v > clamp(%v)=%v",
				inputs[i-1], lo, inputs[i], hi)
		}
	}
}

func TestNormalizeMode(t *testing.T) {
	tests := []struct {
		input string
		want  Mode
	}{
		{input: "FORCE_ON", want: ModeForceOn},
		{input: "force_on", want: ModeForceOn},
		{input: "  Force_Off  ", want: ModeForceOff},
		{input: "AUTO", want: ModeAuto},
		{input: "auto", want: ModeAuto},
		{input: "", want: ModeAuto},
		{input: "garbage", want: ModeAuto},
		{input: "FORCE ON", want: ModeAuto},
	}

	for _, tt := range tests {
		if got := NormalizeMode(tt.input); got != tt.want {
			t.Errorf("NormalizeMode(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestShouldRenderTicker(t *testing.T) {
	tests := []struct {
		name     string
		settings TickerSettings
		want     bool
	}{
		{name: "force_on overrides disabled", settings: TickerSettings{Enabled: false, Mode: ModeForceOn, SpeedSec: 10}, want: true},
		{name: "force_off overrides enabled", settings: TickerSettings{Enabled: true, Mode: ModeForceOff, SpeedSec: 10}, want: false},
		{name: "auto defers to enabled true", settings: TickerSettings{Enabled: true, Mode: ModeAuto, SpeedSec: 10}, want: true},
		{name: "auto defers to enabled false", settings: TickerSettings{Enabled: false, Mode: ModeAuto, SpeedSec: 10}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldRenderTicker(tt.settings); got != tt.want {
				t.Errorf("ShouldRenderTicker(%+v) = %v, want %v", tt.settings, got, tt.want)
			}
		})
	}
}

func TestEmptyBroadcast(t *testing.T) {
	b := Empty()
	if b.OK {
		t.Error("Empty() should not be marked fresh")
	}
	if b.Meta.HasSettings {
		t.Error("Empty() should not claim explicit settings")
	}
	if !b.Settings.Breaking.Enabled || b.Settings.Breaking.SpeedSec != DefaultBreakingSpeedSec {
		t.Errorf("unexpected breaking defaults: %+v", b.Settings.Breaking)
	}
	if !b.Settings.Live.Enabled || b.Settings.Live.SpeedSec != DefaultLiveSpeedSec {
		t.Errorf("unexpected live defaults: %+v", b.Settings.Live)
	}
	if b.Items.Breaking == nil || b.Items.Live == nil {
		t.Error("Empty() item lists should be non-nil")
	}
}
