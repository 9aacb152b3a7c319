// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(EnginePublishes)
	EnginePublishes.Inc()
	if got := testutil.ToFloat64(EnginePublishes); got != before+1 {
		t.Errorf("EnginePublishes = %v, want %v", got, before+1)
	}

	FetchRequests.WithLabelValues("items", "success").Inc()
	if got := testutil.ToFloat64(FetchRequests.WithLabelValues("items", "success")); got < 1 {
		t.Errorf("FetchRequests(items,success) = %v, want >= 1", got)
	}
}

func TestGaugeSet(t *testing.T) {
	StreamConnected.Set(1)
	if got := testutil.ToFloat64(StreamConnected); got != 1 {
		t.Errorf("StreamConnected = %v, want 1", got)
	}
	StreamConnected.Set(0)
	if got := testutil.ToFloat64(StreamConnected); got != 0 {
		t.Errorf("StreamConnected = %v, want 0", got)
	}
}
