// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

package sync

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/newslive/tickersync/internal/broadcast"
	"github.com/newslive/tickersync/internal/cache"
)

var errUpstreamDown = errors.New("upstream down")

// fakePull is a scriptable PullTransport. Unset hooks report failure.
type fakePull struct {
	items     func(ctx context.Context, typ ItemType, lang string) ([]any, error)
	settings  func(ctx context.Context) (map[string]any, error)
	broadcast func(ctx context.Context, lang string) (map[string]any, error)

	itemCalls     atomic.Int64
	settingsCalls atomic.Int64
}

func (f *fakePull) GetItems(ctx context.Context, typ ItemType, lang string) ([]any, error) {
	f.itemCalls.Add(1)
	if f.items == nil {
		return nil, errUpstreamDown
	}
	return f.items(ctx, typ, lang)
}

func (f *fakePull) GetSettings(ctx context.Context) (map[string]any, error) {
	f.settingsCalls.Add(1)
	if f.settings == nil {
		return nil, errUpstreamDown
	}
	return f.settings(ctx)
}

func (f *fakePull) GetBroadcast(ctx context.Context, lang string) (map[string]any, error) {
	if f.broadcast == nil {
		return nil, errUpstreamDown
	}
	return f.broadcast(ctx, lang)
}

func newTestOrchestrator(t *testing.T, transport PullTransport) *Orchestrator {
	t.Helper()
	c := cache.New("settings-test", time.Minute)
	t.Cleanup(c.Close)
	return NewOrchestrator(transport, c)
}

func itemWithText(text string) map[string]any {
	return map[string]any{"text": text}
}

func TestFetchBroadcastCombinedEndpointShortCircuits(t *testing.T) {
	fake := &fakePull{
		broadcast: func(ctx context.Context, lang string) (map[string]any, error) {
			return map[string]any{
				"ok": true,
				"settings": map[string]any{
					"breaking": map[string]any{"enabled": true, "mode": "AUTO", "speedSec": 20.0},
					"live":     map[string]any{"enabled": true, "mode": "AUTO", "speedSec": 25.0},
				},
				"items": map[string]any{
					"breaking": []any{itemWithText("b1")},
					"live":     []any{itemWithText("l1")},
				},
			}, nil
		},
	}
	o := newTestOrchestrator(t, fake)

	res, err := o.FetchBroadcast(context.Background(), "en")
	if err != nil {
		t.Fatalf("FetchBroadcast: %v", err)
	}
	if res.TransportErr != nil {
		t.Fatalf("TransportErr = %v", res.TransportErr)
	}
	if !res.Broadcast.OK {
		t.Error("OK = false for complete combined answer")
	}
	if got := fake.itemCalls.Load(); got != 0 {
		t.Errorf("item endpoint called %d times, want 0", got)
	}
	if got := fake.settingsCalls.Load(); got != 0 {
		t.Errorf("settings endpoint called %d times, want 0", got)
	}
	if len(res.Broadcast.Items.Breaking) != 1 || len(res.Broadcast.Items.Live) != 1 {
		t.Error("combined items not carried through")
	}
	if res.Broadcast.Settings.Breaking.SpeedSec != 20 {
		t.Errorf("breaking speed = %v, want 20", res.Broadcast.Settings.Breaking.SpeedSec)
	}
}

func TestFetchBroadcastAssemblesFromSeparateEndpoints(t *testing.T) {
	fake := &fakePull{
		broadcast: func(ctx context.Context, lang string) (map[string]any, error) {
			// Upstream supports the endpoint but answers empty.
			return map[string]any{}, nil
		},
		settings: func(ctx context.Context) (map[string]any, error) {
			return map[string]any{
				"breaking": map[string]any{"enabled": false, "mode": "FORCE_OFF", "speedSec": 15.0},
			}, nil
		},
		items: func(ctx context.Context, typ ItemType, lang string) ([]any, error) {
			if lang != "en" {
				return nil, nil
			}
			return []any{itemWithText(string(typ) + "-en")}, nil
		},
	}
	o := newTestOrchestrator(t, fake)

	res, err := o.FetchBroadcast(context.Background(), "en")
	if err != nil {
		t.Fatalf("FetchBroadcast: %v", err)
	}
	if res.TransportErr != nil {
		t.Fatalf("TransportErr = %v", res.TransportErr)
	}
	if !res.Broadcast.Meta.HasSettings {
		t.Error("HasSettings = false after explicit settings fetch")
	}
	if res.Broadcast.Settings.Breaking.Enabled {
		t.Error("explicit disabled setting not carried through")
	}
	if len(res.Broadcast.Items.Breaking) != 1 || len(res.Broadcast.Items.Live) != 1 {
		t.Fatalf("items = %d/%d, want 1/1",
			len(res.Broadcast.Items.Breaking), len(res.Broadcast.Items.Live))
	}
}

func TestFetchBroadcastLanguageFallbackChain(t *testing.T) {
	// Items exist only in hi; a gu request must still surface them.
	var langsTried []string
	fake := &fakePull{
		items: func(ctx context.Context, typ ItemType, lang string) ([]any, error) {
			if typ == ItemTypeBreaking {
				langsTried = append(langsTried, lang)
			}
			if lang == "hi" {
				return []any{itemWithText("hi-item")}, nil
			}
			return nil, nil
		},
		settings: func(ctx context.Context) (map[string]any, error) {
			return nil, nil
		},
	}
	o := newTestOrchestrator(t, fake)

	res, err := o.FetchBroadcast(context.Background(), "gu")
	if err != nil {
		t.Fatalf("FetchBroadcast: %v", err)
	}
	if len(res.Broadcast.Items.Breaking) != 1 {
		t.Fatalf("breaking items = %d, want 1", len(res.Broadcast.Items.Breaking))
	}
	if res.Broadcast.Items.Breaking[0].Text != "hi-item" {
		t.Errorf("text = %q, want hi-item", res.Broadcast.Items.Breaking[0].Text)
	}

	want := []string{"gu", "en", "hi"}
	if len(langsTried) != len(want) {
		t.Fatalf("langs tried = %v, want %v", langsTried, want)
	}
	for i, l := range want {
		if langsTried[i] != l {
			t.Errorf("lang[%d] = %q, want %q", i, langsTried[i], l)
		}
	}
}

func TestFetchBroadcastFinalUnfilteredAttempt(t *testing.T) {
	fake := &fakePull{
		items: func(ctx context.Context, typ ItemType, lang string) ([]any, error) {
			if lang == "" {
				return []any{itemWithText("default")}, nil
			}
			return nil, nil
		},
		settings: func(ctx context.Context) (map[string]any, error) { return nil, nil },
	}
	o := newTestOrchestrator(t, fake)

	res, err := o.FetchBroadcast(context.Background(), "en")
	if err != nil {
		t.Fatalf("FetchBroadcast: %v", err)
	}
	if len(res.Broadcast.Items.Breaking) != 1 {
		t.Fatal("unfiltered fallback items not used")
	}
}

func TestFetchBroadcastSettingsCached(t *testing.T) {
	fake := &fakePull{
		settings: func(ctx context.Context) (map[string]any, error) {
			return map[string]any{"breaking": map[string]any{"enabled": true}}, nil
		},
		items: func(ctx context.Context, typ ItemType, lang string) ([]any, error) {
			return []any{itemWithText("x")}, nil
		},
	}
	o := newTestOrchestrator(t, fake)

	for i := 0; i < 3; i++ {
		if _, err := o.FetchBroadcast(context.Background(), "en"); err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
	}
	if got := fake.settingsCalls.Load(); got != 1 {
		t.Errorf("settings endpoint called %d times, want 1 (cached)", got)
	}

	o.InvalidateSettings()
	if _, err := o.FetchBroadcast(context.Background(), "en"); err != nil {
		t.Fatalf("fetch after invalidate: %v", err)
	}
	if got := fake.settingsCalls.Load(); got != 2 {
		t.Errorf("settings endpoint called %d times after invalidate, want 2", got)
	}
}

func TestFetchBroadcastTotalFailureYieldsEmptyWithError(t *testing.T) {
	o := newTestOrchestrator(t, &fakePull{})

	res, err := o.FetchBroadcast(context.Background(), "en")
	if err != nil {
		t.Fatalf("FetchBroadcast returned error for non-cancellation failure: %v", err)
	}
	if res.TransportErr == nil {
		t.Fatal("TransportErr = nil for total upstream failure")
	}
	if res.Broadcast.OK {
		t.Error("OK = true despite transport failure")
	}
	if res.Broadcast.Items.Breaking == nil || res.Broadcast.Items.Live == nil {
		t.Error("item lists must be empty, not nil")
	}
	if res.Broadcast.Settings == (broadcast.Settings{}) {
		t.Error("settings not defaulted on failure")
	}
}

func TestFetchBroadcastPartialFailureKeepsGoodData(t *testing.T) {
	fake := &fakePull{
		settings: func(ctx context.Context) (map[string]any, error) {
			return nil, errUpstreamDown
		},
		items: func(ctx context.Context, typ ItemType, lang string) ([]any, error) {
			return []any{itemWithText("survives")}, nil
		},
	}
	o := newTestOrchestrator(t, fake)

	res, err := o.FetchBroadcast(context.Background(), "en")
	if err != nil {
		t.Fatalf("FetchBroadcast: %v", err)
	}
	if res.TransportErr == nil {
		t.Error("settings failure not recorded")
	}
	if len(res.Broadcast.Items.Breaking) != 1 {
		t.Error("item data lost because an unrelated endpoint failed")
	}
}

func TestFetchBroadcastCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fake := &fakePull{
		broadcast: func(ctx context.Context, lang string) (map[string]any, error) {
			cancel()
			return nil, ctx.Err()
		},
	}
	o := newTestOrchestrator(t, fake)

	_, err := o.FetchBroadcast(ctx, "en")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
