// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

/*
orchestrator.go - Multi-endpoint fetch orchestration

A single FetchBroadcast call assembles one canonical Broadcast from the
upstream, trying the cheapest path first:

 1. The combined broadcast endpoint. If it answers with items for both
    tickers the fetch is done in one round trip.
 2. Settings, served from a short-TTL cache so item refreshes do not
    re-fetch them every time.
 3. Per-type item endpoints, walked through a language preference chain
    (requested language first, then en, hi, gu) until a list comes back
    non-empty. A final attempt without a language filter catches upstreams
    that ignore the parameter entirely.

Transport failures never abort the assembly: the orchestrator records the
first failure in FetchResult.TransportErr and keeps going, so one dead
endpoint cannot blank out data another endpoint still serves. Context
cancellation is the exception and is returned immediately, which lets the
engine tell a superseded fetch apart from an upstream outage.
*/

package sync

import (
	"context"

	"github.com/newslive/tickersync/internal/broadcast"
	"github.com/newslive/tickersync/internal/cache"
	"github.com/newslive/tickersync/internal/logging"
)

// fetchLangs is the language preference order tried after the requested
// language.
var fetchLangs = []string{"en", "hi", "gu"}

// settingsCacheKey is shared by all settings lookups; settings are global,
// not per-language.
var settingsCacheKey = cache.GenerateKey("settings", nil)

// FetchResult is the outcome of one orchestrated fetch.
type FetchResult struct {
	Broadcast broadcast.Broadcast
	// TransportErr is the first transport failure seen during assembly, or
	// nil if every request succeeded. When it is set and the item lists are
	// empty, the engine keeps its previous data instead of going blank.
	TransportErr error
}

// cachedSettings is the settings cache entry.
type cachedSettings struct {
	settings    broadcast.Settings
	hasSettings bool
}

// Orchestrator assembles canonical broadcasts from a pull transport.
type Orchestrator struct {
	transport PullTransport
	settings  *cache.Cache
}

// NewOrchestrator creates an orchestrator. The settings cache is required;
// pass a zero-TTL cache to disable settings caching in practice.
func NewOrchestrator(transport PullTransport, settingsCache *cache.Cache) *Orchestrator {
	return &Orchestrator{
		transport: transport,
		settings:  settingsCache,
	}
}

// FetchBroadcast fetches and assembles one Broadcast for the given display
// language. The returned error is non-nil only when ctx was cancelled;
// every other failure mode yields a usable (possibly empty) Broadcast with
// TransportErr set.
func (o *Orchestrator) FetchBroadcast(ctx context.Context, lang string) (FetchResult, error) {
	var res FetchResult

	// Combined endpoint first: one round trip covers everything when the
	// upstream supports it.
	raw, err := o.transport.GetBroadcast(ctx, lang)
	if err != nil {
		if ctx.Err() != nil {
			return FetchResult{}, ctx.Err()
		}
		res.TransportErr = err
	} else {
		b := broadcast.Normalize(raw)
		if len(b.Items.Breaking) > 0 && len(b.Items.Live) > 0 {
			b.OK = true
			res.Broadcast = b
			return res, nil
		}
		// Partial answer: keep what it gave and fill the rest below.
		res.Broadcast = b
	}
	if res.Broadcast.Settings == (broadcast.Settings{}) {
		res.Broadcast.Settings = broadcast.DefaultSettings()
	}

	// If the combined endpoint carried no settings, fetch them separately.
	if !res.Broadcast.Meta.HasSettings {
		settings, hasSettings, err := o.fetchSettings(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return FetchResult{}, ctx.Err()
			}
			if res.TransportErr == nil {
				res.TransportErr = err
			}
		} else {
			res.Broadcast.Settings = settings
			res.Broadcast.Meta.HasSettings = hasSettings
		}
	}

	// Fill whichever item lists are still empty.
	if len(res.Broadcast.Items.Breaking) == 0 {
		items, err := o.fetchItems(ctx, ItemTypeBreaking, lang)
		if err != nil {
			if ctx.Err() != nil {
				return FetchResult{}, ctx.Err()
			}
			if res.TransportErr == nil {
				res.TransportErr = err
			}
		}
		res.Broadcast.Items.Breaking = items
	}
	if len(res.Broadcast.Items.Live) == 0 {
		items, err := o.fetchItems(ctx, ItemTypeLive, lang)
		if err != nil {
			if ctx.Err() != nil {
				return FetchResult{}, ctx.Err()
			}
			if res.TransportErr == nil {
				res.TransportErr = err
			}
		}
		res.Broadcast.Items.Live = items
	}

	if res.Broadcast.Items.Breaking == nil {
		res.Broadcast.Items.Breaking = []broadcast.BroadcastItem{}
	}
	if res.Broadcast.Items.Live == nil {
		res.Broadcast.Items.Live = []broadcast.BroadcastItem{}
	}
	res.Broadcast.OK = res.TransportErr == nil
	return res, nil
}

// fetchSettings returns the current settings, consulting the cache first.
// The boolean reports whether the upstream explicitly carried settings.
func (o *Orchestrator) fetchSettings(ctx context.Context) (broadcast.Settings, bool, error) {
	if cached, ok := o.settings.Get(settingsCacheKey); ok {
		if entry, ok := cached.(cachedSettings); ok {
			return entry.settings, entry.hasSettings, nil
		}
	}

	raw, err := o.transport.GetSettings(ctx)
	if err != nil {
		return broadcast.DefaultSettings(), false, err
	}

	// Run the settings object through the normalizer so every shape the
	// combined endpoint tolerates works here too.
	b := broadcast.Normalize(map[string]any{"settings": raw})
	entry := cachedSettings{settings: b.Settings, hasSettings: b.Meta.HasSettings}
	o.settings.Set(settingsCacheKey, entry)
	return entry.settings, entry.hasSettings, nil
}

// InvalidateSettings drops the cached settings so the next fetch re-reads
// them from the upstream. Called by the engine when a push event arrives,
// since a push usually means something changed server-side.
func (o *Orchestrator) InvalidateSettings() {
	o.settings.Delete(settingsCacheKey)
}

// fetchItems walks the language chain for one item type and returns the
// first non-empty list. A transport error on one language does not stop the
// walk; the first error is returned only if no language produced items.
func (o *Orchestrator) fetchItems(ctx context.Context, typ ItemType, lang string) ([]broadcast.BroadcastItem, error) {
	var firstErr error

	for _, l := range langChain(lang) {
		raw, err := o.transport.GetItems(ctx, typ, l)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		items := broadcast.NormalizeItems(raw)
		if len(items) > 0 {
			if l != lang && lang != "" {
				logging.Debug().
					Str("component", "orchestrator").
					Str("type", string(typ)).
					Str("requested", lang).
					Str("served", l).
					Msg("item list filled from fallback language")
			}
			return items, nil
		}
	}

	if firstErr != nil {
		return []broadcast.BroadcastItem{}, firstErr
	}
	return []broadcast.BroadcastItem{}, nil
}

// langChain returns the fetch order for lang: the requested language, the
// standing preference chain minus duplicates, and a final unfiltered
// attempt (empty string).
func langChain(lang string) []string {
	chain := make([]string, 0, len(fetchLangs)+2)
	if lang != "" {
		chain = append(chain, lang)
	}
	for _, l := range fetchLangs {
		if l != lang {
			chain = append(chain, l)
		}
	}
	return append(chain, "")
}
