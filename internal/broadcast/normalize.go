// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

/*
normalize.go - Payload Normalizer

Converts raw upstream payloads into the canonical Broadcast. The upstream
service has served at least three settings layouts and two item layouts over
its lifetime; each is captured here as an explicit shape adapter so the
fallback chain is an inspectable, independently testable list instead of a
pile of optional chaining.

Normalize never fails: malformed or missing fields fall back to defaults.
*/

package broadcast

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// settingsShape extracts the raw breaking/live settings sub-objects from one
// historical payload layout. Presence flags are reported separately from
// values because a syntactically present key counts as "admin configured
// something" even when its value is unusable.
type settingsShape struct {
	name    string
	extract func(root map[string]any) (breaking, live any, breakingPresent, livePresent bool)
}

var settingsShapes = []settingsShape{
	{
		name: "settings",
		extract: func(root map[string]any) (any, any, bool, bool) {
			s, ok := root["settings"].(map[string]any)
			if !ok {
				return nil, nil, false, false
			}
			b, bp := s["breaking"]
			l, lp := s["live"]
			return b, l, bp, lp
		},
	},
	{
		name: "settings.tickers",
		extract: func(root map[string]any) (any, any, bool, bool) {
			s, ok := root["settings"].(map[string]any)
			if !ok {
				return nil, nil, false, false
			}
			t, ok := s["tickers"].(map[string]any)
			if !ok {
				return nil, nil, false, false
			}
			b, bp := t["breaking"]
			l, lp := t["live"]
			return b, l, bp, lp
		},
	},
	{
		name: "settings.suffixed",
		extract: func(root map[string]any) (any, any, bool, bool) {
			s, ok := root["settings"].(map[string]any)
			if !ok {
				return nil, nil, false, false
			}
			b, bp := s["breakingTicker"]
			l, lp := s["liveTicker"]
			return b, l, bp, lp
		},
	},
}

// itemsShape extracts pre-split breaking/live raw item lists from one layout.
type itemsShape struct {
	name    string
	extract func(root map[string]any) (breaking, live []any, ok bool)
}

var itemsShapes = []itemsShape{
	{
		name: "items.presplit",
		extract: func(root map[string]any) ([]any, []any, bool) {
			m, ok := root["items"].(map[string]any)
			if !ok {
				return nil, nil, false
			}
			b, bOK := m["breaking"].([]any)
			l, lOK := m["live"].([]any)
			if !bOK && !lOK {
				return nil, nil, false
			}
			return b, l, true
		},
	},
	{
		name: "root.presplit",
		extract: func(root map[string]any) ([]any, []any, bool) {
			b, bOK := root["breaking"].([]any)
			l, lOK := root["live"].([]any)
			if !bOK && !lOK {
				return nil, nil, false
			}
			return b, l, true
		},
	},
}

// NormalizeJSON decodes data and normalizes it. Unparsable input yields the
// empty placeholder Broadcast.
func NormalizeJSON(data []byte) Broadcast {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Empty()
	}
	return Normalize(raw)
}

// Normalize converts an arbitrary decoded payload into a canonical
// Broadcast. It never panics; anything it cannot interpret falls back to
// defaults (enabled AUTO tickers at the default speeds, empty item lists).
func Normalize(raw any) Broadcast {
	root, ok := raw.(map[string]any)
	if !ok {
		return Empty()
	}

	b := Empty()
	b.OK = true
	if v, ok := root["ok"].(bool); ok {
		b.OK = v
	}

	defaults := DefaultSettings()
	var rawBreaking, rawLive any
	var breakingPresent, livePresent bool
	for _, shape := range settingsShapes {
		rb, rl, bp, lp := shape.extract(root)
		if bp || lp {
			rawBreaking, rawLive = rb, rl
			breakingPresent, livePresent = bp, lp
			break
		}
	}

	b.Settings.Breaking = normalizeTickerSettings(rawBreaking, defaults.Breaking)
	b.Settings.Live = normalizeTickerSettings(rawLive, defaults.Live)
	if explicit, ok := explicitHasSettings(root); ok {
		b.Meta.HasSettings = explicit
	} else {
		b.Meta.HasSettings = settingsSignal(rawBreaking, breakingPresent) ||
			settingsSignal(rawLive, livePresent)
	}

	rawBreakingItems, rawLiveItems := extractItems(root)
	b.Items.Breaking = NormalizeItems(rawBreakingItems)
	b.Items.Live = NormalizeItems(rawLiveItems)

	return b
}

// explicitHasSettings reports whether the payload itself marked settings
// presence, either at meta.hasSettings or a top-level hasSettings. An
// explicit mark wins in either direction; inference from sub-object keys
// only applies when the payload said nothing.
func explicitHasSettings(root map[string]any) (value, present bool) {
	if meta, ok := root["meta"].(map[string]any); ok {
		if v, ok := meta["hasSettings"].(bool); ok {
			return v, true
		}
	}
	if v, ok := root["hasSettings"].(bool); ok {
		return v, true
	}
	return false, false
}

// settingsSignal reports whether a settings sub-object counts as explicit
// configuration. A present but non-object value still counts: the admin
// configured something, even badly, and the UI must treat that as an
// explicit opinion rather than silence.
func settingsSignal(v any, present bool) bool {
	if !present {
		return false
	}
	m, ok := v.(map[string]any)
	if !ok {
		return true
	}
	for _, key := range []string{"enabled", "mode", "speedSec", "speedSeconds"} {
		if _, ok := m[key]; ok {
			return true
		}
	}
	return false
}

// normalizeTickerSettings folds one raw settings sub-object into canonical
// form, clamping speed and defaulting anything unusable.
func normalizeTickerSettings(v any, def TickerSettings) TickerSettings {
	out := def
	out.SpeedSec = ClampSpeedSec(def.SpeedSec, def.SpeedSec)

	m, ok := v.(map[string]any)
	if !ok {
		return out
	}
	if enabled, ok := m["enabled"].(bool); ok {
		out.Enabled = enabled
	}
	if mode, ok := m["mode"].(string); ok {
		out.Mode = NormalizeMode(mode)
	}
	if speed, ok := numericField(m, "speedSec", "speedSeconds"); ok {
		out.SpeedSec = ClampSpeedSec(speed, def.SpeedSec)
	}
	return out
}

// numericField returns the first of the named fields that holds a number.
func numericField(m map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch n := m[key].(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// extractItems applies the pre-split shapes in priority order, then falls
// back to partitioning a flat typed array only when both pre-split lists
// came back empty.
func extractItems(root map[string]any) (breaking, live []any) {
	for _, shape := range itemsShapes {
		if b, l, ok := shape.extract(root); ok {
			breaking, live = b, l
			break
		}
	}
	if len(breaking) == 0 && len(live) == 0 {
		if flat, ok := root["items"].([]any); ok {
			breaking, live = partitionFlat(flat)
		}
	}
	return breaking, live
}

// partitionFlat splits a flat item array on each item's type field.
// Items without a recognizable type are dropped.
func partitionFlat(flat []any) (breaking, live []any) {
	for _, v := range flat {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		t, _ := m["type"].(string)
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "breaking":
			breaking = append(breaking, v)
		case "live":
			live = append(live, v)
		}
	}
	return breaking, live
}

// NormalizeItems folds a raw item list into canonical form, dropping
// anything uninterpretable. The fetch orchestrator uses it to normalize
// per-language item fetches before assembling the combined result.
func NormalizeItems(raw []any) []BroadcastItem {
	items := make([]BroadcastItem, 0, len(raw))
	for _, v := range raw {
		if item, ok := normalizeItem(v); ok {
			items = append(items, item)
		}
	}
	return items
}

// translationKeys are the historical names for the per-language text map,
// in priority order. The first one present wins.
var translationKeys = []string{"texts", "translations", "i18n", "textByLang", "byLang"}

// normalizeItem folds one raw item into canonical form. Plain strings are
// legal items; anything else must be an object.
func normalizeItem(v any) (BroadcastItem, bool) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return BroadcastItem{}, false
		}
		return BroadcastItem{Text: s}, true
	}

	m, ok := v.(map[string]any)
	if !ok {
		return BroadcastItem{}, false
	}

	item := BroadcastItem{
		ID:          stringField(m, "id", "_id"),
		Text:        stringField(m, "text"),
		Title:       stringField(m, "title"),
		Headline:    stringField(m, "headline"),
		SourceLang:  strings.ToLower(stringField(m, "sourceLang")),
		Type:        strings.ToLower(stringField(m, "type")),
		CreatedAt:   stringField(m, "createdAt", "created_at"),
		PublishedAt: stringField(m, "publishedAt", "published_at"),
		UpdatedAt:   stringField(m, "updatedAt", "updated_at"),
	}

	for _, key := range translationKeys {
		tm, ok := m[key].(map[string]any)
		if !ok {
			continue
		}
		texts := make(map[string]string, len(tm))
		for lang, raw := range tm {
			s, ok := raw.(string)
			if !ok || lang == "" {
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			texts[strings.ToLower(lang)] = s
		}
		if len(texts) > 0 {
			item.Texts = texts
		}
		break
	}

	return item, true
}

// stringField returns the first of the named fields holding a non-empty
// string, trimmed. Numeric ids are formatted rather than dropped.
func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		switch s := m[key].(type) {
		case string:
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				return trimmed
			}
		case float64:
			if s == float64(int64(s)) {
				return fmt.Sprintf("%d", int64(s))
			}
			return fmt.Sprintf("%v", s)
		}
	}
	return ""
}
