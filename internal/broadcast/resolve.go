// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

package broadcast

import (
	"sort"
	"strings"
)

// fallbackLangs is the fixed language preference tail tried after the
// requested language and the item's own source language.
var fallbackLangs = []string{"en", "hi", "gu"}

// placeholderTexts are the localized "no updates" strings substituted when a
// ticker would otherwise render empty.
var placeholderTexts = map[string]string{
	"en": "No new updates",
	"hi": "कोई नई अपडेट नहीं",
	"gu": "કોઈ નવા અપડેટ નથી",
}

// ResolveText picks the best display string for an item in the given
// language. It returns "" when nothing resolves; callers drop such items.
//
// Preference order: the translation-map entry for the requested language
// wins when one exists; otherwise the flat text/title/headline fields; then
// the map again via source language, the fixed en/hi/gu tail, and finally
// any remaining map value in deterministic (sorted-key) order.
func ResolveText(item BroadcastItem, lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))

	if lang != "" && item.Texts[lang] != "" {
		return item.Texts[lang]
	}

	for _, direct := range []string{item.Text, item.Title, item.Headline} {
		if s := strings.TrimSpace(direct); s != "" {
			return s
		}
	}

	if len(item.Texts) == 0 {
		return ""
	}
	tried := map[string]bool{lang: true}
	if item.SourceLang != "" && !tried[item.SourceLang] {
		tried[item.SourceLang] = true
		if s := item.Texts[item.SourceLang]; s != "" {
			return s
		}
	}
	for _, fallback := range fallbackLangs {
		if tried[fallback] {
			continue
		}
		tried[fallback] = true
		if s := item.Texts[fallback]; s != "" {
			return s
		}
	}

	remaining := make([]string, 0, len(item.Texts))
	for key := range item.Texts {
		remaining = append(remaining, key)
	}
	sort.Strings(remaining)
	for _, key := range remaining {
		if !tried[key] {
			return item.Texts[key]
		}
	}
	return ""
}

// ToTickerTexts resolves each item for the given language and drops the
// unresolvable ones. The result may legitimately be shorter than the input.
func ToTickerTexts(items []BroadcastItem, lang string) []string {
	texts := make([]string, 0, len(items))
	for _, item := range items {
		if s := ResolveText(item, lang); s != "" {
			texts = append(texts, s)
		}
	}
	return texts
}

// PlaceholderText returns the localized "no updates" string for lang,
// falling back to English for unknown languages.
func PlaceholderText(lang string) string {
	if s, ok := placeholderTexts[strings.ToLower(strings.TrimSpace(lang))]; ok {
		return s
	}
	return placeholderTexts["en"]
}

// TextsOrPlaceholder enforces the never-blank guarantee at the rendering
// boundary: an empty resolved list becomes a single localized placeholder.
func TextsOrPlaceholder(texts []string, lang string) []string {
	if len(texts) > 0 {
		return texts
	}
	return []string{PlaceholderText(lang)}
}
