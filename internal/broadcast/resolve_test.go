// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

package broadcast

import (
	"reflect"
	"testing"
)

func TestResolveTextDirectFields(t *testing.T) {
	tests := []struct {
		name string
		item BroadcastItem
		want string
	}{
		{name: "text wins", item: BroadcastItem{Text: "T", Title: "Ti", Headline: "H"}, want: "T"},
		{name: "title next", item: BroadcastItem{Title: "Ti", Headline: "H"}, want: "Ti"},
		{name: "headline last", item: BroadcastItem{Headline: "H"}, want: "H"},
		{name: "whitespace trimmed", item: BroadcastItem{Text: "  spaced  "}, want: "spaced"},
		{name: "whitespace-only skipped", item: BroadcastItem{Text: "   ", Title: "Ti"}, want: "Ti"},
		{name: "nothing resolvable", item: BroadcastItem{ID: "1"}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveText(tt.item, ""); got != tt.want {
				t.Errorf("ResolveText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveTextLanguagePreference(t *testing.T) {
	item := BroadcastItem{
		Text:  "EN fallback",
		Texts: map[string]string{"en": "English", "hi": "हिन्दी", "gu": "ગુજરાતી"},
	}

	// With a requested language the map entry for that language wins over
	// the flat text field.
	if got := ResolveText(item, "hi"); got != "हिन्दी" {
		t.Errorf("lang=hi: got %q", got)
	}
	if got := ResolveText(item, "en"); got != "English" {
		t.Errorf("lang=en: got %q", got)
	}
	// Without a language the direct field still wins.
	if got := ResolveText(item, ""); got != "EN fallback" {
		t.Errorf("no lang: got %q", got)
	}
	// Unknown requested language falls through to the direct field.
	if got := ResolveText(item, "fr"); got != "EN fallback" {
		t.Errorf("lang=fr: got %q", got)
	}
}

func TestResolveTextFallbackChain(t *testing.T) {
	tests := []struct {
		name string
		item BroadcastItem
		lang string
		want string
	}{
		{
			name: "source language before fixed tail",
			item: BroadcastItem{SourceLang: "gu", Texts: map[string]string{"gu": "ગુજરાતી", "en": "English"}},
			lang: "hi",
			want: "ગુજરાતી",
		},
		{
			name: "fixed tail order en first",
			item: BroadcastItem{Texts: map[string]string{"gu": "ગુજરાતી", "en": "English"}},
			lang: "hi",
			want: "English",
		},
		{
			name: "fixed tail order hi before gu",
			item: BroadcastItem{Texts: map[string]string{"gu": "ગુજરાતી", "hi": "हिन्दी"}},
			lang: "fr",
			want: "हिन्दी",
		},
		{
			name: "any remaining value deterministic",
			item: BroadcastItem{Texts: map[string]string{"mr": "मराठी", "bn": "বাংলা"}},
			lang: "en",
			want: "বাংলা", // sorted keys: bn before mr
		},
		{
			name: "case-insensitive request",
			item: BroadcastItem{Texts: map[string]string{"hi": "हिन्दी"}},
			lang: "HI",
			want: "हिन्दी",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveText(tt.item, tt.lang); got != tt.want {
				t.Errorf("ResolveText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToTickerTextsDropsUnresolvable(t *testing.T) {
	items := []BroadcastItem{
		{Text: "one"},
		{ID: "unresolvable"},
		{Texts: map[string]string{"hi": "तीन"}},
	}
	got := ToTickerTexts(items, "hi")
	want := []string{"one", "तीन"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ToTickerTexts = %v, want %v", got, want)
	}
}

func TestPlaceholderText(t *testing.T) {
	tests := []struct {
		lang string
		want string
	}{
		{lang: "en", want: "No new updates"},
		{lang: "hi", want: "कोई नई अपडेट नहीं"},
		{lang: "gu", want: "કોઈ નવા અપડેટ નથી"},
		{lang: "", want: "No new updates"},
		{lang: "fr", want: "No new updates"},
		{lang: " EN ", want: "No new updates"},
	}

	for _, tt := range tests {
		if got := PlaceholderText(tt.lang); got != tt.want {
			t.Errorf("PlaceholderText(%q) = %q, want %q", tt.lang, got, tt.want)
		}
	}
}

// The never-blank guarantee: any input, including nothing at all, yields a
// non-empty render list.
func TestTextsOrPlaceholderNeverBlank(t *testing.T) {
	inputs := [][]BroadcastItem{
		nil,
		{},
		{{ID: "no text"}},
	}
	for _, items := range inputs {
		got := TextsOrPlaceholder(ToTickerTexts(items, "gu"), "gu")
		if len(got) == 0 {
			t.Fatal("ticker list must never be empty")
		}
		if got[0] != "કોઈ નવા અપડેટ નથી" {
			t.Errorf("placeholder not localized: %q", got[0])
		}
	}

	// Real content passes through untouched.
	got := TextsOrPlaceholder([]string{"real"}, "gu")
	if !reflect.DeepEqual(got, []string{"real"}) {
		t.Errorf("content should pass through: %v", got)
	}
}
