// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

package broadcast

import "testing"

func fingerprintFixture() Broadcast {
	b := Empty()
	b.OK = true
	b.Meta.HasSettings = true
	b.Items.Breaking = []BroadcastItem{
		{Texts: map[string]string{"en": "English B", "hi": "हिन्दी B"}},
	}
	b.Items.Live = []BroadcastItem{
		{Text: "L1"},
	}
	return b
}

func TestFingerprintStable(t *testing.T) {
	b := fingerprintFixture()
	first := Fingerprint(b, "hi")
	second := Fingerprint(b, "hi")
	if first != second {
		t.Errorf("fingerprint not stable: %q vs %q", first, second)
	}
	if first == "" {
		t.Error("fingerprint should not be empty")
	}
}

func TestFingerprintChangesWithActiveLanguageText(t *testing.T) {
	b := fingerprintFixture()
	before := Fingerprint(b, "hi")

	changed := fingerprintFixture()
	changed.Items.Breaking = []BroadcastItem{
		{Texts: map[string]string{"en": "English B", "hi": "हिन्दी B (edited)"}},
	}
	after := Fingerprint(changed, "hi")

	if before == after {
		t.Error("editing the active language's text must change the fingerprint")
	}
}

func TestFingerprintIgnoresInactiveLanguageText(t *testing.T) {
	b := fingerprintFixture()
	before := Fingerprint(b, "hi")

	changed := fingerprintFixture()
	changed.Items.Breaking = []BroadcastItem{
		{Texts: map[string]string{"en": "English B (edited)", "hi": "हिन्दी B"}},
	}
	after := Fingerprint(changed, "hi")

	if before != after {
		t.Error("editing another language's text must not change the fingerprint")
	}
}

func TestFingerprintSensitiveToLanguage(t *testing.T) {
	b := fingerprintFixture()
	if Fingerprint(b, "hi") == Fingerprint(b, "en") {
		t.Error("fingerprint must include the requested language")
	}
}

func TestFingerprintSensitiveToSettings(t *testing.T) {
	b := fingerprintFixture()
	before := Fingerprint(b, "hi")

	changed := fingerprintFixture()
	changed.Settings.Breaking.Mode = ModeForceOff
	if Fingerprint(changed, "hi") == before {
		t.Error("settings changes must change the fingerprint")
	}

	changed = fingerprintFixture()
	changed.Meta.HasSettings = false
	if Fingerprint(changed, "hi") == before {
		t.Error("hasSettings changes must change the fingerprint")
	}
}
