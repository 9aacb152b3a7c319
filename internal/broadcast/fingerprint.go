// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

package broadcast

import (
	"crypto/sha256"
	"fmt"

	"github.com/goccy/go-json"
)

// fingerprintInput is the canonical tuple hashed for change detection. Only
// the parts that affect what the requested language actually renders are
// included, so an edit to a different language's translation does not
// invalidate the published state.
type fingerprintInput struct {
	Lang        string         `json:"lang"`
	Breaking    []string       `json:"breaking"`
	Live        []string       `json:"live"`
	HasSettings bool           `json:"hasSettings"`
	Settings    [2]settingsKey `json:"settings"`
}

type settingsKey struct {
	Enabled  bool    `json:"enabled"`
	Mode     Mode    `json:"mode"`
	SpeedSec float64 `json:"speedSec"`
}

// Fingerprint derives the comparison key the sync engine uses to suppress
// redundant publishes. Stable across calls for the same (broadcast, lang)
// pair; never persisted.
func Fingerprint(b Broadcast, lang string) string {
	input := fingerprintInput{
		Lang:        lang,
		Breaking:    ToTickerTexts(b.Items.Breaking, lang),
		Live:        ToTickerTexts(b.Items.Live, lang),
		HasSettings: b.Meta.HasSettings,
		Settings: [2]settingsKey{
			{Enabled: b.Settings.Breaking.Enabled, Mode: b.Settings.Breaking.Mode, SpeedSec: b.Settings.Breaking.SpeedSec},
			{Enabled: b.Settings.Live.Enabled, Mode: b.Settings.Live.Mode, SpeedSec: b.Settings.Live.SpeedSec},
		},
	}

	data, err := json.Marshal(input)
	if err != nil {
		// Marshal of plain structs cannot realistically fail; degrade to a
		// non-cacheable key rather than panic.
		return fmt.Sprintf("raw:%v", input)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash[:16])
}
