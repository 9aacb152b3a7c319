// Tickersync - Live News Ticker Synchronization Engine
// Copyright 2026 Newslive contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/newslive/tickersync

/*
Package broadcast defines the canonical ticker data model and the pure
functions that produce it from raw upstream payloads.

The upstream broadcast service has gone through several payload revisions and
still serves all of them depending on endpoint and deployment age. This
package absorbs that variability in one place so the rest of the codebase
only ever sees one shape.

Key Components:

  - Broadcast: the canonical aggregate (settings + breaking/live item lists)
  - Normalize: ordered shape adapters converting any raw payload to a Broadcast
  - ResolveText / ToTickerTexts: language-aware display-text resolution
  - Fingerprint: content hash used by the sync engine for change suppression
  - ClampSpeedSec / ClampSpeedSecSite: scroll-speed clamping for the two
    documented call-site ranges

Everything in this package is pure: no I/O, no clocks, no globals. A
Broadcast value is immutable once constructed; producers build new values
rather than mutating published ones.
*/
package broadcast
