// SPDX-License-Identifier: MPL-2.0

// Package search finds the package files a push run operates on.
//
// Match implements the default matcher: an ordered list of glob patterns
// where a leading "!" removes earlier matches. MatchLegacy implements the
// older ";"-separated filter spec with "+:" and "-:" prefixes.
package search
