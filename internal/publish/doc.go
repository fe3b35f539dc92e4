// SPDX-License-Identifier: MPL-2.0

// Package publish drives one push run: it matches package files, resolves the
// feed and its credentials, writes the temporary NuGet config, picks the push
// tool and pushes every file with it.
package publish
