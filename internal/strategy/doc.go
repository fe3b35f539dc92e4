// SPDX-License-Identifier: MPL-2.0

// Package strategy decides which push tool a run uses.
//
// Select is a pure function over the platform, feed kind, hosting mode and
// the two override flags. The rules are an ordered table evaluated top-down;
// the first matching rule decides. EnsureAvailable applies the post-condition
// that a managed-tool decision falls back to the legacy tool when the managed
// binary is missing.
package strategy
