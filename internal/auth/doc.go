// SPDX-License-Identifier: MPL-2.0

// Package auth resolves how a push run authenticates against its package feeds.
//
// Resolve turns the feed type, the ambient access token, the externally
// supplied endpoint entries and the push tool's credential capabilities into
// an ExtendedAuthInfo plus the EnvironmentSettings the push tool process needs.
// It performs no I/O of its own; capability checks are supplied by the caller
// through CapabilityProbe so their diagnostics are emitted where they belong.
package auth
