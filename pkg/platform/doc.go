// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform facts used when choosing a push tool.
//
// The managed push tool only exists for one operating system, so callers
// compare the host OS against Reference instead of scattering GOOS literals.
package platform
