// SPDX-License-Identifier: MPL-2.0

// Package location queries the service's location endpoints for the
// packaging service URIs and the registry URL of a feed.
package location
