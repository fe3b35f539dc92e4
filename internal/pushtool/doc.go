// SPDX-License-Identifier: MPL-2.0

// Package pushtool drives the two external package push tools.
//
// Legacy wraps the general-purpose nuget CLI and Managed wraps the hosted
// service's conflict-aware push tool. Both build an argument list from a
// Target, run it through a runtime.Runner and turn unexpected exit codes into
// an *InvocationError after reporting them to a telemetry.Sink.
//
// The package also locates the tools on disk, reads the legacy tool's version
// and derives the version-specific quirks that decide which credential
// mechanisms the tool supports.
package pushtool
