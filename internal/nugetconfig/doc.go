// SPDX-License-Identifier: MPL-2.0

// Package nugetconfig writes the run-scoped NuGet.config file that registers
// package sources and their credentials for the legacy push tool.
//
// The file is created by Builder.Build and must be removed with
// Config.Cleanup on every exit path. Cleanup is safe to call on a nil
// *Config and more than once.
package nugetconfig
