// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/nupush/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/nupush/config.cue on macOS, %APPDATA%\nupush\config.cue
// on Windows), falling back to ./nupush.cue. Values are layered: defaults, then the file,
// then environment variables (NUPUSH_* and the pipeline variable aliases), then values
// set explicitly by the caller (CLI flags).
//
// Configuration validation is performed against a CUE schema (config_schema.cue) to ensure
// type safety and provide clear error messages for invalid configurations.
package config
