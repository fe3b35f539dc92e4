// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the nupush CLI commands.
package cmd
