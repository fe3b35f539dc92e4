// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nupush/nupush/pkg/platform"
)

// MustChdir changes the current working directory to dir and restores the
// original directory when the test ends.
func MustChdir(t testing.TB, dir string) {
	t.Helper()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory to %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(originalWd); err != nil {
			t.Errorf("failed to restore directory to %s: %v", originalWd, err)
		}
	})
}

// SetConfigHome points the platform's user config directory at dir and
// returns the directory the application's config would live in for appName.
//
// Platform handling:
//   - Windows: sets APPDATA
//   - macOS: sets HOME (config lives under Library/Application Support)
//   - Linux/others: sets XDG_CONFIG_HOME
func SetConfigHome(t *testing.T, dir, appName string) string {
	t.Helper()

	switch platform.Current() {
	case platform.Windows:
		t.Setenv("APPDATA", dir)
		return filepath.Join(dir, appName)
	case platform.Darwin:
		t.Setenv("HOME", dir)
		return filepath.Join(dir, "Library", "Application Support", appName)
	default:
		t.Setenv("XDG_CONFIG_HOME", dir)
		return filepath.Join(dir, appName)
	}
}
