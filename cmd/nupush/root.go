// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/nupush/nupush/internal/config"
	"github.com/nupush/nupush/internal/issue"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand creates the nupush command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nupush",
		Short: "Push NuGet packages to internal and external feeds",
		Long: TitleStyle.Render("nupush") + SubtitleStyle.Render(" - Push NuGet packages to internal and external feeds") + `

nupush finds package files, works out how to authenticate against the
target feed, writes a temporary NuGet config holding the credentials and
pushes every package with either NuGet or the managed push tool.

` + SubtitleStyle.Render("Examples:") + `
  nupush push                                  Push **/*.nupkg to push.feed
  nupush push --feed project/feed out/*.nupkg  Push to a project-scoped feed
  nupush push --feed-type external --external-endpoint nugetorg
  nupush config show                           Show the effective configuration`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "config file (default is $HOME/.config/nupush/config.cue)")

	rootCmd.AddCommand(newPushCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the command tree and runs it. This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	rootCmd := NewRootCommand(app)

	// fang overrides rootCmd.Version, so the version goes through fang.WithVersion().
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// loadOptions returns the config load options for the global flags plus the
// given explicit values.
func (app *App) loadOptions(set map[string]any) config.LoadOptions {
	if app.verbose {
		if set == nil {
			set = map[string]any{}
		}
		set["ui.verbose"] = true
	}
	return config.LoadOptions{ConfigFilePath: app.configPath, Set: set}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
