// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nupush/nupush/internal/config"
	"github.com/nupush/nupush/internal/issue"
)

// newConfigCommand creates the `nupush config` command tree.
// Subcommands that read configuration use the App's ConfigProvider.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect nupush configuration",
		Long: `Inspect nupush configuration.

Configuration is read from:
  - Linux: ~/.config/nupush/config.cue
  - macOS: ~/Library/Application Support/nupush/config.cue
  - Windows: %APPDATA%\nupush\config.cue
  - ./nupush.cue when the file above does not exist

Environment variables (NUPUSH_<SECTION>_<KEY>) override the file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as TOML, secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app)
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App) error {
	cfg, err := app.Config.Load(ctx, app.loadOptions(nil))
	if err != nil {
		fmt.Fprintln(app.stderr, ErrorStyle.Render("✗ ")+formatErrorForDisplay(err, app.verbose))
		renderIssue(app.stderr, issue.Get(issue.ConfigLoadFailedId))
		return err
	}

	out, err := config.Render(cfg)
	if err != nil {
		return fmt.Errorf("render configuration: %w", err)
	}

	source := SubtitleStyle.Render("(using defaults)")
	if cfg.Source != "" {
		source = cfg.Source
	}
	fmt.Fprintf(app.stdout, "# %s: %s\n\n", "Config file", source)
	fmt.Fprint(app.stdout, string(out))
	return nil
}

func showConfigPath(app *App) error {
	path, err := config.ResolvePath(app.loadOptions(nil))
	if err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintln(app.stdout, path)
		return nil
	}

	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "%s %s\n", SubtitleStyle.Render("(not found, would read)"),
		filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	return nil
}
