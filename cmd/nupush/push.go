// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nupush/nupush/internal/auth"
	"github.com/nupush/nupush/internal/config"
	"github.com/nupush/nupush/internal/issue"
	"github.com/nupush/nupush/internal/publish"
	"github.com/nupush/nupush/internal/pushtool"
	"github.com/nupush/nupush/internal/strategy"
	"github.com/nupush/nupush/pkg/types"
)

// pushFlagKeys maps push flags to the config keys they override.
var pushFlagKeys = map[string]string{
	"feed-type":               "push.feed_type",
	"feed":                    "push.feed",
	"external-endpoint":       "push.external_endpoint",
	"verbosity":               "push.verbosity",
	"allow-package-conflicts": "push.allow_package_conflicts",
	"legacy-find":             "overrides.use_legacy_find_files",
	"nuget-path":              "tools.nuget_path",
	"managed-push-path":       "tools.managed_push_path",
}

func newPushCommand(app *App) *cobra.Command {
	pushCmd := &cobra.Command{
		Use:   "push [pattern...]",
		Short: "Push packages to a feed",
		Long: `Push every package matched by the search patterns.

Patterns given as arguments replace push.search_patterns. A pattern
starting with "!" excludes the paths it matches.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPush(cmd.Context(), app, pushOverrides(cmd.Flags(), args))
		},
	}

	flags := pushCmd.Flags()
	flags.String("feed-type", config.FeedTypeInternal, "feed type: internal or external")
	flags.String("feed", "", "internal feed to push to (name or project/name)")
	flags.String("external-endpoint", "", "comma-separated external endpoint names")
	flags.String("verbosity", config.VerbosityUnset, "push tool verbosity (Quiet, Normal, Detailed)")
	flags.Bool("allow-package-conflicts", false, "skip packages that already exist on the feed")
	flags.Bool("legacy-find", false, "use the ;-separated +:/-: filter syntax for patterns")
	flags.String("nuget-path", "", "path to the NuGet executable")
	flags.String("managed-push-path", "", "path to the managed push tool")

	return pushCmd
}

// pushOverrides collects the flags the user set explicitly, keyed by config key.
func pushOverrides(flags *pflag.FlagSet, args []string) map[string]any {
	set := map[string]any{}
	flags.Visit(func(f *pflag.Flag) {
		key, ok := pushFlagKeys[f.Name]
		if !ok {
			return
		}
		if f.Value.Type() == "bool" {
			set[key] = f.Value.String() == "true"
			return
		}
		set[key] = f.Value.String()
	})
	if len(args) > 0 {
		set["push.search_patterns"] = args
	}
	return set
}

func runPush(ctx context.Context, app *App, set map[string]any) error {
	cfg, err := app.Config.Load(ctx, app.loadOptions(set))
	if err != nil {
		fmt.Fprintln(app.stderr, ErrorStyle.Render("✗ ")+formatErrorForDisplay(err, app.verbose))
		renderIssue(app.stderr, issue.Get(issue.ConfigLoadFailedId))
		return &ExitError{Code: types.ExitFailure, Err: err}
	}

	logger := newLogger(app.stderr, cfg.UI.Verbose)
	if cfg.Source != "" {
		logger.Debug("Loaded configuration", "path", cfg.Source)
	}

	var external []auth.ExternalAuth
	if strings.EqualFold(strings.TrimSpace(cfg.Push.FeedType), string(auth.FeedExternal)) {
		names := cfg.ExternalEndpointNames()
		external, err = app.Endpoints(cfg, logger, names)
		if err != nil {
			err = issue.WrapWithContext(err, "resolve external endpoints", strings.Join(names, ", "))
			return app.pushFailed(newServiceError(err, 0, ""), nil)
		}
	}

	publisher := app.Publishers(cfg, logger, app.stdout, app.stderr)
	summary, err := publisher.Run(ctx, publishOptions(cfg, external))
	if err != nil {
		var feedURI string
		if summary != nil {
			feedURI = summary.FeedURI
		}
		err = issue.WrapWithContext(err, "push packages", feedURI)
		return app.pushFailed(newServiceError(err, issueFor(err), ""), summary)
	}

	if len(summary.Files) == 0 {
		fmt.Fprintln(app.stdout, WarningStyle.Render("! No packages matched the search pattern"))
		return nil
	}
	fmt.Fprintln(app.stdout, SuccessStyle.Render("✓ Packages pushed successfully"))
	fmt.Fprintf(app.stdout, "  %d package(s) pushed to %s\n", summary.Pushed, CmdStyle.Render(summary.FeedURI))
	return nil
}

// pushFailed prints the failure summary and returns the exit error.
func (app *App) pushFailed(svcErr *ServiceError, summary *publish.Summary) error {
	svcErr.StyledMessage = ErrorStyle.Render("✗ Packages failed to publish") + "\n" +
		"  " + formatErrorForDisplay(svcErr.Err, app.verbose) + "\n"
	renderServiceError(app.stderr, svcErr)
	if summary != nil && summary.Hint != nil {
		renderIssue(app.stderr, summary.Hint)
	}
	return &ExitError{Code: types.ExitFailure, Err: svcErr}
}

// publishOptions converts the loaded configuration into the run inputs.
func publishOptions(cfg *config.Config, external []auth.ExternalAuth) publish.Options {
	return publish.Options{
		FeedType:         cfg.Push.FeedType,
		SearchPatterns:   cfg.Push.SearchPatterns,
		LegacyFind:       cfg.Overrides.UseLegacyFindFiles,
		Feed:             cfg.Push.Feed,
		External:         external,
		Verbosity:        cfg.Push.Verbosity,
		AllowConflicts:   cfg.Push.AllowPackageConflicts,
		CollectionURI:    cfg.Service.CollectionURI,
		AccessToken:      cfg.Service.AccessToken,
		OnPremises:       cfg.Service.OnPremises,
		TempDir:          cfg.Service.TempDir,
		ExtraURLPrefixes: cfg.ExtraURLPrefixes(),
		ForceLegacy:      strategy.ParseTriState(cfg.Overrides.ForceNuGetForPush),
		ForceManaged:     strategy.ParseTriState(cfg.Overrides.ForceManagedPushForPush),
		ProbeOverrides: pushtool.ProbeOverrides{
			CredentialProvider:   strategy.ParseTriState(cfg.Overrides.ForceEnableCredentialProvider),
			CredentialProviderV2: strategy.ParseTriState(cfg.Overrides.ForceEnableCredentialProviderV2),
			CredentialConfig:     strategy.ParseTriState(cfg.Overrides.ForceEnableCredentialConfig),
		},
		CredentialProviderV1Folder: cfg.Tools.CredentialProviderV1Folder,
		CredentialProviderV2Path:   cfg.Tools.CredentialProviderV2Path,
		BuildIdentityDisplayName:   cfg.Service.BuildIdentityDisplayName,
		BuildIdentityAccount:       cfg.Service.BuildIdentityAccount,
	}
}
