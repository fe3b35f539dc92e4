// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/nupush/nupush/internal/auth"
	"github.com/nupush/nupush/internal/issue"
	"github.com/nupush/nupush/internal/location"
	"github.com/nupush/nupush/internal/nugetconfig"
	"github.com/nupush/nupush/internal/pushtool"
	"github.com/nupush/nupush/internal/runtime"
	"github.com/nupush/nupush/internal/search"
	"github.com/nupush/nupush/internal/strategy"
	"github.com/nupush/nupush/internal/telemetry"
	"github.com/nupush/nupush/pkg/platform"
)

// WarnNoPackagesMatched is logged when the search patterns match nothing.
const WarnNoPackagesMatched = "No packages matched the search pattern."

type (
	// ToolLocator finds the push tools.
	ToolLocator interface {
		LegacyTool(ctx context.Context) (*pushtool.LegacyToolInfo, error)
		// ManagedTool returns "" when the managed tool is not installed.
		ManagedTool() string
	}

	// LocationResolver asks the service where its packaging endpoints live.
	LocationResolver interface {
		PackagingURIs(ctx context.Context, collectionURI, token string) (*location.PackagingLocation, error)
		FeedRegistryURL(ctx context.Context, packagingURI, token, feed string, protocol location.Protocol) (string, error)
	}

	// FileMatcher expands search patterns to package paths.
	FileMatcher interface {
		Match(patterns []string) ([]string, error)
		MatchLegacy(spec string) ([]string, error)
	}

	// Dependencies are the collaborators of a Publisher. Nil fields are
	// replaced by production defaults.
	Dependencies struct {
		Fs       afero.Fs
		Runner   runtime.Runner
		Locator  ToolLocator
		Location LocationResolver
		Matcher  FileMatcher
		Metrics  telemetry.Sink
		Platform platform.OS
		Logger   *log.Logger
	}

	// Options are the inputs of one run, read once from configuration.
	Options struct {
		// FeedType is "internal" or "external", case-insensitive.
		FeedType string
		// SearchPatterns select the package files.
		SearchPatterns []string
		// LegacyFind selects the ";"-separated +:/-: filter syntax.
		LegacyFind bool
		// Feed is the internal feed, "name" or "project/name".
		Feed string
		// External are the resolved external endpoints; only the first is used.
		External []auth.ExternalAuth
		// Verbosity is forwarded to the push tool; "" and "-" mean unset.
		Verbosity string
		// AllowConflicts skips packages that already exist on the feed.
		AllowConflicts bool

		CollectionURI string
		AccessToken   string
		OnPremises    bool
		TempDir       string
		// ExtraURLPrefixes are appended to the discovered URI prefixes.
		ExtraURLPrefixes []string

		ForceLegacy    strategy.TriState
		ForceManaged   strategy.TriState
		ProbeOverrides pushtool.ProbeOverrides

		CredentialProviderV1Folder string
		CredentialProviderV2Path   string

		BuildIdentityDisplayName string
		BuildIdentityAccount     string
	}

	// Summary describes a finished run. It is returned even when the run fails,
	// holding whatever was decided before the failure.
	Summary struct {
		// Files are the matched package files.
		Files []string
		// Pushed counts the files the tool accepted.
		Pushed int
		// FeedURI is the push destination.
		FeedURI string
		// Tool is the push tool used; only meaningful when ToolSelected is set.
		Tool         strategy.Tool
		ToolSelected bool
		// ConfigFile is the temporary config path, removed before Run returns.
		ConfigFile string
		// Warnings are the warnings logged during the run.
		Warnings []string
		// Hint is set when the failure may be a feed permission problem.
		Hint *issue.Issue
	}

	// Publisher runs pushes.
	Publisher struct {
		fs       afero.Fs
		runner   runtime.Runner
		locator  ToolLocator
		location LocationResolver
		matcher  FileMatcher
		metrics  telemetry.Sink
		platform platform.OS
		logger   *log.Logger
	}

	// run holds the state of one Run call.
	run struct {
		*Publisher
		opts    Options
		summary *Summary
	}
)

// New creates a Publisher.
func New(deps Dependencies) *Publisher {
	p := &Publisher{
		fs:       deps.Fs,
		runner:   deps.Runner,
		locator:  deps.Locator,
		location: deps.Location,
		matcher:  deps.Matcher,
		metrics:  deps.Metrics,
		platform: deps.Platform,
		logger:   deps.Logger,
	}
	if p.logger == nil {
		p.logger = log.New(io.Discard)
	}
	if p.fs == nil {
		p.fs = afero.NewOsFs()
	}
	if p.runner == nil {
		p.runner = runtime.NewExecRunner(os.Stdout, os.Stderr)
	}
	if p.locator == nil {
		p.locator = pushtool.NewLocator("", "", p.runner, p.logger)
	}
	if p.location == nil {
		p.location = location.NewClient(location.WithLogger(p.logger))
	}
	if p.matcher == nil {
		wd, err := os.Getwd()
		if err != nil {
			wd = "."
		}
		p.matcher = search.NewMatcher(p.fs, wd, p.logger)
	}
	if p.platform == "" {
		p.platform = platform.Current()
	}
	return p
}

// Run pushes every matched package. The temporary config, when one is
// written, is removed before Run returns on every path.
func (p *Publisher) Run(ctx context.Context, opts Options) (*Summary, error) {
	r := &run{Publisher: p, opts: opts, summary: &Summary{}}

	err := r.execute(ctx)
	if err != nil {
		p.logger.Error("Packages failed to publish", "err", err)
		if identityHintApplies(err, opts) {
			r.summary.Hint = issue.Get(issue.BuildIdentityPermissionsId).
				WithArgs(opts.BuildIdentityDisplayName, opts.BuildIdentityAccount)
			r.warn("The build identity may not be allowed to push to this feed",
				"identity", opts.BuildIdentityDisplayName, "account", opts.BuildIdentityAccount)
		}
		return r.summary, err
	}
	return r.summary, nil
}

// identityHintApplies reports whether a failure may stem from the build
// identity lacking feed permissions. A missing push source never reached the feed.
func identityHintApplies(err error, opts Options) bool {
	if errors.Is(err, auth.ErrNoPushSource) {
		return false
	}
	return opts.BuildIdentityDisplayName != "" || opts.BuildIdentityAccount != ""
}

func (r *run) execute(ctx context.Context) (err error) {
	packaging := r.packagingLocation(ctx)

	feedType, err := auth.ParseFeedType(r.opts.FeedType)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	if feedType.IsInternal() && strings.TrimSpace(r.opts.Feed) == "" {
		return fmt.Errorf("%w: an internal feed requires a feed name", ErrConfiguration)
	}

	files, err := r.collectFiles()
	if err != nil {
		return err
	}
	r.summary.Files = files
	if len(files) == 0 {
		r.warn(WarnNoPackagesMatched)
		return nil
	}

	tool, err := r.locator.LegacyTool(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	res, err := auth.Resolve(auth.Request{
		FeedType:    string(feedType),
		AccessToken: r.opts.AccessToken,
		URLPrefixes: packaging.URIs,
		External:    r.opts.External,
		Probe: &pushtool.Probe{
			Quirks:     tool.Quirks,
			OnPremises: r.opts.OnPremises,
			Overrides:  r.opts.ProbeOverrides,
			V1Folder:   r.opts.CredentialProviderV1Folder,
			V2Path:     r.opts.CredentialProviderV2Path,
			Logger:     r.logger,
		},
	})
	if err != nil {
		return err
	}

	var (
		apiKey  string
		sources []auth.PackageSource
	)
	if feedType.IsInternal() {
		protocol := location.ProtocolV2
		if tool.Version.SupportsV3() {
			protocol = location.ProtocolV3
		}
		uri, err := r.location.FeedRegistryURL(ctx, packaging.DefaultURI, r.opts.AccessToken, r.opts.Feed, protocol)
		if err != nil {
			return fmt.Errorf("resolve feed %q: %w", r.opts.Feed, err)
		}
		r.summary.FeedURI = uri
		apiKey = auth.InternalAPIKeyPlaceholder
		if res.UseCredentialConfig {
			sources = []auth.PackageSource{{Name: r.opts.Feed, FeedURI: uri, IsInternal: true}}
		}
	} else {
		ext, _ := res.Auth.PrimaryExternal()
		r.summary.FeedURI = ext.Source.FeedURI
		apiKey = ext.PushAPIKey()
		sources = []auth.PackageSource{ext.Source}
	}

	var cfg *nugetconfig.Config
	if len(sources) > 0 {
		builder := nugetconfig.NewBuilder(r.fs, r.opts.TempDir, nugetconfig.WithLogger(r.logger))
		cfg, err = builder.Build(nugetconfig.Request{Auth: res.Auth, Sources: sources})
		if err != nil {
			return err
		}
		r.summary.ConfigFile = cfg.Path()
	}
	defer func() {
		if cleanupErr := cfg.Cleanup(); cleanupErr != nil {
			r.logger.Warn("Failed to remove temporary NuGet config", "path", cfg.Path(), "err", cleanupErr)
			if err == nil {
				err = cleanupErr
			}
		}
	}()

	pusher, err := r.pusher(feedType, tool, res)
	if err != nil {
		return err
	}

	for _, file := range files {
		target := pushtool.Target{
			File:        file,
			FeedURI:     r.summary.FeedURI,
			APIKey:      apiKey,
			ConfigFile:  cfg.Path(),
			AccessToken: r.opts.AccessToken,
			Verbosity:   r.opts.Verbosity,
		}
		r.logger.Debug("Pushing package", "file", file, "tool", pusher.Name())
		if err := pusher.Push(ctx, target); err != nil {
			return err
		}
		r.summary.Pushed++
	}
	r.logger.Info("Packages pushed successfully", "count", r.summary.Pushed, "feed", r.summary.FeedURI)
	return nil
}

// packagingLocation never fails: without an answer from the location
// service the collection URI is the only prefix.
func (r *run) packagingLocation(ctx context.Context) location.PackagingLocation {
	var loc location.PackagingLocation
	got, err := r.location.PackagingURIs(ctx, r.opts.CollectionURI, r.opts.AccessToken)
	if err != nil {
		r.logger.Debug("Unable to get packaging URIs, using default collection URI", "err", err)
		loc = location.PackagingLocation{DefaultURI: r.opts.CollectionURI}
		if r.opts.CollectionURI != "" {
			loc.URIs = []string{r.opts.CollectionURI}
		}
	} else {
		loc = *got
	}
	r.logger.Debug("Discovered URL prefixes", "prefixes", loc.URIs)

	if len(r.opts.ExtraURLPrefixes) > 0 {
		loc.URIs = append(slices.Clone(loc.URIs), r.opts.ExtraURLPrefixes...)
		r.logger.Debug("All URL prefixes", "prefixes", loc.URIs)
	}
	return loc
}

func (r *run) collectFiles() ([]string, error) {
	var (
		files []string
		err   error
	)
	if r.opts.LegacyFind {
		files, err = r.matcher.MatchLegacy(strings.Join(r.opts.SearchPatterns, ";"))
	} else {
		files, err = r.matcher.Match(r.opts.SearchPatterns)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	for _, f := range files {
		info, err := r.fs.Stat(f)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", f, err)
		}
		if !info.Mode().IsRegular() {
			return nil, &NotARegularFileError{Path: f}
		}
	}
	return files, nil
}

// pusher selects the push tool once for the whole run.
func (r *run) pusher(feedType auth.FeedType, tool *pushtool.LegacyToolInfo, res *auth.Resolution) (pushtool.Pusher, error) {
	decision := strategy.Select(strategy.Input{
		Platform:         r.platform,
		InternalFeed:     feedType.IsInternal(),
		ConflictsAllowed: r.opts.AllowConflicts,
		OnPremises:       r.opts.OnPremises,
		ForceLegacy:      r.opts.ForceLegacy,
		ForceManaged:     r.opts.ForceManaged,
	})
	r.logger.Debug(decision.Reason)
	if decision.Warning != "" {
		r.warn(decision.Warning)
	}

	var managedPath string
	if decision.Tool == strategy.ManagedTool {
		managedPath = r.locator.ManagedTool()
		if fallback := strategy.EnsureAvailable(decision, managedPath); fallback.Tool != decision.Tool {
			decision = fallback
			r.warn(decision.Warning)
		}
	}
	r.summary.Tool = decision.Tool
	r.summary.ToolSelected = true

	if decision.Tool == strategy.ManagedTool {
		r.logger.Debug("Using the managed push tool to push the packages", "path", managedPath)
		env := pushtool.ManagedEnv(res.Auth.Internal)
		return pushtool.NewManaged(managedPath, env, r.opts.AllowConflicts, r.runner, r.metrics, r.logger), nil
	}

	r.logger.Debug("Using NuGet to push the packages", "path", tool.Path)
	env, err := pushtool.LegacyEnv(res.Auth, res.Environment)
	if err != nil {
		return nil, err
	}
	return pushtool.NewLegacy(tool.Path, env, r.runner, r.metrics, r.logger), nil
}

func (r *run) warn(msg string, keyvals ...any) {
	r.summary.Warnings = append(r.summary.Warnings, msg)
	r.logger.Warn(msg, keyvals...)
}
