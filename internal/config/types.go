// SPDX-License-Identifier: MPL-2.0

package config

import (
	"os"
	"strings"

	"github.com/nupush/nupush/internal/endpoint"
)

const (
	// FeedTypeInternal is the default feed type.
	FeedTypeInternal = "internal"
	// VerbosityUnset means no verbosity is forwarded to the push tool.
	VerbosityUnset = "-"
)

type (
	// Config holds the application configuration.
	Config struct {
		// Push configures what is pushed and where.
		Push PushConfig `mapstructure:"push" toml:"push"`
		// Service describes the hosting service instance.
		Service ServiceConfig `mapstructure:"service" toml:"service"`
		// Tools locates the push tools and credential providers.
		Tools ToolsConfig `mapstructure:"tools" toml:"tools"`
		// Overrides force decisions that are normally automatic.
		Overrides OverridesConfig `mapstructure:"overrides" toml:"overrides"`
		// Endpoints are the named external feeds.
		Endpoints map[string]endpoint.Definition `mapstructure:"endpoints" toml:"endpoints,omitempty"`
		// UI configures the user interface.
		UI UIConfig `mapstructure:"ui" toml:"ui"`

		// Source is the file the configuration was read from, empty when none.
		Source string `mapstructure:"-" toml:"-"`
	}

	// PushConfig configures a push run.
	PushConfig struct {
		// FeedType is "internal" or "external", case-insensitive.
		FeedType string `mapstructure:"feed_type" toml:"feed_type"`
		// SearchPatterns select the package files.
		SearchPatterns []string `mapstructure:"search_patterns" toml:"search_patterns"`
		// Feed is the internal feed, "name" or "project/name".
		Feed string `mapstructure:"feed" toml:"feed"`
		// ExternalEndpoint names the entries of Endpoints to push to, comma-separated.
		ExternalEndpoint string `mapstructure:"external_endpoint" toml:"external_endpoint"`
		// Verbosity is forwarded to the push tool; "-" means unset.
		Verbosity string `mapstructure:"verbosity" toml:"verbosity"`
		// AllowPackageConflicts skips packages that already exist on the feed.
		AllowPackageConflicts bool `mapstructure:"allow_package_conflicts" toml:"allow_package_conflicts"`
	}

	// ServiceConfig describes the hosting service instance.
	ServiceConfig struct {
		CollectionURI            string `mapstructure:"collection_uri" toml:"collection_uri"`
		AccessToken              string `mapstructure:"access_token" toml:"access_token"`
		OnPremises               bool   `mapstructure:"on_premises" toml:"on_premises"`
		TempDir                  string `mapstructure:"temp_dir" toml:"temp_dir"`
		BuildIdentityDisplayName string `mapstructure:"build_identity_display_name" toml:"build_identity_display_name"`
		BuildIdentityAccount     string `mapstructure:"build_identity_account" toml:"build_identity_account"`
	}

	// ToolsConfig locates the push tools and credential providers.
	ToolsConfig struct {
		NuGetPath                  string `mapstructure:"nuget_path" toml:"nuget_path"`
		ManagedPushPath            string `mapstructure:"managed_push_path" toml:"managed_push_path"`
		CredentialProviderV1Folder string `mapstructure:"credential_provider_v1_folder" toml:"credential_provider_v1_folder"`
		CredentialProviderV2Path   string `mapstructure:"credential_provider_v2_path" toml:"credential_provider_v2_path"`
	}

	// OverridesConfig holds the tri-state ("true", "false" or "") overrides.
	OverridesConfig struct {
		ForceNuGetForPush               string `mapstructure:"force_nuget_for_push" toml:"force_nuget_for_push"`
		ForceManagedPushForPush         string `mapstructure:"force_managed_push_for_push" toml:"force_managed_push_for_push"`
		ForceEnableCredentialProvider   string `mapstructure:"force_enable_credential_provider" toml:"force_enable_credential_provider"`
		ForceEnableCredentialProviderV2 string `mapstructure:"force_enable_credential_provider_v2" toml:"force_enable_credential_provider_v2"`
		ForceEnableCredentialConfig     string `mapstructure:"force_enable_credential_config" toml:"force_enable_credential_config"`
		// ExtraURLPrefixes are ";"-separated URI prefixes added to the discovered ones.
		ExtraURLPrefixes   string `mapstructure:"extra_url_prefixes" toml:"extra_url_prefixes"`
		UseLegacyFindFiles bool   `mapstructure:"use_legacy_find_files" toml:"use_legacy_find_files"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// Verbose enables debug logging.
		Verbose bool `mapstructure:"verbose" toml:"verbose"`
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Push: PushConfig{
			FeedType:       FeedTypeInternal,
			SearchPatterns: []string{"**/*.nupkg", "!**/*.symbols.nupkg"},
			Verbosity:      VerbosityUnset,
		},
		Service: ServiceConfig{
			TempDir: os.TempDir(),
		},
	}
}

// ExternalEndpointNames splits Push.ExternalEndpoint on commas.
func (c *Config) ExternalEndpointNames() []string {
	var names []string
	for _, n := range strings.Split(c.Push.ExternalEndpoint, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// ExtraURLPrefixes splits Overrides.ExtraURLPrefixes on ";".
func (c *Config) ExtraURLPrefixes() []string {
	var out []string
	for _, p := range strings.Split(c.Overrides.ExtraURLPrefixes, ";") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
