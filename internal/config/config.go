// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/nupush/nupush/internal/issue"
	"github.com/nupush/nupush/pkg/cueutil"
	"github.com/nupush/nupush/pkg/platform"
)

const (
	// AppName is the application name.
	AppName = "nupush"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// LocalConfigFileName is looked up in the working directory when the
	// config directory has no file.
	LocalConfigFileName = AppName + "." + ConfigFileExt
	// EnvPrefix prefixes every environment variable bound to a key.
	EnvPrefix = "NUPUSH"
)

//go:embed config_schema.cue
var configSchema string

// envAliases maps keys to the pipeline variables that also set them. The
// NUPUSH_ variable wins when both are present.
var envAliases = map[string][]string{
	"service.access_token":                  {"SYSTEM_ACCESSTOKEN"},
	"service.collection_uri":                {"SYSTEM_TEAMFOUNDATIONCOLLECTIONURI"},
	"overrides.force_nuget_for_push":        {"NUGET_FORCENUGETFORPUSH"},
	"overrides.force_managed_push_for_push": {"NUGET_FORCEVSTSNUGETPUSHFORPUSH"},
	"overrides.extra_url_prefixes":          {"NUGETTASKS_EXTRAURLPREFIXESFORTESTING"},
	"overrides.use_legacy_find_files":       {"NUGET_USELEGACYFINDFILES"},
}

// ConfigDir returns the nupush configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch platform.Current() {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// ResolvePath returns the config file that Load would read, or "" when none
// exists and defaults apply.
func ResolvePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		return opts.ConfigFilePath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	if cuePath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt); fileExists(cuePath) {
		return cuePath, nil
	}
	if fileExists(LocalConfigFileName) {
		return LocalConfigFileName, nil
	}
	return "", nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFilePath != "" && !fileExists(opts.ConfigFilePath) {
		return nil, issue.NewErrorContext().
			WithOperation("load configuration").
			WithResource(opts.ConfigFilePath).
			WithSuggestion("Verify the file path is correct").
			WithSuggestion("Check that the file exists and is readable").
			WithSuggestion("Use 'nupush config show' to see the effective configuration").
			Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
			BuildError()
	}

	resolvedPath, err := ResolvePath(opts)
	if err != nil {
		return nil, err
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("See 'nupush config --help' for configuration options").
				Wrap(err).
				BuildError()
		}
	}

	if err := bindEnv(v); err != nil {
		return nil, err
	}

	for key, value := range opts.Set {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Source = resolvedPath

	return &cfg, nil
}

// setDefaults registers every key so environment variables can reach it.
func setDefaults(v *viper.Viper) {
	defaults := DefaultConfig()

	v.SetDefault("push.feed_type", defaults.Push.FeedType)
	v.SetDefault("push.search_patterns", defaults.Push.SearchPatterns)
	v.SetDefault("push.feed", "")
	v.SetDefault("push.external_endpoint", "")
	v.SetDefault("push.verbosity", defaults.Push.Verbosity)
	v.SetDefault("push.allow_package_conflicts", false)

	v.SetDefault("service.collection_uri", "")
	v.SetDefault("service.access_token", "")
	v.SetDefault("service.on_premises", false)
	v.SetDefault("service.temp_dir", defaults.Service.TempDir)
	v.SetDefault("service.build_identity_display_name", "")
	v.SetDefault("service.build_identity_account", "")

	v.SetDefault("tools.nuget_path", "")
	v.SetDefault("tools.managed_push_path", "")
	v.SetDefault("tools.credential_provider_v1_folder", "")
	v.SetDefault("tools.credential_provider_v2_path", "")

	v.SetDefault("overrides.force_nuget_for_push", "")
	v.SetDefault("overrides.force_managed_push_for_push", "")
	v.SetDefault("overrides.force_enable_credential_provider", "")
	v.SetDefault("overrides.force_enable_credential_provider_v2", "")
	v.SetDefault("overrides.force_enable_credential_config", "")
	v.SetDefault("overrides.extra_url_prefixes", "")
	v.SetDefault("overrides.use_legacy_find_files", false)

	v.SetDefault("ui.verbose", false)
}

// bindEnv binds NUPUSH_<SECTION>_<KEY> for every key plus the aliases.
func bindEnv(v *viper.Viper) error {
	for _, key := range v.AllKeys() {
		if strings.HasPrefix(key, "endpoints.") {
			continue
		}
		names := append([]string{EnvVarName(key)}, envAliases[key]...)
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return fmt.Errorf("bind environment for %s: %w", key, err)
		}
	}
	return nil
}

// EnvVarName returns the environment variable bound to key.
func EnvVarName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.DecodeMap(configSchema, "#Config", data, path, cueutil.DefaultMaxFileSize)
	if err != nil {
		return err
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
