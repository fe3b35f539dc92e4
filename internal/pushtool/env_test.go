// SPDX-License-Identifier: MPL-2.0

package pushtool

import (
	"testing"

	"github.com/tidwall/gjson"

	"github.com/nupush/nupush/internal/auth"
)

func TestManagedEnv(t *testing.T) {
	t.Parallel()

	env := ManagedEnv(auth.InternalAuth{
		AccessToken: "tok",
		URLPrefixes: []string{"https://a/", "https://b/"},
	})
	if env[EnvAccessToken] != "tok" || env[EnvURIPrefixes] != "https://a/;https://b/" {
		t.Errorf("ManagedEnv() = %v", env)
	}
	if len(env) != 2 {
		t.Errorf("ManagedEnv() has %d entries, want 2", len(env))
	}
}

func TestLegacyEnv(t *testing.T) {
	t.Parallel()

	t.Run("v1 provider with extensions disabled", func(t *testing.T) {
		t.Parallel()

		env, err := LegacyEnv(
			auth.ExtendedAuthInfo{Internal: auth.InternalAuth{AccessToken: "tok"}},
			auth.EnvironmentSettings{CredentialProviderFolder: "/cp", ExtensionsDisabled: true},
		)
		if err != nil {
			t.Fatalf("LegacyEnv() error = %v", err)
		}
		if env[EnvCredentialProviders] != "/cp" {
			t.Errorf("%s = %q, want /cp", EnvCredentialProviders, env[EnvCredentialProviders])
		}
		if v, ok := env[EnvExtensionsPath]; !ok || v != "" {
			t.Errorf("%s must be set to empty, got %q (present %v)", EnvExtensionsPath, v, ok)
		}
		if _, ok := env[EnvPluginPaths]; ok {
			t.Errorf("%s must not be set", EnvPluginPaths)
		}
		if _, ok := env[EnvExternalFeedEndpoints]; ok {
			t.Errorf("%s must not be set without a v2 provider", EnvExternalFeedEndpoints)
		}
	})

	t.Run("v2 provider with external credentials", func(t *testing.T) {
		t.Parallel()

		info := auth.ExtendedAuthInfo{
			External: []auth.ExternalAuth{
				{
					Kind: auth.UsernamePassword,
					Source: auth.PackageSource{
						FeedURI:     "https://ext/v3/index.json",
						Credentials: &auth.Credentials{Username: "alice", Password: "pw"},
					},
				},
				{Kind: auth.Token, Token: "secret", Source: auth.PackageSource{FeedURI: "https://tok/"}},
				{Kind: auth.APIKey, APIKey: "k", Source: auth.PackageSource{FeedURI: "https://key/"}},
			},
		}
		env, err := LegacyEnv(info, auth.EnvironmentSettings{CredentialProviderPathV2: "/plugin"})
		if err != nil {
			t.Fatalf("LegacyEnv() error = %v", err)
		}
		if env[EnvPluginPaths] != "/plugin" {
			t.Errorf("%s = %q, want /plugin", EnvPluginPaths, env[EnvPluginPaths])
		}

		doc := env[EnvExternalFeedEndpoints]
		endpoints := gjson.Get(doc, "endpointCredentials")
		if n := len(endpoints.Array()); n != 2 {
			t.Fatalf("endpointCredentials has %d entries, want 2: %s", n, doc)
		}
		if got := gjson.Get(doc, "endpointCredentials.0.username").String(); got != "alice" {
			t.Errorf("first username = %q, want alice", got)
		}
		if got := gjson.Get(doc, "endpointCredentials.1.password").String(); got != "secret" {
			t.Errorf("token password = %q, want secret", got)
		}
	})
}
