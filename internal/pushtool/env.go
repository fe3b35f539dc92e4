// SPDX-License-Identifier: MPL-2.0

package pushtool

import (
	"encoding/json"
	"strings"

	"github.com/nupush/nupush/internal/auth"
)

// Environment variables understood by the push tools and their credential providers.
const (
	EnvAccessToken           = "VSS_NUGET_ACCESSTOKEN"
	EnvURIPrefixes           = "VSS_NUGET_URI_PREFIXES"
	EnvCredentialProviders   = "NUGET_CREDENTIALPROVIDERS_PATH"
	EnvPluginPaths           = "NUGET_PLUGIN_PATHS"
	EnvExtensionsPath        = "NUGET_EXTENSIONS_PATH"
	EnvExternalFeedEndpoints = "VSS_NUGET_EXTERNAL_FEED_ENDPOINTS"

	// tokenEndpointUser is the user name sent with token credentials.
	tokenEndpointUser = "build"
)

type (
	endpointCredentials struct {
		Endpoints []endpointCredential `json:"endpointCredentials"`
	}

	endpointCredential struct {
		Endpoint string `json:"endpoint"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
)

// ManagedEnv returns the environment of the managed push tool.
func ManagedEnv(internal auth.InternalAuth) map[string]string {
	return map[string]string{
		EnvAccessToken: internal.AccessToken,
		EnvURIPrefixes: strings.Join(internal.URLPrefixes, ";"),
	}
}

// LegacyEnv returns the environment of the legacy push tool.
func LegacyEnv(info auth.ExtendedAuthInfo, settings auth.EnvironmentSettings) (map[string]string, error) {
	env := ManagedEnv(info.Internal)

	if settings.CredentialProviderFolder != "" {
		env[EnvCredentialProviders] = settings.CredentialProviderFolder
	}
	if settings.CredentialProviderPathV2 != "" {
		env[EnvPluginPaths] = settings.CredentialProviderPathV2
	}
	if settings.ExtensionsDisabled {
		env[EnvExtensionsPath] = ""
	}

	if settings.CredentialProviderPathV2 == "" {
		return env, nil
	}

	var creds endpointCredentials
	for _, ext := range info.External {
		switch ext.Kind {
		case auth.UsernamePassword:
			if ext.Source.Credentials == nil {
				continue
			}
			creds.Endpoints = append(creds.Endpoints, endpointCredential{
				Endpoint: ext.Source.FeedURI,
				Username: ext.Source.Credentials.Username,
				Password: ext.Source.Credentials.Password,
			})
		case auth.Token:
			creds.Endpoints = append(creds.Endpoints, endpointCredential{
				Endpoint: ext.Source.FeedURI,
				Username: tokenEndpointUser,
				Password: ext.Token,
			})
		}
	}
	if len(creds.Endpoints) == 0 {
		return env, nil
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return nil, err
	}
	env[EnvExternalFeedEndpoints] = string(data)
	return env, nil
}
