// SPDX-License-Identifier: MPL-2.0

package auth

import "slices"

const (
	// InternalAPIKeyPlaceholder is the API key passed for internal feeds; the
	// service authenticates the push with the access token instead.
	InternalAPIKeyPlaceholder = "VSTS"
	// RequiredAPIKeyPlaceholder is passed when credentials come from the config file.
	RequiredAPIKeyPlaceholder = "RequiredApiKey"
)

type (
	// CapabilityProbe reports the push tool's credential capabilities.
	// Each method may emit a diagnostic, so Resolve calls all of them.
	CapabilityProbe interface {
		CredentialProviderEnabled() bool
		CredentialProviderV2Enabled() bool
		CredentialConfigEnabled() bool
		// CredentialProviderPath returns the provider location for the given generation.
		CredentialProviderPath(v2 bool) string
	}

	// Request is the input to Resolve.
	Request struct {
		// FeedType is the raw feed-type input.
		FeedType string
		// AccessToken is the ambient service token.
		AccessToken string
		// URLPrefixes are the service URI prefixes the token is valid for.
		URLPrefixes []string
		// External are the externally supplied endpoint entries, in order.
		External []ExternalAuth
		// Probe reports the push tool's capabilities.
		Probe CapabilityProbe
	}

	// Resolution is the result of Resolve.
	Resolution struct {
		FeedType            FeedType
		Auth                ExtendedAuthInfo
		Environment         EnvironmentSettings
		UseCredentialConfig bool
	}
)

// Resolve computes the authentication descriptor for one push run.
//
// Embedded credentials are used only when the tool supports credential
// config and neither credential-provider generation is available.
func Resolve(req Request) (*Resolution, error) {
	feedType, err := ParseFeedType(req.FeedType)
	if err != nil {
		return nil, err
	}

	// Evaluated one by one so every probe logs its decision.
	useV1Provider := req.Probe.CredentialProviderEnabled()
	useV2Provider := req.Probe.CredentialProviderV2Enabled()
	providerPath := req.Probe.CredentialProviderPath(useV2Provider)
	configSupported := req.Probe.CredentialConfigEnabled()
	useCredConfig := configSupported && !useV1Provider && !useV2Provider

	internal := InternalAuth{
		URLPrefixes:            slices.Clone(req.URLPrefixes),
		AccessToken:            req.AccessToken,
		UseEmbeddedCredentials: useCredConfig,
	}
	if useV1Provider || useV2Provider {
		internal.CredentialProviderPath = providerPath
	}

	env := EnvironmentSettings{ExtensionsDisabled: true}
	if useV2Provider {
		env.CredentialProviderPathV2 = providerPath
	} else {
		env.CredentialProviderFolder = providerPath
	}

	res := &Resolution{
		FeedType:            feedType,
		Auth:                ExtendedAuthInfo{Internal: internal},
		Environment:         env,
		UseCredentialConfig: useCredConfig,
	}

	if feedType.IsInternal() {
		return res, nil
	}

	if len(req.External) == 0 {
		return nil, ErrNoPushSource
	}
	res.Auth.External = []ExternalAuth{req.External[0]}
	return res, nil
}
