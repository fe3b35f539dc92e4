// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"errors"
	"fmt"
	"strings"
)

// Feed type constants.
const (
	FeedInternal FeedType = "internal"
	FeedExternal FeedType = "external"
)

// External authentication kinds.
const (
	UsernamePassword ExternalAuthType = "username_password"
	Token            ExternalAuthType = "token"
	APIKey           ExternalAuthType = "apikey"
)

var (
	// ErrUnknownFeedType is the sentinel error wrapped by UnknownFeedTypeError.
	ErrUnknownFeedType = errors.New("unknown feed type")
	// ErrUnknownAuthType is the sentinel error wrapped by UnknownAuthTypeError.
	ErrUnknownAuthType = errors.New("unknown external auth type")
	// ErrNoPushSource is returned when an external push has no source to push to.
	ErrNoPushSource = errors.New("no source specified for push")
)

type (
	// FeedType says whether the target feed is hosted by this service instance.
	FeedType string

	// UnknownFeedTypeError is returned when a feed type is neither internal nor external.
	UnknownFeedTypeError struct {
		Value string
	}

	// ExternalAuthType is the credential scheme of an external endpoint.
	ExternalAuthType string

	// UnknownAuthTypeError is returned when an endpoint names an unsupported scheme.
	UnknownAuthTypeError struct {
		Value string
	}

	// Credentials is a username/password pair stored for a package source.
	Credentials struct {
		Username string
		Password string
	}

	// PackageSource is one feed endpoint to authenticate against.
	PackageSource struct {
		Name        string
		FeedURI     string
		IsInternal  bool
		Credentials *Credentials
	}

	// InternalAuth authenticates against feeds of the current service instance.
	InternalAuth struct {
		// URLPrefixes are the URI prefixes the ambient token is valid for.
		URLPrefixes []string
		// AccessToken is the ambient service token.
		AccessToken string
		// CredentialProviderPath is set when a credential provider plugin is in use.
		CredentialProviderPath string
		// UseEmbeddedCredentials selects writing the token into the temporary config.
		UseEmbeddedCredentials bool
	}

	// ExternalAuth authenticates against one feed outside the service instance.
	ExternalAuth struct {
		Kind   ExternalAuthType
		Source PackageSource
		// APIKey is only set for Kind == APIKey.
		APIKey string
		// Token is only set for Kind == Token.
		Token string
	}

	// ExtendedAuthInfo combines the internal auth with zero or more external entries.
	// Only the first external entry participates in a push.
	ExtendedAuthInfo struct {
		Internal InternalAuth
		External []ExternalAuth
	}

	// EnvironmentSettings describe the credential-provider environment of the
	// push tool process. At most one of the two provider paths is set.
	EnvironmentSettings struct {
		CredentialProviderFolder string
		CredentialProviderPathV2 string
		ExtensionsDisabled       bool
	}
)

// ParseFeedType parses s case-insensitively. An empty value means internal.
func ParseFeedType(s string) (FeedType, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return FeedInternal, nil
	}
	for _, known := range []FeedType{FeedInternal, FeedExternal} {
		if strings.EqualFold(trimmed, string(known)) {
			return known, nil
		}
	}
	return "", &UnknownFeedTypeError{Value: s}
}

// IsInternal reports whether t is the internal feed type.
func (t FeedType) IsInternal() bool { return t == FeedInternal }

// Error implements the error interface.
func (e *UnknownFeedTypeError) Error() string {
	return fmt.Sprintf("unknown feed type %q (expected internal or external)", e.Value)
}

// Unwrap returns ErrUnknownFeedType for errors.Is() compatibility.
func (e *UnknownFeedTypeError) Unwrap() error { return ErrUnknownFeedType }

// ParseExternalAuthType parses an endpoint auth scheme.
func ParseExternalAuthType(s string) (ExternalAuthType, error) {
	switch ExternalAuthType(strings.ToLower(strings.TrimSpace(s))) {
	case UsernamePassword, "usernamepassword", "basic":
		return UsernamePassword, nil
	case Token:
		return Token, nil
	case APIKey, "api_key":
		return APIKey, nil
	default:
		return "", &UnknownAuthTypeError{Value: s}
	}
}

// Error implements the error interface.
func (e *UnknownAuthTypeError) Error() string {
	return fmt.Sprintf("unknown external auth type %q (expected username_password, token or apikey)", e.Value)
}

// Unwrap returns ErrUnknownAuthType for errors.Is() compatibility.
func (e *UnknownAuthTypeError) Unwrap() error { return ErrUnknownAuthType }

// PrimaryExternal returns the external entry that participates in a push.
func (a ExtendedAuthInfo) PrimaryExternal() (ExternalAuth, bool) {
	if len(a.External) == 0 {
		return ExternalAuth{}, false
	}
	return a.External[0], true
}

// ExternalFor returns the external entry whose source has the given feed URI.
func (a ExtendedAuthInfo) ExternalFor(feedURI string) (ExternalAuth, bool) {
	for _, ext := range a.External {
		if ext.Source.FeedURI == feedURI {
			return ext, true
		}
	}
	return ExternalAuth{}, false
}

// PushAPIKey returns the API key the legacy tool is given for this entry.
// Credential-based schemes need a placeholder key because the tool refuses
// to push without one.
func (e ExternalAuth) PushAPIKey() string {
	switch e.Kind {
	case UsernamePassword, Token:
		return RequiredAPIKeyPlaceholder
	case APIKey:
		return e.APIKey
	default:
		return ""
	}
}
