// SPDX-License-Identifier: MPL-2.0

package endpoint

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/zalando/go-keyring"

	"github.com/nupush/nupush/internal/auth"
)

// KeyringService is the keyring service name secrets are stored under.
const KeyringService = "nupush"

var (
	// ErrInvalidEndpoint is returned for an endpoint definition that cannot be used.
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	// ErrMissingSecret is returned when an endpoint's secret cannot be found.
	ErrMissingSecret = errors.New("endpoint secret not found")
)

type (
	// Definition is one configured external endpoint.
	Definition struct {
		URL      string `mapstructure:"url" toml:"url"`
		Auth     string `mapstructure:"auth" toml:"auth"`
		Username string `mapstructure:"username" toml:"username,omitempty"`
		Password string `mapstructure:"password" toml:"password,omitempty"`
		Token    string `mapstructure:"token" toml:"token,omitempty"`
		APIKey   string `mapstructure:"api_key" toml:"api_key,omitempty"`
		// Keyring reads the secret from the OS keyring when it is not configured.
		Keyring bool `mapstructure:"keyring" toml:"keyring,omitempty"`
	}

	// SecretSource returns the secret stored for user under service.
	SecretSource func(service, user string) (string, error)

	// Store resolves endpoint names.
	Store struct {
		defs    map[string]Definition
		secrets SecretSource
		logger  *log.Logger
	}

	// Option configures a Store.
	Option func(*Store)

	// EndpointError names the endpoint that failed to resolve.
	EndpointError struct {
		Name string
		Err  error
	}
)

// WithSecretSource overrides the keyring lookup.
func WithSecretSource(fn SecretSource) Option {
	return func(s *Store) { s.secrets = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates a Store over the configured definitions.
func NewStore(defs map[string]Definition, opts ...Option) *Store {
	s := &Store{
		defs:    defs,
		secrets: keyring.Get,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Error implements the error interface.
func (e *EndpointError) Error() string {
	return fmt.Sprintf("endpoint %q: %v", e.Name, e.Err)
}

// Unwrap returns the underlying error.
func (e *EndpointError) Unwrap() error { return e.Err }

// Lookup resolves the named endpoints in order. Empty and unknown names are
// skipped with a warning, so the result may be empty.
func (s *Store) Lookup(names ...string) ([]auth.ExternalAuth, error) {
	var out []auth.ExternalAuth
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		def, ok := s.find(name)
		if !ok {
			s.logger.Warn("Unknown external endpoint, skipping it", "endpoint", name)
			continue
		}
		ext, err := s.resolve(name, def)
		if err != nil {
			return nil, &EndpointError{Name: name, Err: err}
		}
		out = append(out, ext)
	}
	return out, nil
}

// find looks name up exactly, then case-insensitively.
func (s *Store) find(name string) (Definition, bool) {
	if def, ok := s.defs[name]; ok {
		return def, true
	}
	for key, def := range s.defs {
		if strings.EqualFold(key, name) {
			return def, true
		}
	}
	return Definition{}, false
}

func (s *Store) resolve(name string, def Definition) (auth.ExternalAuth, error) {
	if def.URL == "" {
		return auth.ExternalAuth{}, fmt.Errorf("%w: url is required", ErrInvalidEndpoint)
	}
	kind, err := auth.ParseExternalAuthType(def.Auth)
	if err != nil {
		return auth.ExternalAuth{}, fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}

	ext := auth.ExternalAuth{
		Kind:   kind,
		Source: auth.PackageSource{Name: name, FeedURI: def.URL},
	}

	switch kind {
	case auth.UsernamePassword:
		if def.Username == "" {
			return auth.ExternalAuth{}, fmt.Errorf("%w: username is required", ErrInvalidEndpoint)
		}
		password, err := s.secret(name, def, def.Password)
		if err != nil {
			return auth.ExternalAuth{}, err
		}
		ext.Source.Credentials = &auth.Credentials{Username: def.Username, Password: password}
	case auth.Token:
		token, err := s.secret(name, def, def.Token)
		if err != nil {
			return auth.ExternalAuth{}, err
		}
		ext.Token = token
	case auth.APIKey:
		key, err := s.secret(name, def, def.APIKey)
		if err != nil {
			return auth.ExternalAuth{}, err
		}
		ext.APIKey = key
	}
	return ext, nil
}

// secret returns the configured value or, when enabled, the keyring entry.
func (s *Store) secret(name string, def Definition, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if !def.Keyring {
		return "", fmt.Errorf("%w: no %s secret configured", ErrMissingSecret, def.Auth)
	}

	value, err := s.secrets(KeyringService, name)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%w: no keyring entry for %s/%s", ErrMissingSecret, KeyringService, name)
	}
	if err != nil {
		return "", fmt.Errorf("read keyring entry %s/%s: %w", KeyringService, name, err)
	}
	s.logger.Debug("Read endpoint secret from keyring", "endpoint", name)
	return value, nil
}
