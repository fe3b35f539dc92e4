// SPDX-License-Identifier: MPL-2.0

package nugetconfig

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/nupush/nupush/internal/auth"
)

const (
	configDirName = "NuGet"

	// internalTokenUser is the user name paired with the access token for internal feeds.
	internalTokenUser = "VssSessionToken"
	// customTokenUser is the user name paired with a token for external feeds.
	customTokenUser = "CustomToken"
)

// ErrConfigIO is returned when the temporary config cannot be written or removed.
var ErrConfigIO = errors.New("temporary config I/O failed")

type (
	// Builder creates temporary config files.
	Builder struct {
		fs      afero.Fs
		tempDir string
		newID   func() string
		logger  *log.Logger
	}

	// Request describes the sources to register and the credentials to embed.
	Request struct {
		Auth    auth.ExtendedAuthInfo
		Sources []auth.PackageSource
	}

	// Config is a written temporary config file.
	Config struct {
		fs      afero.Fs
		path    string
		sources []auth.PackageSource

		once       sync.Once
		cleanupErr error
	}

	// BuilderOption configures a Builder.
	BuilderOption func(*Builder)
)

// WithIDGenerator overrides the file name suffix generator.
func WithIDGenerator(fn func() string) BuilderOption {
	return func(b *Builder) { b.newID = fn }
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) BuilderOption {
	return func(b *Builder) { b.logger = logger }
}

// NewBuilder creates a Builder that writes below tempDir on fs.
func NewBuilder(fs afero.Fs, tempDir string, opts ...BuilderOption) *Builder {
	b := &Builder{
		fs:      fs,
		tempDir: tempDir,
		newID:   func() string { return uuid.NewString() },
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build writes a config registering req.Sources and then embeds credentials
// for each of them. On failure nothing is left on disk.
func (b *Builder) Build(req Request) (*Config, error) {
	dir := filepath.Join(b.tempDir, configDirName)
	if err := b.fs.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: create %s: %w", ErrConfigIO, dir, err)
	}

	cfg := &Config{
		fs:      b.fs,
		path:    filepath.Join(dir, "tempNuGet_"+b.newID()+".config"),
		sources: req.Sources,
	}

	if err := cfg.writeSources(); err != nil {
		_ = cfg.Cleanup()
		return nil, err
	}
	b.logger.Debug("Wrote temporary NuGet config", "path", cfg.path, "sources", len(req.Sources))

	if err := cfg.authenticate(req.Auth, b.logger); err != nil {
		_ = cfg.Cleanup()
		return nil, err
	}
	return cfg, nil
}

// Path returns the file path, or "" for a nil Config.
func (c *Config) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Cleanup removes the file. Only the first call does any work; later calls
// return the first result.
func (c *Config) Cleanup() error {
	if c == nil {
		return nil
	}
	c.once.Do(func() {
		if err := c.fs.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			c.cleanupErr = fmt.Errorf("%w: remove %s: %w", ErrConfigIO, c.path, err)
		}
	})
	return c.cleanupErr
}

func (c *Config) writeSources() error {
	doc := &document{}
	for _, src := range c.sources {
		doc.PackageSources.Adds = append(doc.PackageSources.Adds, addEntry{Key: src.Name, Value: src.FeedURI})
	}
	return c.write(doc)
}

// authenticate reads the written file back and adds one credential block per
// source that needs embedded credentials.
func (c *Config) authenticate(info auth.ExtendedAuthInfo, logger *log.Logger) error {
	data, err := afero.ReadFile(c.fs, c.path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", ErrConfigIO, c.path, err)
	}
	doc := &document{}
	if err := xml.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("%w: parse %s: %w", ErrConfigIO, c.path, err)
	}

	for _, src := range c.sources {
		user, password, ok := credentialsFor(src, info)
		if !ok {
			logger.Debug("No embedded credentials for source", "source", src.Name)
			continue
		}
		logger.Debug("Embedding credentials for source", "source", src.Name, "user", user)
		doc.setCredentials(src.Name, user, password)
	}
	return c.write(doc)
}

func (c *Config) write(doc *document) error {
	data, err := doc.marshal()
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrConfigIO, c.path, err)
	}
	if err := afero.WriteFile(c.fs, c.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrConfigIO, c.path, err)
	}
	return nil
}

// credentialsFor returns the user/password pair to embed for src.
func credentialsFor(src auth.PackageSource, info auth.ExtendedAuthInfo) (user, password string, ok bool) {
	if src.IsInternal {
		if !info.Internal.UseEmbeddedCredentials {
			return "", "", false
		}
		return internalTokenUser, info.Internal.AccessToken, true
	}

	ext, found := info.ExternalFor(src.FeedURI)
	if !found {
		if src.Credentials != nil {
			return src.Credentials.Username, src.Credentials.Password, true
		}
		return "", "", false
	}

	switch ext.Kind {
	case auth.UsernamePassword:
		creds := ext.Source.Credentials
		if creds == nil {
			creds = src.Credentials
		}
		if creds == nil {
			return "", "", false
		}
		return creds.Username, creds.Password, true
	case auth.Token:
		return customTokenUser, ext.Token, true
	default:
		return "", "", false
	}
}
