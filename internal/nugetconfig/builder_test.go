// SPDX-License-Identifier: MPL-2.0

package nugetconfig

import (
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"

	"github.com/nupush/nupush/internal/auth"
)

const testTempDir = "/agent/_temp"

func fixedID() string { return "0000" }

func readDoc(t *testing.T, fs afero.Fs, path string) *document {
	t.Helper()

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("ReadFile(%s) error = %v", path, err)
	}
	doc := &document{}
	if err := xml.Unmarshal(data, doc); err != nil {
		t.Fatalf("Unmarshal() error = %v\n%s", err, data)
	}
	return doc
}

func credentialMap(doc *document) map[string]map[string]string {
	out := map[string]map[string]string{}
	if doc.Credentials == nil {
		return out
	}
	for _, src := range doc.Credentials.Sources {
		kv := map[string]string{}
		for _, add := range src.Adds {
			kv[add.Key] = add.Value
		}
		out[src.XMLName.Local] = kv
	}
	return out
}

func TestBuildInternalEmbeddedCredentials(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	b := NewBuilder(fs, testTempDir, WithIDGenerator(fixedID))

	cfg, err := b.Build(Request{
		Auth: auth.ExtendedAuthInfo{Internal: auth.InternalAuth{AccessToken: "tok", UseEmbeddedCredentials: true}},
		Sources: []auth.PackageSource{
			{Name: "my feed", FeedURI: "https://pkgs/_packaging/my feed/nuget/v3/index.json", IsInternal: true},
		},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	wantPath := filepath.Join(testTempDir, "NuGet", "tempNuGet_0000.config")
	if cfg.Path() != wantPath {
		t.Errorf("Path() = %q, want %q", cfg.Path(), wantPath)
	}

	info, err := fs.Stat(cfg.Path())
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("file mode = %v, want 0600", perm)
	}

	doc := readDoc(t, fs, cfg.Path())
	if len(doc.PackageSources.Adds) != 1 || doc.PackageSources.Adds[0].Key != "my feed" {
		t.Errorf("packageSources = %+v", doc.PackageSources.Adds)
	}
	creds := credentialMap(doc)
	got := creds["my_x0020_feed"]
	if got[keyUsername] != "VssSessionToken" || got[keyClearTextPassword] != "tok" {
		t.Errorf("credentials = %v", creds)
	}

	if err := cfg.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if _, err := fs.Stat(cfg.Path()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("file still exists after Cleanup(): %v", err)
	}
	if err := cfg.Cleanup(); err != nil {
		t.Errorf("second Cleanup() error = %v", err)
	}
}

func TestBuildInternalWithoutEmbeddedCredentials(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg, err := NewBuilder(fs, testTempDir).Build(Request{
		Auth:    auth.ExtendedAuthInfo{Internal: auth.InternalAuth{AccessToken: "tok"}},
		Sources: []auth.PackageSource{{Name: "feed", FeedURI: "https://pkgs/feed", IsInternal: true}},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	defer func() { _ = cfg.Cleanup() }()

	if creds := credentialMap(readDoc(t, fs, cfg.Path())); len(creds) != 0 {
		t.Errorf("credentials = %v, want none", creds)
	}
}

func TestBuildExternalSources(t *testing.T) {
	t.Parallel()

	source := auth.PackageSource{Name: "ext", FeedURI: "https://ext/v3/index.json"}

	tests := []struct {
		name     string
		ext      auth.ExternalAuth
		wantUser string
		wantPass string
		wantNone bool
	}{
		{
			name: "username password",
			ext: auth.ExternalAuth{
				Kind: auth.UsernamePassword,
				Source: auth.PackageSource{
					Name: "ext", FeedURI: source.FeedURI,
					Credentials: &auth.Credentials{Username: "alice", Password: "pw"},
				},
			},
			wantUser: "alice",
			wantPass: "pw",
		},
		{
			name:     "token",
			ext:      auth.ExternalAuth{Kind: auth.Token, Token: "secret", Source: source},
			wantUser: "CustomToken",
			wantPass: "secret",
		},
		{
			name:     "api key",
			ext:      auth.ExternalAuth{Kind: auth.APIKey, APIKey: "k", Source: source},
			wantNone: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			cfg, err := NewBuilder(fs, testTempDir).Build(Request{
				Auth:    auth.ExtendedAuthInfo{External: []auth.ExternalAuth{tt.ext}},
				Sources: []auth.PackageSource{tt.ext.Source},
			})
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			defer func() { _ = cfg.Cleanup() }()

			creds := credentialMap(readDoc(t, fs, cfg.Path()))
			if tt.wantNone {
				if len(creds) != 0 {
					t.Errorf("credentials = %v, want none", creds)
				}
				return
			}
			got := creds["ext"]
			if got[keyUsername] != tt.wantUser || got[keyClearTextPassword] != tt.wantPass {
				t.Errorf("credentials = %v, want %s/%s", got, tt.wantUser, tt.wantPass)
			}
		})
	}
}

func TestBuildUniquePaths(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	b := NewBuilder(fs, testTempDir)
	req := Request{Sources: []auth.PackageSource{{Name: "a", FeedURI: "https://a"}}}

	first, err := b.Build(req)
	if err != nil {
		t.Fatal(err)
	}
	second, err := b.Build(req)
	if err != nil {
		t.Fatal(err)
	}
	if first.Path() == second.Path() {
		t.Errorf("two builds share path %q", first.Path())
	}
	if !strings.HasPrefix(filepath.Base(first.Path()), "tempNuGet_") {
		t.Errorf("unexpected file name %q", first.Path())
	}
}

// failingWriteFs fails the nth file opened for writing.
type failingWriteFs struct {
	afero.Fs
	failOn int32
	writes atomic.Int32
}

func (f *failingWriteFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&(os.O_WRONLY|os.O_RDWR) != 0 && f.writes.Add(1) == f.failOn {
		return nil, errors.New("disk full")
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func TestBuildFailures(t *testing.T) {
	t.Parallel()

	req := Request{
		Auth:    auth.ExtendedAuthInfo{Internal: auth.InternalAuth{AccessToken: "tok", UseEmbeddedCredentials: true}},
		Sources: []auth.PackageSource{{Name: "feed", FeedURI: "https://feed", IsInternal: true}},
	}

	t.Run("read-only filesystem", func(t *testing.T) {
		t.Parallel()

		fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
		cfg, err := NewBuilder(fs, testTempDir).Build(req)
		if !errors.Is(err, ErrConfigIO) {
			t.Fatalf("Build() error = %v, want ErrConfigIO", err)
		}
		if cfg != nil {
			t.Errorf("Build() returned config %v on error", cfg)
		}
	})

	for _, failOn := range []int32{1, 2} {
		t.Run("write failure", func(t *testing.T) {
			t.Parallel()

			mem := afero.NewMemMapFs()
			fs := &failingWriteFs{Fs: mem, failOn: failOn}
			_, err := NewBuilder(fs, testTempDir, WithIDGenerator(fixedID)).Build(req)
			if !errors.Is(err, ErrConfigIO) {
				t.Fatalf("Build() error = %v, want ErrConfigIO", err)
			}
			path := filepath.Join(testTempDir, "NuGet", "tempNuGet_0000.config")
			if _, err := mem.Stat(path); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("partial file left behind after failure on write %d: %v", failOn, err)
			}
		})
	}
}

func TestNilConfig(t *testing.T) {
	t.Parallel()

	var cfg *Config
	if cfg.Path() != "" {
		t.Error("nil Config must report no path")
	}
	if err := cfg.Cleanup(); err != nil {
		t.Errorf("nil Cleanup() error = %v", err)
	}
}
