// SPDX-License-Identifier: MPL-2.0

package auth

import (
	"errors"
	"slices"
	"testing"
)

// fakeProbe records every capability check it answers.
type fakeProbe struct {
	v1, v2, config bool
	v1Path, v2Path string
	calls          []string
}

func (p *fakeProbe) CredentialProviderEnabled() bool {
	p.calls = append(p.calls, "v1")
	return p.v1
}

func (p *fakeProbe) CredentialProviderV2Enabled() bool {
	p.calls = append(p.calls, "v2")
	return p.v2
}

func (p *fakeProbe) CredentialConfigEnabled() bool {
	p.calls = append(p.calls, "config")
	return p.config
}

func (p *fakeProbe) CredentialProviderPath(v2 bool) string {
	if v2 {
		return p.v2Path
	}
	return p.v1Path
}

func externalEntry(name string) ExternalAuth {
	return ExternalAuth{
		Kind: UsernamePassword,
		Source: PackageSource{
			Name:        name,
			FeedURI:     "https://example.com/" + name + "/index.json",
			Credentials: &Credentials{Username: "u", Password: "p"},
		},
	}
}

func TestParseFeedType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    FeedType
		wantErr bool
	}{
		{in: "internal", want: FeedInternal},
		{in: "INTERNAL", want: FeedInternal},
		{in: "External", want: FeedExternal},
		{in: "", want: FeedInternal},
		{in: "  external ", want: FeedExternal},
		{in: "nuget.org", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseFeedType(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFeedType) {
					t.Fatalf("ParseFeedType(%q) error = %v, want ErrUnknownFeedType", tt.in, err)
				}
				var typed *UnknownFeedTypeError
				if !errors.As(err, &typed) || typed.Value != tt.in {
					t.Errorf("error value = %v, want %q", typed, tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFeedType(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFeedType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseExternalAuthType(t *testing.T) {
	t.Parallel()

	tests := map[string]ExternalAuthType{
		"username_password": UsernamePassword,
		"UsernamePassword":  UsernamePassword,
		"token":             Token,
		"ApiKey":            APIKey,
		"api_key":           APIKey,
	}
	for in, want := range tests {
		got, err := ParseExternalAuthType(in)
		if err != nil || got != want {
			t.Errorf("ParseExternalAuthType(%q) = %q, %v; want %q", in, got, err, want)
		}
	}

	if _, err := ParseExternalAuthType("oauth"); !errors.Is(err, ErrUnknownAuthType) {
		t.Errorf("ParseExternalAuthType(oauth) error = %v, want ErrUnknownAuthType", err)
	}
}

func TestResolveEvaluatesEveryProbe(t *testing.T) {
	t.Parallel()

	// Even when the v1 provider is enabled, which alone decides the outcome,
	// the remaining probes still run.
	probe := &fakeProbe{v1: true, v2: true, config: true}
	if _, err := Resolve(Request{FeedType: "internal", Probe: probe}); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := []string{"v1", "v2", "config"}
	if !slices.Equal(probe.calls, want) {
		t.Errorf("probe calls = %v, want %v", probe.calls, want)
	}
}

func TestResolveCredentialConfigMatrix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		v1, v2, cfg  bool
		wantCredCfg  bool
		wantProvider string
		wantV1Folder string
		wantV2Path   string
	}{
		{name: "no providers, config supported", cfg: true, wantCredCfg: true, wantV1Folder: "/cp/v1"},
		{name: "no providers, config unsupported", wantV1Folder: "/cp/v1"},
		{name: "v1 provider", v1: true, cfg: true, wantProvider: "/cp/v1", wantV1Folder: "/cp/v1"},
		{name: "v2 provider", v2: true, cfg: true, wantProvider: "/cp/v2", wantV2Path: "/cp/v2"},
		{name: "both providers", v1: true, v2: true, cfg: true, wantProvider: "/cp/v2", wantV2Path: "/cp/v2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			probe := &fakeProbe{v1: tt.v1, v2: tt.v2, config: tt.cfg, v1Path: "/cp/v1", v2Path: "/cp/v2"}
			res, err := Resolve(Request{
				FeedType:    "internal",
				AccessToken: "tok",
				URLPrefixes: []string{"https://dev.example.com/org/"},
				Probe:       probe,
			})
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}

			if res.UseCredentialConfig != tt.wantCredCfg {
				t.Errorf("UseCredentialConfig = %v, want %v", res.UseCredentialConfig, tt.wantCredCfg)
			}
			if res.Auth.Internal.UseEmbeddedCredentials != tt.wantCredCfg {
				t.Errorf("UseEmbeddedCredentials = %v, want %v", res.Auth.Internal.UseEmbeddedCredentials, tt.wantCredCfg)
			}
			if res.Auth.Internal.CredentialProviderPath != tt.wantProvider {
				t.Errorf("CredentialProviderPath = %q, want %q", res.Auth.Internal.CredentialProviderPath, tt.wantProvider)
			}
			env := res.Environment
			if env.CredentialProviderFolder != tt.wantV1Folder || env.CredentialProviderPathV2 != tt.wantV2Path {
				t.Errorf("Environment = %+v, want folder %q, v2 %q", env, tt.wantV1Folder, tt.wantV2Path)
			}
			if env.CredentialProviderFolder != "" && env.CredentialProviderPathV2 != "" {
				t.Error("both credential provider paths are populated")
			}
			if !env.ExtensionsDisabled {
				t.Error("ExtensionsDisabled = false, want true")
			}
		})
	}
}

func TestResolveInternalFeed(t *testing.T) {
	t.Parallel()

	res, err := Resolve(Request{
		FeedType:    "Internal",
		AccessToken: "tok",
		URLPrefixes: []string{"https://a/", "https://b/"},
		External:    []ExternalAuth{externalEntry("ignored")},
		Probe:       &fakeProbe{config: true},
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.FeedType != FeedInternal {
		t.Errorf("FeedType = %q", res.FeedType)
	}
	if len(res.Auth.External) != 0 {
		t.Errorf("internal feed carries %d external entries, want 0", len(res.Auth.External))
	}
	if res.Auth.Internal.AccessToken != "tok" || len(res.Auth.Internal.URLPrefixes) != 2 {
		t.Errorf("Internal = %+v", res.Auth.Internal)
	}
}

func TestResolveExternalFeed(t *testing.T) {
	t.Parallel()

	first, second := externalEntry("first"), externalEntry("second")
	res, err := Resolve(Request{
		FeedType: "external",
		External: []ExternalAuth{first, second},
		Probe:    &fakeProbe{},
	})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(res.Auth.External) != 1 {
		t.Fatalf("External entries = %d, want 1", len(res.Auth.External))
	}
	primary, ok := res.Auth.PrimaryExternal()
	if !ok || primary.Source.Name != "first" {
		t.Errorf("PrimaryExternal() = %+v, %v", primary, ok)
	}
	if _, ok := res.Auth.ExternalFor(second.Source.FeedURI); ok {
		t.Error("ExternalFor() found an entry that should not participate")
	}
}

func TestResolveErrors(t *testing.T) {
	t.Parallel()

	if _, err := Resolve(Request{FeedType: "external", Probe: &fakeProbe{}}); !errors.Is(err, ErrNoPushSource) {
		t.Errorf("external without source error = %v, want ErrNoPushSource", err)
	}

	probe := &fakeProbe{}
	if _, err := Resolve(Request{FeedType: "bogus", Probe: probe}); !errors.Is(err, ErrUnknownFeedType) {
		t.Errorf("bogus feed type error = %v, want ErrUnknownFeedType", err)
	}
	if len(probe.calls) != 0 {
		t.Errorf("probes ran for an invalid feed type: %v", probe.calls)
	}
}

func TestPushAPIKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		auth ExternalAuth
		want string
	}{
		{ExternalAuth{Kind: UsernamePassword}, RequiredAPIKeyPlaceholder},
		{ExternalAuth{Kind: Token}, RequiredAPIKeyPlaceholder},
		{ExternalAuth{Kind: APIKey, APIKey: "k-123"}, "k-123"},
		{ExternalAuth{}, ""},
	}
	for _, tt := range tests {
		if got := tt.auth.PushAPIKey(); got != tt.want {
			t.Errorf("PushAPIKey(%q) = %q, want %q", tt.auth.Kind, got, tt.want)
		}
	}
}
