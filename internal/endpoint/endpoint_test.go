// SPDX-License-Identifier: MPL-2.0

package endpoint

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/nupush/nupush/internal/auth"
)

func mapSecrets(m map[string]string) SecretSource {
	return func(service, user string) (string, error) {
		if service != KeyringService {
			return "", keyring.ErrNotFound
		}
		if v, ok := m[user]; ok {
			return v, nil
		}
		return "", keyring.ErrNotFound
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	defs := map[string]Definition{
		"nugetorg": {URL: "https://api.nuget.org/v3/index.json", Auth: "apikey", APIKey: "key"},
		"myget":    {URL: "https://myget/F/feed/api/v3/index.json", Auth: "username_password", Username: "bob", Password: "pw"},
		"gh":       {URL: "https://nuget.pkg.github.com/o/index.json", Auth: "token", Keyring: true},
	}
	store := NewStore(defs, WithSecretSource(mapSecrets(map[string]string{"gh": "ghp_x"})))

	got, err := store.Lookup("gh", "unknown", "", "NuGetOrg", "myget")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Lookup() returned %d entries, want 3", len(got))
	}

	if got[0].Kind != auth.Token || got[0].Token != "ghp_x" || got[0].Source.Name != "gh" {
		t.Errorf("token entry = %+v", got[0])
	}
	if got[1].Kind != auth.APIKey || got[1].APIKey != "key" || got[1].Source.FeedURI != defs["nugetorg"].URL {
		t.Errorf("api key entry = %+v", got[1])
	}
	if got[2].Kind != auth.UsernamePassword || got[2].Source.Credentials == nil || got[2].Source.Credentials.Password != "pw" {
		t.Errorf("username/password entry = %+v", got[2])
	}
}

func TestLookupUnknownOnly(t *testing.T) {
	t.Parallel()

	got, err := NewStore(nil).Lookup("missing")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Lookup() = %+v, want empty", got)
	}
}

func TestLookupErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		def     Definition
		wantErr error
	}{
		{"missing url", Definition{Auth: "apikey", APIKey: "k"}, ErrInvalidEndpoint},
		{"unknown auth", Definition{URL: "https://x", Auth: "kerberos"}, auth.ErrUnknownAuthType},
		{"missing username", Definition{URL: "https://x", Auth: "username_password", Password: "pw"}, ErrInvalidEndpoint},
		{"missing secret", Definition{URL: "https://x", Auth: "token"}, ErrMissingSecret},
		{"missing keyring entry", Definition{URL: "https://x", Auth: "apikey", Keyring: true}, ErrMissingSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := NewStore(map[string]Definition{"ep": tt.def}, WithSecretSource(mapSecrets(nil)))
			_, err := store.Lookup("ep")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Lookup() error = %v, want %v", err, tt.wantErr)
			}
			var epErr *EndpointError
			if !errors.As(err, &epErr) || epErr.Name != "ep" {
				t.Errorf("error %v does not name the endpoint", err)
			}
		})
	}
}

func TestLookupKeyringBackend(t *testing.T) {
	keyring.MockInit()

	if err := keyring.Set(KeyringService, "feed", "s3cret"); err != nil {
		t.Fatalf("keyring.Set() error = %v", err)
	}

	store := NewStore(map[string]Definition{
		"feed": {URL: "https://feed", Auth: "username_password", Username: "u", Keyring: true},
	})
	got, err := store.Lookup("feed")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got[0].Source.Credentials.Password != "s3cret" {
		t.Errorf("password = %q, want s3cret", got[0].Source.Credentials.Password)
	}
}
