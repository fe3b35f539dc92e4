// SPDX-License-Identifier: MPL-2.0

package pushtool

import (
	"errors"
	"testing"
)

func TestParseVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "4.9.1", want: "4.9.1"},
		{in: "3.5.0.1938", want: "3.5.0.1938"},
		{in: " 5.11 ", want: "5.11"},
		{in: "6", wantErr: true},
		{in: "1.2.3.4.5", wantErr: true},
		{in: "a.b.c", wantErr: true},
		{in: "3.5.0.rc1", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			v, err := ParseVersion(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidVersion) {
					t.Fatalf("ParseVersion(%q) error = %v, want ErrInvalidVersion", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseVersion(%q) error = %v", tt.in, err)
			}
			if v.String() != tt.want {
				t.Errorf("String() = %q, want %q", v.String(), tt.want)
			}
		})
	}
}

func TestVersionCompare(t *testing.T) {
	t.Parallel()

	v := MustParseVersion("3.5.0.1938")
	if !v.AtLeast("3.5.0") || v.Before("3.5.0") {
		t.Error("revision must not affect comparison")
	}
	if !v.Before("3.10.0") {
		t.Error("3.5.0 must sort before 3.10.0")
	}
	if !v.SupportsV3() {
		t.Error("3.5.0 must support v3")
	}
	if MustParseVersion("3.4.4").SupportsV3() {
		t.Error("3.4.4 must not support v3")
	}
	if MustParseVersion("4.1").Compare(MustParseVersion("4.1.0")) != 0 {
		t.Error("4.1 and 4.1.0 must compare equal")
	}
	var zero Version
	if !zero.Before("0.0.1") {
		t.Error("zero Version must sort first")
	}
}

func TestParseHelpOutput(t *testing.T) {
	t.Parallel()

	out := "NuGet Version: 5.11.0.10\r\nusage: NuGet <command> [args] [options]\r\n"
	v, err := ParseHelpOutput(out)
	if err != nil {
		t.Fatalf("ParseHelpOutput() error = %v", err)
	}
	if v.String() != "5.11.0.10" {
		t.Errorf("version = %q, want 5.11.0.10", v)
	}

	if _, err := ParseHelpOutput("usage: NuGet <command>"); !errors.Is(err, ErrInvalidVersion) {
		t.Errorf("ParseHelpOutput() without banner error = %v, want ErrInvalidVersion", err)
	}
}
