// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()

		if err := FormatError(nil, "config.cue"); err != nil {
			t.Errorf("FormatError(nil) = %v", err)
		}
	})

	t.Run("plain error is wrapped with the file path", func(t *testing.T) {
		t.Parallel()

		orig := errors.New("boom")
		err := FormatError(orig, "config.cue")
		if !errors.Is(err, orig) || !strings.HasPrefix(err.Error(), "config.cue: ") {
			t.Errorf("FormatError() = %v", err)
		}
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) || errors.Is(err, ErrSchema) {
			t.Errorf("FormatError() = %#v, want a plain wrapped error", err)
		}
	})
}

func TestSchemaErrorMessage(t *testing.T) {
	t.Parallel()

	one := &SchemaError{FilePath: "config.cue", Problems: []string{"push.verbosity: conflicting values"}}
	if got, want := one.Error(), "config.cue: push.verbosity: conflicting values"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	many := &SchemaError{FilePath: "config.cue", Problems: []string{"a: x", "b: y"}}
	if got, want := many.Error(), "config.cue: validation failed:\n  a: x\n  b: y"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(many, ErrSchema) {
		t.Error("SchemaError must wrap ErrSchema")
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"push"}, "push"},
		{[]string{"push", "feed_type"}, "push.feed_type"},
		{[]string{"push", "search_patterns", "1"}, "push.search_patterns[1]"},
		{[]string{"a", "0", "b", "2"}, "a[0].b[2]"},
	}

	for _, tt := range tests {
		if got := formatPath(tt.path); got != tt.want {
			t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	if err := CheckFileSize(make([]byte, 100), 100, "config.cue"); err != nil {
		t.Errorf("at limit: %v", err)
	}
	err := CheckFileSize(make([]byte, 101), 100, "config.cue")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("over limit error = %v, want ErrFileTooLarge", err)
	}
	for _, want := range []string{"config.cue", "101", "100"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}
