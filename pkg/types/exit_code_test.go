// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestExitCodeValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		value     ExitCode
		wantValid bool
	}{
		{name: "zero is valid", value: 0, wantValid: true},
		{name: "conflict is valid", value: 2, wantValid: true},
		{name: "255 is valid", value: 255, wantValid: true},
		{name: "negative is invalid", value: -1, wantValid: false},
		{name: "256 is invalid", value: 256, wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.value.Validate()
			if tt.wantValid {
				if err != nil {
					t.Errorf("ExitCode(%d).Validate() = %v, want nil", tt.value, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ExitCode(%d).Validate() = nil, want error", tt.value)
			}
			if !errors.Is(err, ErrInvalidExitCode) {
				t.Errorf("error does not wrap ErrInvalidExitCode: %v", err)
			}
			var exitErr *InvalidExitCodeError
			if !errors.As(err, &exitErr) || exitErr.Value != tt.value {
				t.Errorf("errors.As(*InvalidExitCodeError) value = %v, want %d", exitErr, tt.value)
			}
		})
	}
}

func TestExitCodePredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code         ExitCode
		wantSuccess  bool
		wantConflict bool
	}{
		{0, true, false},
		{1, false, false},
		{2, false, true},
		{3, false, false},
		{-1, false, false},
	}

	for _, tt := range tests {
		if got := tt.code.IsSuccess(); got != tt.wantSuccess {
			t.Errorf("ExitCode(%d).IsSuccess() = %v, want %v", tt.code, got, tt.wantSuccess)
		}
		if got := tt.code.IsConflict(); got != tt.wantConflict {
			t.Errorf("ExitCode(%d).IsConflict() = %v, want %v", tt.code, got, tt.wantConflict)
		}
	}
}

func TestExitCodeString(t *testing.T) {
	t.Parallel()

	if got := ExitCode(42).String(); got != "42" {
		t.Errorf("ExitCode(42).String() = %q, want %q", got, "42")
	}
}
