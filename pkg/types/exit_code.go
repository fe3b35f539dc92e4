// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

const (
	// ExitSuccess is the exit code of a process that completed normally.
	ExitSuccess ExitCode = 0
	// ExitFailure is the generic failure code the CLI exits with.
	ExitFailure ExitCode = 1
	// ExitConflict is returned by the managed push tool when the package
	// version already exists in the feed.
	ExitConflict ExitCode = 2
)

type (
	// ExitCode represents a process exit status code.
	// Push tools built for Windows may report codes outside 0-255,
	// so the raw value is preserved and only checked on demand.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside the
	// POSIX range (0-255).
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode so callers can use errors.Is for programmatic detection.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is outside the POSIX range (0-255).
func (c ExitCode) Validate() error {
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess returns true if the exit code indicates successful execution.
func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

// IsConflict returns true if the exit code is the managed push tool's
// "package already exists" signal.
func (c ExitCode) IsConflict() bool { return c == ExitConflict }

// String returns the decimal string representation of the ExitCode.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
