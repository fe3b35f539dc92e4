// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"errors"
	"fmt"

	"github.com/nupush/nupush/internal/auth"
	"github.com/nupush/nupush/internal/nugetconfig"
	"github.com/nupush/nupush/internal/pushtool"
)

// ErrorKind constants.
const (
	KindNone ErrorKind = iota
	KindConfiguration
	KindValidation
	KindAuthResolution
	KindToolInvocation
	KindIO
	KindUnknown
)

var (
	// ErrConfiguration is returned for missing or invalid run inputs.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrNotARegularFile is the sentinel error wrapped by NotARegularFileError.
	ErrNotARegularFile = errors.New("not a regular file")
)

type (
	// ErrorKind is the failure category of a run.
	ErrorKind int

	// NotARegularFileError is returned when a matched path is a directory or
	// another non-file entry.
	NotARegularFileError struct {
		Path string
	}
)

// Error implements the error interface.
func (e *NotARegularFileError) Error() string {
	return fmt.Sprintf("%s is not a regular file and cannot be pushed", e.Path)
}

// Unwrap returns ErrNotARegularFile for errors.Is() compatibility.
func (e *NotARegularFileError) Unwrap() error { return ErrNotARegularFile }

// Classify returns the failure category of err.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, auth.ErrNoPushSource):
		return KindAuthResolution
	case errors.Is(err, ErrConfiguration),
		errors.Is(err, auth.ErrUnknownFeedType),
		errors.Is(err, pushtool.ErrToolNotFound):
		return KindConfiguration
	case errors.Is(err, ErrNotARegularFile):
		return KindValidation
	case errors.Is(err, pushtool.ErrToolInvocation):
		return KindToolInvocation
	case errors.Is(err, nugetconfig.ErrConfigIO):
		return KindIO
	default:
		return KindUnknown
	}
}

// String returns the category name.
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindConfiguration:
		return "configuration"
	case KindValidation:
		return "validation"
	case KindAuthResolution:
		return "auth resolution"
	case KindToolInvocation:
		return "tool invocation"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}
