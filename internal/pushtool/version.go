// SPDX-License-Identifier: MPL-2.0

package pushtool

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// v3ProtocolVersion is the first legacy tool release that speaks the v3 feed protocol.
const v3ProtocolVersion = "3.5.0"

var (
	// ErrInvalidVersion is returned when a tool version string cannot be parsed.
	ErrInvalidVersion = errors.New("invalid tool version")

	versionLine = regexp.MustCompile(`(?m)^\s*NuGet Version:\s*(\S+)`)
)

type (
	// Version is a four-part tool version (major.minor.patch[.revision]).
	// Comparison ignores the revision.
	Version struct {
		raw       string
		canonical string
	}

	// InvalidVersionError is returned when a version string is malformed.
	InvalidVersionError struct {
		Value string
	}
)

// ParseVersion parses "a.b", "a.b.c" or "a.b.c.d".
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ".")
	if len(parts) < 2 || len(parts) > 4 {
		return Version{}, &InvalidVersionError{Value: s}
	}
	for len(parts) < 3 {
		parts = append(parts, "0")
	}

	canonical := "v" + strings.Join(parts[:3], ".")
	if !semver.IsValid(canonical) {
		return Version{}, &InvalidVersionError{Value: s}
	}
	if len(parts) == 4 && !isDigits(parts[3]) {
		return Version{}, &InvalidVersionError{Value: s}
	}
	return Version{raw: s, canonical: semver.Canonical(canonical)}, nil
}

// MustParseVersion is ParseVersion for constant inputs; it panics on error.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseHelpOutput extracts the version from the legacy tool's help banner.
func ParseHelpOutput(out string) (Version, error) {
	m := versionLine.FindStringSubmatch(out)
	if m == nil {
		return Version{}, fmt.Errorf("%w: no version line in help output", ErrInvalidVersion)
	}
	return ParseVersion(m[1])
}

// Compare returns -1, 0 or +1 as v is less than, equal to or greater than o.
func (v Version) Compare(o Version) int {
	return semver.Compare(v.canonical, o.canonical)
}

// Before reports whether v is lower than s. s must be a valid version.
func (v Version) Before(s string) bool {
	return v.Compare(MustParseVersion(s)) < 0
}

// AtLeast reports whether v is s or higher. s must be a valid version.
func (v Version) AtLeast(s string) bool {
	return !v.Before(s)
}

// SupportsV3 reports whether the tool speaks the v3 feed protocol.
func (v Version) SupportsV3() bool {
	return v.AtLeast(v3ProtocolVersion)
}

// String returns the version as it was parsed.
func (v Version) String() string { return v.raw }

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid tool version %q", e.Value)
}

// Unwrap returns ErrInvalidVersion for use with errors.Is.
func (e *InvalidVersionError) Unwrap() error { return ErrInvalidVersion }

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
