// SPDX-License-Identifier: MPL-2.0

package platform

import goruntime "runtime"

// OS name constants for runtime.GOOS comparisons.
// Centralizes the string literals to avoid scattered magic strings.
const (
	Windows OS = "windows"
	Darwin  OS = "darwin"
	Linux   OS = "linux"

	// Reference is the only OS the managed push tool ships for.
	Reference = Windows
)

// OS is a GOOS value.
type OS string

// Current returns the OS of the running process.
func Current() OS {
	return OS(goruntime.GOOS)
}

// IsReference reports whether o is the OS the managed push tool supports.
func (o OS) IsReference() bool { return o == Reference }

// ExecutableName appends the platform executable suffix to name when o is Windows.
func (o OS) ExecutableName(name string) string {
	if o == Windows {
		return name + ".exe"
	}
	return name
}

// String returns the GOOS string.
func (o OS) String() string { return string(o) }
