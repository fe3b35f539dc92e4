// SPDX-License-Identifier: MPL-2.0

package runtime

import "github.com/nupush/nupush/pkg/types"

// NewExitCodeResult creates a Result with the given exit code and stderr.
// Use this in fakes that simulate a process exiting with a specific code.
func NewExitCodeResult(code types.ExitCode, stderr string) *Result {
	return &Result{ExitCode: code, Stderr: stderr}
}

// NewSuccessResult creates a Result with exit code 0 and the given stdout.
func NewSuccessResult(stdout string) *Result {
	return &Result{Stdout: stdout}
}
