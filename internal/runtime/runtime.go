// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"context"
	"errors"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/nupush/nupush/pkg/types"
)

// ErrStartFailed is returned when a process could not be started or waited on.
var ErrStartFailed = errors.New("failed to run process")

const redactedValue = "********"

type (
	// Command describes one external process invocation.
	Command struct {
		// Path is the executable to run.
		Path string
		// Args are the arguments passed after the executable.
		Args []string
		// Env holds variables layered over the inherited process environment.
		// An empty value sets the variable to the empty string.
		Env map[string]string
		// Dir overrides the working directory when non-empty.
		Dir string
	}

	// Result contains the outcome of a completed process.
	Result struct {
		// ExitCode is the process exit code.
		ExitCode types.ExitCode
		// Stdout contains captured standard output.
		Stdout string
		// Stderr contains captured standard error.
		Stderr string
	}

	// Runner executes a command and blocks until it exits.
	Runner interface {
		Run(ctx context.Context, cmd Command) (*Result, error)
	}
)

// Success returns true if the process exited with code 0.
func (r *Result) Success() bool {
	return r != nil && r.ExitCode.IsSuccess()
}

// TrimmedStderr returns stderr without surrounding whitespace.
func (r *Result) TrimmedStderr() string {
	if r == nil {
		return ""
	}
	return strings.TrimSpace(r.Stderr)
}

// String renders the command line for debug output.
func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Redacted renders the command line like String, replacing the argument that
// follows any of secretFlags. Flags match case-insensitively.
func (c Command) Redacted(secretFlags ...string) string {
	args := slices.Clone(c.Args)
	for i := 0; i < len(args)-1; i++ {
		if slices.ContainsFunc(secretFlags, func(f string) bool { return strings.EqualFold(f, args[i]) }) {
			args[i+1] = redactedValue
			i++
		}
	}
	return strings.Join(append([]string{c.Path}, args...), " ")
}

// Environ merges Env over base and returns the result in KEY=VALUE form.
// Keys in Env replace matching keys in base; the remaining Env keys are
// appended in sorted order so the output is deterministic.
func (c Command) Environ(base []string) []string {
	if len(c.Env) == 0 {
		return base
	}

	out := make([]string, 0, len(base)+len(c.Env))
	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if _, overridden := c.Env[key]; overridden {
			continue
		}
		out = append(out, kv)
	}
	for _, key := range slices.Sorted(maps.Keys(c.Env)) {
		out = append(out, key+"="+c.Env[key])
	}
	return out
}

func hostEnviron() []string { return os.Environ() }
