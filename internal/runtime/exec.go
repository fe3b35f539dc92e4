// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/nupush/nupush/pkg/types"
)

type (
	// ExecRunner runs commands with os/exec.
	ExecRunner struct {
		// Stdout receives a live copy of the process stdout when non-nil.
		Stdout io.Writer
		// Stderr receives a live copy of the process stderr when non-nil.
		Stderr io.Writer
	}

	// capturedOutput holds the captured stdout and stderr buffers.
	capturedOutput struct {
		stdout bytes.Buffer
		stderr bytes.Buffer
	}
)

// NewExecRunner creates a runner that streams process output to the given writers.
// Either writer may be nil to capture only.
func NewExecRunner(stdout, stderr io.Writer) *ExecRunner {
	return &ExecRunner{Stdout: stdout, Stderr: stderr}
}

// Run executes cmd and waits for it to exit.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Path == "" {
		return nil, fmt.Errorf("%w: empty executable path", ErrStartFailed)
	}

	c := exec.CommandContext(ctx, cmd.Path, cmd.Args...)
	if cmd.Dir != "" {
		c.Dir = cmd.Dir
	}
	c.Env = cmd.Environ(hostEnviron())

	captured := &capturedOutput{}
	c.Stdout = tee(&captured.stdout, r.Stdout)
	c.Stderr = tee(&captured.stderr, r.Stderr)

	return extractExitCode(c.Run(), captured)
}

// extractExitCode determines the exit code from a command execution error.
func extractExitCode(err error, captured *capturedOutput) (*Result, error) {
	result := &Result{
		Stdout: captured.stdout.String(),
		Stderr: captured.stderr.String(),
	}

	if err == nil {
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Command executed but returned non-zero exit code
		result.ExitCode = types.ExitCode(exitErr.ExitCode())
		return result, nil
	}

	// Some other error (e.g., executable not found, permission denied)
	return nil, fmt.Errorf("%w: %w", ErrStartFailed, err)
}

func tee(buf *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return buf
	}
	return io.MultiWriter(buf, w)
}
