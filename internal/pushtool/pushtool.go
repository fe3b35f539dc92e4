// SPDX-License-Identifier: MPL-2.0

package pushtool

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/nupush/nupush/internal/runtime"
	"github.com/nupush/nupush/internal/telemetry"
	"github.com/nupush/nupush/pkg/types"
)

// ErrToolInvocation is returned when a push tool exits with an unexpected code.
var ErrToolInvocation = errors.New("push tool failed")

// secretFlags are the arguments whose values never reach the log.
var secretFlags = []string{"-ApiKey", "-AccessToken"}

type (
	// Target is one package file to push and everything the tool needs for it.
	Target struct {
		// File is the package path.
		File string
		// FeedURI is the push destination.
		FeedURI string
		// APIKey is passed to the legacy tool when non-empty.
		APIKey string
		// ConfigFile is the temporary config path, empty when none was written.
		ConfigFile string
		// AccessToken authenticates the managed tool.
		AccessToken string
		// Verbosity is the requested verbosity; "" and "-" mean unset.
		Verbosity string
	}

	// Pusher pushes a single package file.
	Pusher interface {
		Push(ctx context.Context, t Target) error
		// Name returns the tool's display name.
		Name() string
	}

	// InvocationError describes a push tool that exited unsuccessfully.
	InvocationError struct {
		Tool     string
		File     string
		ExitCode types.ExitCode
		Stderr   string
	}

	// invoker holds what both adapters share.
	invoker struct {
		path    string
		env     map[string]string
		runner  runtime.Runner
		metrics telemetry.Sink
		logger  *log.Logger
	}
)

// Error implements the error interface.
func (e *InvocationError) Error() string {
	msg := fmt.Sprintf("%s failed with exit code %d", e.Tool, e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap returns ErrToolInvocation for use with errors.Is.
func (e *InvocationError) Unwrap() error { return ErrToolInvocation }

func (inv *invoker) run(ctx context.Context, args []string) (*runtime.Result, error) {
	cmd := runtime.Command{Path: inv.path, Args: args, Env: inv.env}
	inv.logger.Debug("Running push tool", "command", cmd.Redacted(secretFlags...))

	result, err := inv.runner.Run(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", inv.path, err)
	}
	return result, nil
}

// fail reports the exit code to the metrics sink and builds the error.
func (inv *invoker) fail(ctx context.Context, tool, file string, result *runtime.Result) error {
	if inv.metrics != nil {
		inv.metrics.LogResult(ctx, telemetry.CategoryPackaging, telemetry.OperationNuGetCommand, int(result.ExitCode))
	}
	return &InvocationError{
		Tool:     tool,
		File:     file,
		ExitCode: result.ExitCode,
		Stderr:   result.TrimmedStderr(),
	}
}

func newInvoker(path string, env map[string]string, runner runtime.Runner, metrics telemetry.Sink, logger *log.Logger) invoker {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return invoker{path: path, env: env, runner: runner, metrics: metrics, logger: logger}
}
