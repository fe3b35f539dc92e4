// SPDX-License-Identifier: MPL-2.0

package pushtool

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/nupush/nupush/internal/runtime"
	"github.com/nupush/nupush/internal/telemetry"
)

// LegacyToolName is the display name of the legacy push tool.
const LegacyToolName = "NuGet"

var _ Pusher = (*Legacy)(nil)

// Legacy pushes packages with the general-purpose nuget CLI.
type Legacy struct {
	invoker
}

// NewLegacy creates a legacy tool adapter. env is layered over the inherited
// process environment of every invocation.
func NewLegacy(path string, env map[string]string, runner runtime.Runner, metrics telemetry.Sink, logger *log.Logger) *Legacy {
	return &Legacy{invoker: newInvoker(path, env, runner, metrics, logger)}
}

// LegacyArgs builds the legacy tool's push arguments.
func LegacyArgs(t Target) []string {
	args := []string{"push", t.File, "-NonInteractive", "-Source", t.FeedURI}
	if t.APIKey != "" {
		args = append(args, "-ApiKey", t.APIKey)
	}
	if t.ConfigFile != "" {
		args = append(args, "-ConfigFile", t.ConfigFile)
	}
	if t.Verbosity != "" && t.Verbosity != "-" {
		args = append(args, "-Verbosity", t.Verbosity)
	}
	return args
}

// Name returns LegacyToolName.
func (l *Legacy) Name() string { return LegacyToolName }

// Push runs the legacy tool for one package. Any non-zero exit code fails.
func (l *Legacy) Push(ctx context.Context, t Target) error {
	result, err := l.run(ctx, LegacyArgs(t))
	if err != nil {
		return err
	}
	if result.Success() {
		return nil
	}
	return l.fail(ctx, LegacyToolName, t.File, result)
}
