// SPDX-License-Identifier: MPL-2.0

package pushtool

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nupush/nupush/internal/runtime"
	"github.com/nupush/nupush/internal/telemetry"
)

// ManagedToolName is the display name of the managed push tool.
const ManagedToolName = "VstsNuGetPush"

var _ Pusher = (*Managed)(nil)

// Managed pushes packages with the hosted service's push tool.
type Managed struct {
	invoker
	continueOnConflict bool
}

// NewManaged creates a managed tool adapter. When continueOnConflict is set,
// a package version that already exists on the feed is skipped.
func NewManaged(path string, env map[string]string, continueOnConflict bool, runner runtime.Runner, metrics telemetry.Sink, logger *log.Logger) *Managed {
	return &Managed{
		invoker:            newInvoker(path, env, runner, metrics, logger),
		continueOnConflict: continueOnConflict,
	}
}

// ManagedArgs builds the managed tool's push arguments. Only the "detailed"
// verbosity is forwarded.
func ManagedArgs(t Target) []string {
	args := []string{t.File, "-Source", t.FeedURI, "-AccessToken", t.AccessToken, "-NonInteractive"}
	if strings.EqualFold(t.Verbosity, "detailed") {
		args = append(args, "-Verbosity", "Detailed")
	}
	return args
}

// Name returns ManagedToolName.
func (m *Managed) Name() string { return ManagedToolName }

// Push runs the managed tool for one package.
func (m *Managed) Push(ctx context.Context, t Target) error {
	result, err := m.run(ctx, ManagedArgs(t))
	if err != nil {
		return err
	}
	if result.Success() {
		return nil
	}
	if result.ExitCode.IsConflict() && m.continueOnConflict {
		m.logger.Debug("Package already exists on the feed, skipping it", "file", t.File)
		return nil
	}
	return m.fail(ctx, ManagedToolName, t.File, result)
}
