// SPDX-License-Identifier: MPL-2.0

package pushtool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"github.com/nupush/nupush/internal/runtime"
	"github.com/nupush/nupush/pkg/platform"
)

const (
	managedToolDir = "VstsNuGetPush"
	managedToolExe = "VstsNuGetPush.exe"
)

// ErrToolNotFound is returned when the legacy push tool cannot be located.
var ErrToolNotFound = errors.New("push tool not found")

type (
	// Locator finds the push tools and reads the legacy tool's version.
	Locator struct {
		// NuGetPath is the configured legacy tool path; PATH is searched when empty.
		NuGetPath string
		// ManagedPushPath is the configured managed tool path.
		ManagedPushPath string
		// Platform is the host OS.
		Platform platform.OS

		Fs         afero.Fs
		Runner     runtime.Runner
		LookPath   func(file string) (string, error)
		Executable func() (string, error)
		Logger     *log.Logger
	}

	// LegacyToolInfo is a located legacy tool.
	LegacyToolInfo struct {
		Path    string
		Version Version
		Quirks  Quirks
	}

	// ToolNotFoundError names the tool that could not be located.
	ToolNotFoundError struct {
		Name string
		Err  error
	}
)

// NewLocator creates a Locator backed by the host filesystem, PATH and
// process runner.
func NewLocator(nugetPath, managedPushPath string, runner runtime.Runner, logger *log.Logger) *Locator {
	return &Locator{
		NuGetPath:       nugetPath,
		ManagedPushPath: managedPushPath,
		Platform:        platform.Current(),
		Fs:              afero.NewOsFs(),
		Runner:          runner,
		LookPath:        exec.LookPath,
		Executable:      os.Executable,
		Logger:          logger,
	}
}

// Error implements the error interface.
func (e *ToolNotFoundError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s not found: %v", e.Name, e.Err)
	}
	return e.Name + " not found"
}

// Unwrap returns ErrToolNotFound for use with errors.Is.
func (e *ToolNotFoundError) Unwrap() error { return ErrToolNotFound }

// LegacyTool locates the legacy tool and reads its version from its help banner.
func (l *Locator) LegacyTool(ctx context.Context) (*LegacyToolInfo, error) {
	path, err := l.legacyPath()
	if err != nil {
		return nil, err
	}

	result, err := l.Runner.Run(ctx, runtime.Command{Path: path, Args: []string{"help"}})
	if err != nil {
		return nil, &ToolNotFoundError{Name: path, Err: err}
	}
	version, err := ParseHelpOutput(result.Stdout)
	if err != nil {
		return nil, fmt.Errorf("read version of %s: %w", path, err)
	}

	quirks := QuirksFor(version)
	l.logger().Debug("Located legacy push tool", "path", path, "version", version, "quirks", quirks)
	return &LegacyToolInfo{Path: path, Version: version, Quirks: quirks}, nil
}

// ManagedTool returns the managed tool path, or "" when it is not installed.
// The managed tool only exists for the reference platform.
func (l *Locator) ManagedTool() string {
	if !l.Platform.IsReference() {
		return ""
	}

	candidates := []string{l.ManagedPushPath}
	if l.ManagedPushPath == "" && l.Executable != nil {
		if exe, err := l.Executable(); err == nil {
			candidates = []string{filepath.Join(filepath.Dir(exe), managedToolDir, managedToolExe)}
		}
	}

	for _, c := range candidates {
		if c == "" {
			continue
		}
		if info, err := l.Fs.Stat(c); err == nil && info.Mode().IsRegular() {
			l.logger().Debug("Located managed push tool", "path", c)
			return c
		}
	}
	l.logger().Debug("Managed push tool not found")
	return ""
}

func (l *Locator) legacyPath() (string, error) {
	if l.NuGetPath != "" {
		info, err := l.Fs.Stat(l.NuGetPath)
		if err != nil {
			return "", &ToolNotFoundError{Name: l.NuGetPath, Err: err}
		}
		if info.IsDir() {
			return "", &ToolNotFoundError{Name: l.NuGetPath, Err: errors.New("is a directory")}
		}
		return l.NuGetPath, nil
	}

	var lastErr error
	for _, name := range []string{"nuget", "nuget.exe"} {
		path, err := l.LookPath(name)
		if err == nil {
			return path, nil
		}
		lastErr = err
	}
	return "", &ToolNotFoundError{Name: "nuget", Err: lastErr}
}

func (l *Locator) logger() *log.Logger {
	if l.Logger == nil {
		return log.New(io.Discard)
	}
	return l.Logger
}
