// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel"

	"github.com/nupush/nupush/internal/auth"
	"github.com/nupush/nupush/internal/config"
	"github.com/nupush/nupush/internal/endpoint"
	"github.com/nupush/nupush/internal/location"
	"github.com/nupush/nupush/internal/publish"
	"github.com/nupush/nupush/internal/pushtool"
	"github.com/nupush/nupush/internal/runtime"
	"github.com/nupush/nupush/internal/telemetry"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: all Cobra command handlers receive an App reference and delegate
	// business logic through its service interfaces.
	App struct {
		Config     ConfigProvider
		Publishers PublisherFactory
		Endpoints  EndpointResolver
		stdout     io.Writer
		stderr     io.Writer

		// Global flag values, bound by the root command.
		verbose    bool
		configPath string
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config     ConfigProvider
		Publishers PublisherFactory
		Endpoints  EndpointResolver
		Stdout     io.Writer
		Stderr     io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// PublishService runs one push.
	PublishService interface {
		Run(ctx context.Context, opts publish.Options) (*publish.Summary, error)
	}

	// PublisherFactory builds the publish service for a loaded configuration.
	PublisherFactory func(cfg *config.Config, logger *log.Logger, stdout, stderr io.Writer) PublishService

	// EndpointResolver turns endpoint names into external credentials.
	EndpointResolver func(cfg *config.Config, logger *log.Logger, names []string) ([]auth.ExternalAuth, error)
)

// NewApp creates the CLI composition root.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:     deps.Config,
		Publishers: deps.Publishers,
		Endpoints:  deps.Endpoints,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Publishers == nil {
		app.Publishers = newPublisher
	}
	if app.Endpoints == nil {
		app.Endpoints = lookupEndpoints
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// newPublisher builds the production publisher: real processes, the
// location service over HTTP and the global OpenTelemetry meter provider.
func newPublisher(cfg *config.Config, logger *log.Logger, stdout, stderr io.Writer) PublishService {
	runner := runtime.NewExecRunner(stdout, stderr)

	metrics, err := telemetry.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		logger.Warn("Metrics are disabled", "err", err)
	}
	var sink telemetry.Sink
	if metrics != nil {
		sink = metrics
	}

	return publish.New(publish.Dependencies{
		Runner:   runner,
		Locator:  pushtool.NewLocator(cfg.Tools.NuGetPath, cfg.Tools.ManagedPushPath, runner, logger),
		Location: location.NewClient(location.WithLogger(logger)),
		Metrics:  sink,
		Logger:   logger,
	})
}

func lookupEndpoints(cfg *config.Config, logger *log.Logger, names []string) ([]auth.ExternalAuth, error) {
	return endpoint.NewStore(cfg.Endpoints, endpoint.WithLogger(logger)).Lookup(names...)
}

// newLogger creates the CLI logger writing to w.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          "nupush",
		ReportTimestamp: false,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
