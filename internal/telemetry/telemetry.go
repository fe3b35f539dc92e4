// SPDX-License-Identifier: MPL-2.0

package telemetry

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// MeterName is the instrumentation scope for push tool metrics.
	MeterName = "github.com/nupush/nupush/push"

	// CategoryPackaging is the category reported for every push tool result.
	CategoryPackaging = "Packaging"
	// OperationNuGetCommand is the operation reported for every push tool result.
	OperationNuGetCommand = "NuGetCommand"

	toolResultsMetric = "nupush_tool_results_total"
)

type (
	// Sink receives one event per completed tool invocation.
	Sink interface {
		LogResult(ctx context.Context, category, operation string, exitCode int)
	}

	// Metrics is a Sink backed by an OpenTelemetry counter.
	Metrics struct {
		toolResults metric.Int64Counter
	}
)

// NewMetrics creates the push tool instruments on the given provider.
// If provider is nil, it returns nil (no-op metrics).
func NewMetrics(provider metric.MeterProvider) (*Metrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(MeterName)

	toolResults, err := meter.Int64Counter(
		toolResultsMetric,
		metric.WithDescription("Total number of push tool invocations by exit code"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{toolResults: toolResults}, nil
}

// LogResult increments the tool result counter.
func (m *Metrics) LogResult(ctx context.Context, category, operation string, exitCode int) {
	if m == nil {
		return
	}

	m.toolResults.Add(ctx, 1, metric.WithAttributes(
		attribute.String("category", category),
		attribute.String("operation", operation),
		attribute.String("exit_code", strconv.Itoa(exitCode)),
	))
}
