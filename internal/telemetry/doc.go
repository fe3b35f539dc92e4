// SPDX-License-Identifier: MPL-2.0

// Package telemetry records push tool outcomes as OpenTelemetry metrics.
//
// Each tool invocation is reported once through a Sink as a
// (category, operation, exit code) triple. Metrics is the OpenTelemetry-backed
// implementation; a nil *Metrics is a valid no-op sink.
package telemetry
