// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"sync"
)

type (
	// MetricsEvent is a single recorded tool result.
	MetricsEvent struct {
		Category  string
		Operation string
		ExitCode  int
	}

	// MetricsRecorder is an in-memory telemetry sink. It is safe for
	// concurrent use.
	MetricsRecorder struct {
		mu     sync.Mutex
		events []MetricsEvent
	}
)

// LogResult appends an event.
func (r *MetricsRecorder) LogResult(_ context.Context, category, operation string, exitCode int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, MetricsEvent{Category: category, Operation: operation, ExitCode: exitCode})
}

// Events returns a copy of the recorded events.
func (r *MetricsRecorder) Events() []MetricsEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]MetricsEvent, len(r.events))
	copy(out, r.events)
	return out
}
