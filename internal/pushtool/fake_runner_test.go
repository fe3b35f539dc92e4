// SPDX-License-Identifier: MPL-2.0

package pushtool

import (
	"context"
	"sync"

	"github.com/nupush/nupush/internal/runtime"
)

type fakeRunner struct {
	mu     sync.Mutex
	calls  []runtime.Command
	result *runtime.Result
	err    error
}

func (f *fakeRunner) Run(_ context.Context, cmd runtime.Command) (*runtime.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cmd)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &runtime.Result{}, nil
}
