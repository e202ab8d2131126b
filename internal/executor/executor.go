// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package executor

import (
	"context"

	"github.com/matt-FFFFFF/integrator/internal/resolver"
)

// Output is what an executor observed while running a script.
type Output struct {
	ExitCode int    // Process exit code, -1 when the process could not run or was killed
	StdOut   []byte // Captured standard output
	StdErr   []byte // Captured standard error
}

// Executor runs one script. Implementations must be safe for concurrent use.
type Executor interface {
	Execute(ctx context.Context, task resolver.Task) (Output, error)
}

// Func adapts a function to the Executor interface.
type Func func(ctx context.Context, task resolver.Task) (Output, error)

// Execute calls f(ctx, task).
func (f Func) Execute(ctx context.Context, task resolver.Task) (Output, error) {
	return f(ctx, task)
}
