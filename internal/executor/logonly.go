// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package executor

import (
	"context"

	"github.com/matt-FFFFFF/integrator/internal/ctxlog"
	"github.com/matt-FFFFFF/integrator/internal/resolver"
)

var _ Executor = LogOnly{}

// LogOnly logs the script it was given and reports success without running it.
type LogOnly struct{}

// Execute implements Executor.
func (LogOnly) Execute(ctx context.Context, task resolver.Task) (Output, error) {
	ctxlog.Info(ctx, "running script", "script", task.ID, "path", task.Path)
	return Output{}, nil
}
