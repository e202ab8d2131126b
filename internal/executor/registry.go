// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package executor

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

const (
	// LogOnlyName selects LogOnly.
	LogOnlyName = "log"
	// ShellName selects Shell.
	ShellName = "shell"
)

// ErrUnknownExecutor is returned when no executor is registered under a name.
var ErrUnknownExecutor = errors.New("unknown executor")

// Factory creates an executor.
type Factory func() Executor

// Registry maps executor names to factories.
type Registry map[string]Factory

// DefaultRegistry holds the built-in executors.
var DefaultRegistry = Registry{
	LogOnlyName: func() Executor { return LogOnly{} },
	ShellName:   func() Executor { return NewShell() },
}

// Register adds or replaces the factory for name.
func (r Registry) Register(name string, f Factory) {
	r[name] = f
}

// New creates the executor registered under name.
func (r Registry) New(name string) (Executor, error) {
	f, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q, expected one of %s", ErrUnknownExecutor, name, strings.Join(r.Names(), ", "))
	}

	return f(), nil
}

// Names returns the registered names in sorted order.
func (r Registry) Names() []string {
	return slices.Sorted(maps.Keys(r))
}
