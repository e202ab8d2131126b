// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"errors"
	"fmt"
)

// ErrTaskExecution wraps every per-task failure recorded by Dispatch.
var ErrTaskExecution = errors.New("task execution failed")

// PanicError records a panic raised by an executor.
type PanicError struct {
	Task  string // Script identifier
	Value any    // Value passed to panic
	Stack []byte // Goroutine stack at the point of recovery
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic while running %s: %v", e.Task, e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}

	return nil
}
