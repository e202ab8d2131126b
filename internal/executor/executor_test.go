// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package executor

import (
	"context"
	"testing"

	"github.com/matt-FFFFFF/integrator/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogOnly(t *testing.T) {
	out, err := LogOnly{}.Execute(context.Background(), resolver.Task{ID: "a.sh", Path: "/s/a.sh", Exists: true})
	require.NoError(t, err)
	assert.Equal(t, Output{}, out)
}

func TestFunc(t *testing.T) {
	var got resolver.Task

	f := Func(func(_ context.Context, task resolver.Task) (Output, error) {
		got = task
		return Output{ExitCode: 3}, assert.AnError
	})

	out, err := f.Execute(context.Background(), resolver.Task{ID: "x.sh"})
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 3, out.ExitCode)
	assert.Equal(t, "x.sh", got.ID)
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{"log", "shell"}, DefaultRegistry.Names())

	exec, err := DefaultRegistry.New(LogOnlyName)
	require.NoError(t, err)
	assert.IsType(t, LogOnly{}, exec)

	exec, err = DefaultRegistry.New(ShellName)
	require.NoError(t, err)
	assert.IsType(t, &Shell{}, exec)

	_, err = DefaultRegistry.New("python")
	require.ErrorIs(t, err, ErrUnknownExecutor)
	assert.Contains(t, err.Error(), "log, shell")
}

func TestRegistry_Register(t *testing.T) {
	r := Registry{}
	r.Register("noop", func() Executor {
		return Func(func(context.Context, resolver.Task) (Output, error) { return Output{}, nil })
	})

	exec, err := r.New("noop")
	require.NoError(t, err)

	_, err = exec.Execute(context.Background(), resolver.Task{})
	require.NoError(t, err)
}
