// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package executor

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matt-FFFFFF/integrator/internal/progress"
	"github.com/matt-FFFFFF/integrator/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()

	if runtime.GOOS == goosWindows {
		t.Skip("shell scripts are POSIX only")
	}
}

func writeScript(t *testing.T, name, body string) resolver.Task {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o755))

	return resolver.Task{ID: name, Path: path, Exists: true}
}

func newTestShell() *Shell {
	s := NewShell()
	s.Shell = "/bin/sh"
	s.sigCh = make(chan os.Signal, 2)

	return s
}

type lineRecorder struct {
	mu    sync.Mutex
	lines []string
	ready chan struct{}
	once  sync.Once
}

func newLineRecorder() *lineRecorder {
	return &lineRecorder{ready: make(chan struct{})}
}

func (r *lineRecorder) Report(e progress.Event) {
	if e.Type != progress.EventOutput {
		return
	}

	r.mu.Lock()
	r.lines = append(r.lines, e.Data.OutputLine)
	r.mu.Unlock()

	if e.Data.OutputLine == "ready" {
		r.once.Do(func() { close(r.ready) })
	}
}

func (r *lineRecorder) Close() {}

func (r *lineRecorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.lines...)
}

func TestShell_Success(t *testing.T) {
	skipOnWindows(t)

	task := writeScript(t, "hello.sh", "echo hello\necho \"script=$INTEGRATOR_SCRIPT\"\necho \"foo=$FOO\"\npwd\necho oops >&2\n")
	rec := newLineRecorder()
	ctx := progress.NewContext(context.Background(), rec)

	s := newTestShell()
	s.Env = map[string]string{"FOO": "BAR"}

	out, err := s.Execute(ctx, task)
	require.NoError(t, err)
	assert.Equal(t, 0, out.ExitCode)

	stdout := string(out.StdOut)
	assert.Contains(t, stdout, "hello\n")
	assert.Contains(t, stdout, "script=hello.sh\n")
	assert.Contains(t, stdout, "foo=BAR\n")
	assert.Equal(t, "oops\n", string(out.StdErr))

	wantDir, err := filepath.EvalSymlinks(filepath.Dir(task.Path))
	require.NoError(t, err)

	lines := rec.Lines()
	require.Len(t, lines, 4)
	assert.Equal(t, "hello", lines[0])

	gotDir, err := filepath.EvalSymlinks(lines[3])
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir, "scripts run from their own directory")
}

func TestShell_NonZeroExit(t *testing.T) {
	skipOnWindows(t)

	task := writeScript(t, "fail.sh", "echo failing >&2\nexit 3\n")

	out, err := newTestShell().Execute(context.Background(), task)
	require.ErrorIs(t, err, ErrNonZeroExit)
	assert.ErrorContains(t, err, "3: failing")
	assert.Equal(t, 3, out.ExitCode)
	assert.Equal(t, "failing\n", string(out.StdErr))
}

func TestShell_BackgroundChildDoesNotHoldOutput(t *testing.T) {
	skipOnWindows(t)

	task := writeScript(t, "bg.sh", "echo started\nsleep 5 &\nexit 0\n")

	s := newTestShell()
	s.OutputGrace = 100 * time.Millisecond

	start := time.Now()

	out, err := s.Execute(context.Background(), task)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 4*time.Second, "returns before the background sleep ends")
	assert.Equal(t, 0, out.ExitCode)
	assert.Equal(t, "started\n", string(out.StdOut))
}

func TestShell_InterpreterNotFound(t *testing.T) {
	task := writeScript(t, "a.sh", "exit 0\n")

	s := newTestShell()
	s.Shell = filepath.Join(t.TempDir(), "no-such-shell")

	out, err := s.Execute(context.Background(), task)
	require.ErrorIs(t, err, ErrCouldNotStartProcess)
	assert.Equal(t, -1, out.ExitCode)
}

func TestShell_OutputLimit(t *testing.T) {
	skipOnWindows(t)

	task := writeScript(t, "big.sh", "i=0\nwhile [ $i -lt 100 ]; do echo 0123456789; i=$((i+1)); done\n")

	s := newTestShell()
	s.MaxOutputBytes = 50

	out, err := s.Execute(context.Background(), task)
	require.NoError(t, err, "truncation is not a failure")
	assert.Len(t, out.StdOut, 50)
}

func TestShell_ContextCancelKillsProcess(t *testing.T) {
	skipOnWindows(t)

	task := writeScript(t, "slow.sh", "echo ready\nexec sleep 30\n")
	rec := newLineRecorder()

	ctx, cancel := context.WithCancel(progress.NewContext(context.Background(), rec))
	defer cancel()

	go func() {
		<-rec.ready
		cancel()
	}()

	start := time.Now()
	out, err := newTestShell().Execute(ctx, task)

	require.ErrorIs(t, err, ErrContextDone)
	assert.Equal(t, -1, out.ExitCode)
	assert.Less(t, time.Since(start), 20*time.Second)
}

func TestShell_DuplicateSignalKillsProcess(t *testing.T) {
	skipOnWindows(t)

	task := writeScript(t, "stubborn.sh", "trap '' INT\necho ready\nexec sleep 30\n")
	rec := newLineRecorder()
	ctx := progress.NewContext(context.Background(), rec)

	s := newTestShell()

	go func() {
		<-rec.ready
		s.sigCh <- os.Interrupt
		s.sigCh <- os.Interrupt
	}()

	start := time.Now()
	out, err := s.Execute(ctx, task)

	require.ErrorIs(t, err, ErrDuplicateSignalReceived)
	assert.Equal(t, -1, out.ExitCode)
	assert.Less(t, time.Since(start), 20*time.Second)
	assert.True(t, strings.HasPrefix(strings.Join(rec.Lines(), "\n"), "ready"))
}

func TestDefaultShell(t *testing.T) {
	skipOnWindows(t)

	t.Setenv(shellEnv, "/usr/bin/custom-shell")
	assert.Equal(t, "/usr/bin/custom-shell", defaultShell(context.Background()))

	t.Setenv(shellEnv, "")
	assert.Equal(t, binSh, defaultShell(context.Background()))
}
