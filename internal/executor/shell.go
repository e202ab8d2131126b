// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/matt-FFFFFF/integrator/internal/ctxlog"
	"github.com/matt-FFFFFF/integrator/internal/progress"
	"github.com/matt-FFFFFF/integrator/internal/resolver"
	"github.com/matt-FFFFFF/integrator/internal/signalbroker"
	"github.com/matt-FFFFFF/integrator/internal/teereader"
	"golang.org/x/sync/errgroup"
)

const (
	goosWindows          = "windows"
	commandSwitchWindows = "/C"
	winSystem32          = "System32"
	cmdExe               = "cmd.exe"
	binSh                = "/bin/sh"
	winSystemRootEnv     = "SystemRoot"
	shellEnv             = "SHELL"

	// ScriptEnv is set in each script's environment to the script identifier.
	ScriptEnv = "INTEGRATOR_SCRIPT"

	stillRunningInterval = 10 * time.Second

	// DefaultOutputGrace is how long output is still read after a script exits.
	DefaultOutputGrace = 2 * time.Second
	errLineMax           = 120
)

var (
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToCreatePipe is returned when an output pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrNonZeroExit is returned when the script exits with a non-zero code.
	ErrNonZeroExit = errors.New("script exited with non-zero code")
	// ErrContextDone is returned when the script was killed because the context ended.
	ErrContextDone = errors.New("context done, process killed")
	// ErrSignalReceived is returned when a signal was forwarded to the script.
	ErrSignalReceived = errors.New("signal received")
	// ErrDuplicateSignalReceived is returned when a repeated signal forced the script to be killed.
	ErrDuplicateSignalReceived = errors.New("duplicate signal received, process forcefully terminated")
)

var _ Executor = (*Shell)(nil)

// Shell runs each script as a child process of a shell, from the script's directory.
//
// Processes the script leaves in the background may inherit its output. Once the
// script exits, output is read for OutputGrace more and then the pipes are closed,
// so such processes do not hold the script's slot. Their later output is lost.
type Shell struct {
	Shell          string            // Interpreter path; defaults to $SHELL, /bin/sh, or cmd.exe on Windows
	Env            map[string]string // Extra environment variables
	MaxOutputBytes int               // Capture limit per stream; defaults to teereader.DefaultMaxBytes
	OutputGrace    time.Duration     // How long output is read after the script exits; defaults to DefaultOutputGrace

	sigCh chan os.Signal // Signal source, replaced in tests
}

// NewShell returns a Shell with defaults.
func NewShell() *Shell {
	return &Shell{
		MaxOutputBytes: teereader.DefaultMaxBytes,
		OutputGrace:    DefaultOutputGrace,
	}
}

// Execute implements Executor. A non-zero exit code is an error wrapping
// ErrNonZeroExit. Complete lines of standard output are reported as
// progress.EventOutput to the reporter in ctx.
func (s *Shell) Execute(ctx context.Context, task resolver.Task) (Output, error) {
	logger := ctxlog.Logger(ctx).With("executor", ShellName, "script", task.ID)

	out := Output{ExitCode: -1}

	shell := s.Shell
	if shell == "" {
		shell = defaultShell(ctx)
	}

	args := []string{filepath.Base(shell)}
	if runtime.GOOS == goosWindows {
		args = append(args, commandSwitchWindows)
	}

	args = append(args, task.Path)

	env := append(os.Environ(), fmt.Sprintf("%s=%s", ScriptEnv, task.ID))
	for k, v := range s.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	rOut, wOut, err := os.Pipe()
	if err != nil {
		return out, errors.Join(ErrFailedToCreatePipe, err)
	}

	defer rOut.Close() //nolint:errcheck

	rErr, wErr, err := os.Pipe()
	if err != nil {
		_ = wOut.Close()
		return out, errors.Join(ErrFailedToCreatePipe, err)
	}

	defer rErr.Close() //nolint:errcheck

	logger.Debug("starting process", "shell", shell, "args", args)

	ps, err := os.StartProcess(shell, args, &os.ProcAttr{
		Dir:   filepath.Dir(task.Path),
		Env:   env,
		Files: []*os.File{nil, wOut, wErr},
	})

	// The child holds its own copies of the write ends.
	_ = wOut.Close()
	_ = wErr.Close()

	if err != nil {
		return out, errors.Join(ErrCouldNotStartProcess, err)
	}

	logger.Debug("process started", "pid", ps.Pid)

	maxBytes := s.MaxOutputBytes
	if maxBytes <= 0 {
		maxBytes = teereader.DefaultMaxBytes
	}

	reporter := progress.FromContext(ctx)
	stdout := teereader.New(rOut, teereader.WithMaxBytes(maxBytes), teereader.WithLineFunc(func(line string) {
		reporter.Report(progress.Event{
			Task:      task.ID,
			Type:      progress.EventOutput,
			Message:   "output from " + task.ID,
			Timestamp: time.Now(),
			Data:      progress.EventData{OutputLine: line},
		})
	}))
	stderr := teereader.New(rErr, teereader.WithMaxBytes(maxBytes))

	var readers errgroup.Group

	readers.Go(stdout.Drain)
	readers.Go(stderr.Drain)

	sigCh := s.sigCh
	if sigCh == nil {
		sigCh = signalbroker.New(ctx)
		defer signalbroker.Stop(sigCh)
	}

	done := make(chan struct{})
	killed := make(chan error, 1)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		watch(ctx, ps, sigCh, done, killed)
	}()

	state, psErr := ps.Wait()

	close(done)
	wg.Wait()

	readErr := s.waitReaders(ctxlog.New(ctx, logger), &readers, rOut, rErr)

	out.StdOut = stdout.Bytes()
	out.StdErr = stderr.Bytes()

	if state != nil {
		out.ExitCode = state.ExitCode()
	}

	logger.Debug("process finished", "exitCode", out.ExitCode)

	var killErr error

	select {
	case killErr = <-killed:
	default:
	}

	if errors.Is(readErr, teereader.ErrOverflow) {
		logger.Warn("script output truncated", "maxBytes", maxBytes, "stdout", stdout.Truncated(), "stderr", stderr.Truncated())
		readErr = nil
	}

	switch {
	case psErr != nil || killErr != nil:
		out.ExitCode = -1
		return out, errors.Join(psErr, killErr, readErr)
	case out.ExitCode != 0:
		exitErr := fmt.Errorf("%w: %d", ErrNonZeroExit, out.ExitCode)
		if last := stderr.LastLine(errLineMax); last != "" {
			exitErr = fmt.Errorf("%w: %d: %s", ErrNonZeroExit, out.ExitCode, last)
		}

		return out, errors.Join(exitErr, readErr)
	case readErr != nil:
		return out, readErr
	}

	return out, nil
}

// watch forwards signals to the process and kills it when the context ends or a
// signal is received twice. The reason is sent on killed, which must have a
// buffer of one.
func watch(ctx context.Context, ps *os.Process, sigCh <-chan os.Signal, done <-chan struct{}, killed chan error) {
	logger := ctxlog.Logger(ctx).With("pid", ps.Pid)
	seen := make(map[os.Signal]struct{})
	started := time.Now()

	ticker := time.NewTicker(stillRunningInterval)
	defer ticker.Stop()

	// The latest reason wins. Only this goroutine sends on killed.
	report := func(err error) {
		select {
		case <-killed:
		default:
		}

		killed <- err
	}

	for {
		select {
		case <-ticker.C:
			logger.Info("script still running", "elapsed", time.Since(started).Round(time.Second).String())

		case sig := <-sigCh:
			if _, ok := seen[sig]; ok {
				logger.Info("received duplicate signal, killing process", "signal", sig.String())
				killProcess(ctx, ps)
				report(ErrDuplicateSignalReceived)

				return
			}

			seen[sig] = struct{}{}

			logger.Info("forwarding signal", "signal", sig.String())

			if err := ps.Signal(sig); err != nil {
				logger.Info("failed to send signal", "signal", sig.String(), "error", err.Error())
			}

			report(ErrSignalReceived)

		case <-ctx.Done():
			logger.Info("context done, killing process")
			killProcess(ctx, ps)
			report(ErrContextDone)

			return

		case <-done:
			return
		}
	}
}

func killProcess(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Debug(ctx, "process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Error(ctx, "process kill error", "pid", ps.Pid, "error", err.Error())

		return
	}

	ctxlog.Info(ctx, "process killed", "pid", ps.Pid)
}

func defaultShell(ctx context.Context) string {
	if runtime.GOOS == goosWindows {
		systemRoot := os.Getenv(winSystemRootEnv)
		if systemRoot == "" {
			systemRoot = `C:\Windows`
		}

		return fmt.Sprintf(`%s\%s\%s`, systemRoot, winSystem32, cmdExe)
	}

	if shell := os.Getenv(shellEnv); shell != "" {
		ctxlog.Debug(ctx, "using SHELL environment variable", "shell", shell)
		return shell
	}

	return binSh
}

// waitReaders waits for both output readers. If they are still open OutputGrace
// after the script exited, the read ends are closed to end them.
func (s *Shell) waitReaders(ctx context.Context, readers *errgroup.Group, pipes ...*os.File) error {
	grace := s.OutputGrace
	if grace <= 0 {
		grace = DefaultOutputGrace
	}

	done := make(chan error, 1)

	go func() {
		done <- readers.Wait()
	}()

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
	}

	ctxlog.Warn(ctx, "script output still open after exit, closing pipes", "grace", grace.String())

	for _, p := range pipes {
		_ = p.Close()
	}

	err := <-done
	if errors.Is(err, os.ErrClosed) {
		return nil
	}

	return err
}
