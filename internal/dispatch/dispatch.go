// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package dispatch

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/matt-FFFFFF/integrator/internal/ctxlog"
	"github.com/matt-FFFFFF/integrator/internal/executor"
	"github.com/matt-FFFFFF/integrator/internal/outcome"
	"github.com/matt-FFFFFF/integrator/internal/progress"
	"github.com/matt-FFFFFF/integrator/internal/resolver"
	"golang.org/x/sync/errgroup"
)

type options struct {
	reporter progress.Reporter
	runID    string
}

// Option configures Dispatch.
type Option func(*options)

// WithReporter sends a lifecycle event for every state change of every task.
// Dispatch does not close the reporter.
func WithReporter(r progress.Reporter) Option {
	return func(o *options) {
		if r != nil {
			o.reporter = r
		}
	}
}

// WithRunID sets the identifier attached to log lines. A random UUID is used otherwise.
func WithRunID(id string) Option {
	return func(o *options) {
		o.runID = id
	}
}

// Dispatch executes every task with exec, running at most limit at a time, and
// returns one result per task in completion order. A limit below one is treated
// as one. Failures are recorded in the results; Dispatch itself never fails.
func Dispatch(
	ctx context.Context,
	tasks []resolver.Task,
	limit int,
	exec executor.Executor,
	opts ...Option,
) outcome.Results {
	if len(tasks) == 0 {
		return outcome.Results{}
	}

	o := options{
		reporter: progress.NullReporter{},
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.runID == "" {
		o.runID = uuid.NewString()
	}

	logger := ctxlog.Logger(ctx).With("runID", o.runID)

	if effective := EffectiveLimit(limit); effective != limit {
		logger.Warn("parallelism below one, running scripts one at a time", "parallelism", limit)
		limit = effective
	}

	ctx = ctxlog.New(ctx, logger)
	ctx = progress.NewContext(ctx, o.reporter)

	logger.Info("dispatching scripts", "count", len(tasks), "parallelism", limit)

	for _, task := range tasks {
		o.reporter.Report(progress.Event{
			Task:      task.ID,
			Type:      progress.EventQueued,
			Message:   "queued",
			Timestamp: time.Now(),
		})
	}

	resCh := make(chan *outcome.Result, len(tasks))

	var g errgroup.Group

	g.SetLimit(limit)

	for _, task := range tasks {
		g.Go(func() error {
			resCh <- run(ctx, task, exec, o.reporter)
			return nil
		})
	}

	_ = g.Wait()
	close(resCh)

	results := make(outcome.Results, 0, len(tasks))
	for res := range resCh {
		results = append(results, res)
	}

	logger.Info("dispatch complete",
		"succeeded", results.Count(outcome.StatusSucceeded),
		"failed", results.Count(outcome.StatusFailed),
	)

	return results
}

// run executes a single task and never panics.
func run(ctx context.Context, task resolver.Task, exec executor.Executor, reporter progress.Reporter) *outcome.Result {
	logger := ctxlog.Logger(ctx).With("script", task.ID)

	res := &outcome.Result{
		Label:   task.ID,
		Path:    task.Path,
		Status:  outcome.StatusRunning,
		Started: time.Now(),
	}

	reporter.Report(progress.Event{
		Task:      task.ID,
		Type:      progress.EventStarted,
		Message:   "running",
		Timestamp: res.Started,
	})

	logger.Debug("script started", "path", task.Path)

	out, err := safeExecute(ctx, exec, task)

	res.Duration = time.Since(res.Started)
	res.ExitCode = out.ExitCode
	res.StdOut = out.StdOut
	res.StdErr = out.StdErr

	if err != nil {
		res.Status = outcome.StatusFailed
		res.Error = errors.Join(ErrTaskExecution, err)

		if res.ExitCode == 0 {
			res.ExitCode = -1
		}

		logger.Error("error running script", "path", task.Path, "error", err.Error())

		var perr *PanicError
		if errors.As(err, &perr) {
			logger.Debug("recovered panic", "stack", string(perr.Stack))
		}

		reporter.Report(progress.Event{
			Task:      task.ID,
			Type:      progress.EventFailed,
			Message:   "failed",
			Timestamp: time.Now(),
			Data: progress.EventData{
				ExitCode: res.ExitCode,
				Error:    res.Error,
				Duration: res.Duration,
			},
		})

		return res
	}

	res.Status = outcome.StatusSucceeded

	logger.Debug("script finished", "duration", res.Duration.String())

	reporter.Report(progress.Event{
		Task:      task.ID,
		Type:      progress.EventCompleted,
		Message:   "succeeded",
		Timestamp: time.Now(),
		Data: progress.EventData{
			ExitCode: res.ExitCode,
			Duration: res.Duration,
		},
	})

	return res
}

func safeExecute(ctx context.Context, exec executor.Executor, task resolver.Task) (out executor.Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = executor.Output{ExitCode: -1}
			err = &PanicError{
				Task:  task.ID,
				Value: r,
				Stack: debug.Stack(),
			}
		}
	}()

	return exec.Execute(ctx, task)
}

// EffectiveLimit returns the concurrency limit Dispatch uses for limit.
func EffectiveLimit(limit int) int {
	return max(limit, 1)
}
