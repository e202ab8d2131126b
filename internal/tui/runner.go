// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/integrator/internal/outcome"
	"github.com/matt-FFFFFF/integrator/internal/progress"
)

const eventBufferSize = 1024

var _ progress.Reporter = (*Reporter)(nil)

// Reporter forwards progress events to a running tea.Program.
type Reporter struct {
	program *tea.Program
	closed  bool
	mu      sync.RWMutex
}

// NewReporter creates a Reporter for program.
func NewReporter(program *tea.Program) *Reporter {
	return &Reporter{
		program: program,
	}
}

// Report implements progress.Reporter.
func (tr *Reporter) Report(event progress.Event) {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	if tr.closed || tr.program == nil {
		return
	}

	tr.program.Send(EventMsg{Event: event})
}

// Close implements progress.Reporter.
func (tr *Reporter) Close() {
	tr.mu.Lock()
	defer tr.mu.Unlock()

	tr.closed = true
}

// Work performs a run, reporting progress to reporter.
type Work func(ctx context.Context, reporter progress.Reporter) outcome.Results

// Runner owns the tea.Program for the duration of a run.
type Runner struct {
	model    *Model
	program  *tea.Program
	reporter *Reporter
}

// NewRunner creates a Runner. Extra program options are appended to the defaults,
// which use the alternate screen.
func NewRunner(title string, opts ...tea.ProgramOption) *Runner {
	model := NewModel(title)
	program := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)

	return &Runner{
		model:    model,
		program:  program,
		reporter: NewReporter(program),
	}
}

// Run shows the view while work runs and returns its results once both the work
// has finished and the user has quit. Quitting early hides the view but still
// waits for the work.
func (r *Runner) Run(ctx context.Context, work Work) (outcome.Results, error) {
	resultCh := make(chan outcome.Results, 1)

	// Workers never wait on the view; the listener goroutine does.
	buffered := progress.NewChannelReporter(ctx, eventBufferSize)
	buffered.Listen(progress.ListenerFunc(r.reporter.Report))

	go func() {
		results := work(ctx, buffered)
		buffered.Close()
		resultCh <- results
	}()

	tuiDone := make(chan error, 1)

	go func() {
		_, err := r.program.Run()
		tuiDone <- err
	}()

	var (
		results outcome.Results
		tuiErr  error
	)

	select {
	case results = <-resultCh:
		r.program.Send(CompletedMsg{Results: results})
		tuiErr = <-tuiDone

	case tuiErr = <-tuiDone:
		results = <-resultCh

	case <-ctx.Done():
		r.program.Quit()
		tuiErr = <-tuiDone
		results = <-resultCh
	}

	r.reporter.Close()

	if tuiErr != nil {
		return results, fmt.Errorf("tui: %w", tuiErr)
	}

	return results, nil
}
