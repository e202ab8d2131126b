// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/integrator/internal/outcome"
	"github.com/matt-FFFFFF/integrator/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func send(m *Model, events ...progress.Event) {
	for _, e := range events {
		m.Update(EventMsg{Event: e})
	}
}

func TestModel_Lifecycle(t *testing.T) {
	m := NewModel("integrator")
	start := time.Now()

	send(m,
		progress.Event{Task: "missing.sh", Type: progress.EventSkipped, Data: progress.EventData{Error: errors.New("script not found")}},
		progress.Event{Task: "a.sh", Type: progress.EventQueued},
		progress.Event{Task: "b.sh", Type: progress.EventQueued},
		progress.Event{Task: "a.sh", Type: progress.EventStarted, Timestamp: start},
		progress.Event{Task: "a.sh", Type: progress.EventOutput, Data: progress.EventData{OutputLine: "step 1"}},
		progress.Event{Task: "a.sh", Type: progress.EventOutput, Data: progress.EventData{OutputLine: ""}},
	)

	rows := m.Rows()
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"missing.sh", "a.sh", "b.sh"}, []string{rows[0].Label, rows[1].Label, rows[2].Label})
	assert.Equal(t, outcome.StatusSkipped, rows[0].Status)
	assert.Equal(t, "script not found", rows[0].ErrorMsg)
	assert.Equal(t, outcome.StatusRunning, rows[1].Status)
	assert.Equal(t, "step 1", rows[1].LastOutput, "empty lines do not replace output")
	assert.Equal(t, outcome.StatusPending, rows[2].Status)

	send(m,
		progress.Event{Task: "a.sh", Type: progress.EventCompleted, Timestamp: start.Add(time.Second)},
		progress.Event{Task: "b.sh", Type: progress.EventStarted, Timestamp: start},
		progress.Event{Task: "b.sh", Type: progress.EventFailed, Timestamp: start.Add(2 * time.Second), Data: progress.EventData{Error: assert.AnError}},
	)

	assert.Equal(t, outcome.StatusSucceeded, rows[1].Status)
	assert.Equal(t, time.Second, rows[1].Elapsed(time.Now()))
	assert.Equal(t, outcome.StatusFailed, rows[2].Status)
	assert.Contains(t, rows[2].ErrorMsg, "assert.AnError")

	c := m.counts()
	assert.Equal(t, 1, c[outcome.StatusSucceeded])
	assert.Equal(t, 1, c[outcome.StatusFailed])
	assert.Equal(t, 1, c[outcome.StatusSkipped])
}

func TestModel_CompletedReconcilesRows(t *testing.T) {
	m := NewModel("integrator")

	send(m, progress.Event{Task: "a.sh", Type: progress.EventStarted, Timestamp: time.Now()})

	m.Update(CompletedMsg{Results: outcome.Results{
		{Label: "a.sh", Status: outcome.StatusFailed, Error: assert.AnError},
		{Label: "b.sh", Status: outcome.StatusSucceeded},
	}})

	rows := m.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, outcome.StatusFailed, rows[0].Status)
	assert.Contains(t, rows[0].ErrorMsg, "assert.AnError")
	assert.Equal(t, outcome.StatusSucceeded, rows[1].Status)
}

func TestModel_View(t *testing.T) {
	m := NewModel("integrator")
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 30})

	send(m,
		progress.Event{Task: "a.sh", Type: progress.EventStarted, Timestamp: time.Now()},
		progress.Event{Task: "a.sh", Type: progress.EventOutput, Data: progress.EventData{OutputLine: "working"}},
		progress.Event{Task: "b.sh", Type: progress.EventQueued},
	)

	view := m.View()
	assert.Contains(t, view, "integrator")
	assert.Contains(t, view, "a.sh")
	assert.Contains(t, view, "working")
	assert.Contains(t, view, "b.sh")
	assert.Contains(t, view, "1 running · 1 pending")

	m.Update(CompletedMsg{Results: outcome.Results{{Label: "a.sh", Status: outcome.StatusFailed}}})
	assert.Contains(t, m.View(), "Run completed with failures")
	assert.Contains(t, m.View(), "'q' to quit and show the report")
}

func TestModel_Quit(t *testing.T) {
	m := NewModel("integrator")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestRow_Elapsed(t *testing.T) {
	now := time.Now()

	assert.Zero(t, (&Row{}).Elapsed(now))
	assert.Equal(t, time.Minute, (&Row{Started: now.Add(-time.Minute)}).Elapsed(now))
	assert.Equal(t, time.Second, (&Row{Started: now, Ended: now.Add(time.Second)}).Elapsed(now.Add(time.Hour)))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a long...", truncate("a long line", 9))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "abcdef", truncate("abcdef", 0))
}

func TestReporter_NilProgramAndClose(t *testing.T) {
	reporter := &Reporter{}
	event := progress.Event{Task: "a.sh", Type: progress.EventStarted}

	assert.NotPanics(t, func() { reporter.Report(event) })
	assert.NotPanics(t, reporter.Close)
	assert.NotPanics(t, func() { reporter.Report(event) })
}

func TestRunner_UserQuitStillWaitsForWork(t *testing.T) {
	out := &bytes.Buffer{}
	runner := NewRunner("integrator", tea.WithInput(strings.NewReader("q")), tea.WithOutput(out), tea.WithoutRenderer())

	release := make(chan struct{})

	work := func(_ context.Context, reporter progress.Reporter) outcome.Results {
		reporter.Report(progress.Event{Task: "a.sh", Type: progress.EventStarted, Timestamp: time.Now()})
		<-release

		return outcome.Results{{Label: "a.sh", Status: outcome.StatusSucceeded}}
	}

	go func() {
		time.Sleep(50 * time.Millisecond)
		close(release)
	}()

	results, err := runner.Run(context.Background(), work)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a.sh", results[0].Label)
}
