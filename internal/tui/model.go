// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/integrator/internal/outcome"
	"github.com/matt-FFFFFF/integrator/internal/progress"
)

// Row is the display state of one script.
type Row struct {
	Label      string
	Status     outcome.Status
	Started    time.Time
	Ended      time.Time
	LastOutput string
	ErrorMsg   string
}

// Elapsed returns the running time so far, or the final duration once ended.
func (r *Row) Elapsed(now time.Time) time.Duration {
	switch {
	case r.Started.IsZero():
		return 0
	case r.Ended.IsZero():
		return now.Sub(r.Started)
	default:
		return r.Ended.Sub(r.Started)
	}
}

// Model is the bubbletea model. bubbletea calls Update and View from a single
// goroutine, so the model is not locked.
type Model struct {
	title     string
	rows      []*Row
	index     map[string]*Row
	viewport  viewport.Model
	width     int
	height    int
	completed bool
	quitting  bool
	results   outcome.Results
	styles    *Styles
}

// Styles contains all the styling for the TUI.
type Styles struct {
	Title   lipgloss.Style
	Pending lipgloss.Style
	Running lipgloss.Style
	Success lipgloss.Style
	Failed  lipgloss.Style
	Skipped lipgloss.Style
	Output  lipgloss.Style
	Error   lipgloss.Style
	Help    lipgloss.Style
	Border  lipgloss.Style
}

// NewStyles creates the default styling for the TUI.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Running: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Success: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Skipped: lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")),
		Output: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Italic(true),
		Error: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")),
	}
}

// NewModel creates a model with no rows. Rows appear in the order their first
// event arrives.
func NewModel(title string) *Model {
	return &Model{
		title:    title,
		index:    make(map[string]*Row),
		viewport: viewport.New(defaultWidth, defaultHeight),
		styles:   NewStyles(),
	}
}

// Rows returns the rows in display order.
func (m *Model) Rows() []*Row {
	return m.rows
}

func (m *Model) row(label string) *Row {
	if r, ok := m.index[label]; ok {
		return r
	}

	r := &Row{Label: label, Status: outcome.StatusPending}
	m.index[label] = r
	m.rows = append(m.rows, r)

	return r
}

// apply folds a progress event into the row for its script.
func (m *Model) apply(e progress.Event) {
	r := m.row(e.Task)

	switch e.Type {
	case progress.EventQueued:
		r.Status = outcome.StatusPending
	case progress.EventStarted:
		r.Status = outcome.StatusRunning
		r.Started = e.Timestamp
	case progress.EventOutput:
		if e.Data.OutputLine != "" {
			r.LastOutput = e.Data.OutputLine
		}
	case progress.EventCompleted:
		r.Status = outcome.StatusSucceeded
		r.Ended = e.Timestamp
	case progress.EventFailed:
		r.Status = outcome.StatusFailed
		r.Ended = e.Timestamp

		if e.Data.Error != nil {
			r.ErrorMsg = e.Data.Error.Error()
		}
	case progress.EventSkipped:
		r.Status = outcome.StatusSkipped

		if e.Data.Error != nil {
			r.ErrorMsg = e.Data.Error.Error()
		}
	}
}

// reconcile sets each row to its final status, covering events the view never received.
func (m *Model) reconcile(results outcome.Results) {
	for _, res := range results {
		r := m.row(res.Label)
		r.Status = res.Status

		if r.ErrorMsg == "" && res.Error != nil {
			r.ErrorMsg = res.Error.Error()
		}
	}
}

// counts returns the number of rows per status.
func (m *Model) counts() map[outcome.Status]int {
	c := make(map[outcome.Status]int, len(m.rows))
	for _, r := range m.rows {
		c[r.Status]++
	}

	return c
}
