// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/integrator/internal/outcome"
	"github.com/matt-FFFFFF/integrator/internal/progress"
)

const (
	defaultWidth      = 80
	defaultHeight     = 20
	reservedLines     = 7 // title, border, status bar and help
	minViewportWidth  = 20
	minViewportHeight = 1
	durationRounding  = 100 * time.Millisecond
	tickInterval      = 500 * time.Millisecond
	ellipsis          = "..."
)

// EventMsg wraps a progress event for the tea framework.
type EventMsg struct {
	Event progress.Event
}

// CompletedMsg indicates that every script has finished.
type CompletedMsg struct {
	Results outcome.Results
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-2, minViewportWidth)
		m.viewport.Height = max(msg.Height-reservedLines, minViewportHeight)

	case EventMsg:
		m.apply(msg.Event)
		m.viewport.SetContent(m.renderRows(time.Now()))

		return m, nil

	case CompletedMsg:
		m.completed = true
		m.results = msg.Results
		m.reconcile(msg.Results)
		m.viewport.SetContent(m.renderRows(time.Now()))

		return m, nil

	case tickMsg:
		m.viewport.SetContent(m.renderRows(time.Time(msg)))

		if m.completed {
			return m, nil
		}

		return m, tick()
	}

	var cmd tea.Cmd

	m.viewport, cmd = m.viewport.Update(msg)

	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.styles.Title.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.styles.Border.Render(m.viewport.View()))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")

	help := "↑/↓ to scroll, 'q' to quit"
	if m.completed {
		help = "run complete, 'q' to quit and show the report"
	}

	b.WriteString(m.styles.Help.Render(help))

	return b.String()
}

func (m *Model) renderRows(now time.Time) string {
	var b strings.Builder

	for _, r := range m.rows {
		m.renderRow(&b, r, now)
	}

	if m.completed {
		b.WriteString("\n")

		if m.results.HasError() {
			b.WriteString(m.styles.Failed.Render("Run completed with failures"))
		} else {
			b.WriteString(m.styles.Success.Render("Run completed"))
		}

		b.WriteString("\n")
	}

	return b.String()
}

func (m *Model) renderRow(b *strings.Builder, r *Row, now time.Time) {
	width := max(m.viewport.Width, minViewportWidth)
	leftWidth := width / 2 //nolint:mnd
	rightWidth := width - leftWidth

	var icon string

	style := m.styles.Pending

	switch r.Status {
	case outcome.StatusPending:
		icon = "⏳"
	case outcome.StatusRunning:
		icon = "⚡"
		style = m.styles.Running
	case outcome.StatusSucceeded:
		icon = "✅"
		style = m.styles.Success
	case outcome.StatusFailed:
		icon = "❌"
		style = m.styles.Failed
	case outcome.StatusSkipped:
		icon = "⏭️"
		style = m.styles.Skipped
	}

	left := r.Label
	if d := r.Elapsed(now); d > 0 {
		left += fmt.Sprintf(" (%s)", d.Round(durationRounding))
	}

	left = truncate(left, leftWidth-3) //nolint:mnd // icon and spacing

	var right string

	switch {
	case r.ErrorMsg != "" && (r.Status == outcome.StatusFailed || r.Status == outcome.StatusSkipped):
		right = m.styles.Error.Render(truncate(r.ErrorMsg, rightWidth))
	case r.LastOutput != "" && r.Status == outcome.StatusRunning:
		right = m.styles.Output.Render(truncate(r.LastOutput, rightWidth))
	}

	b.WriteString(icon)
	b.WriteString(" ")
	b.WriteString(style.Render(left))
	b.WriteString(strings.Repeat(" ", max(leftWidth-3-len(left), 1))) //nolint:mnd
	b.WriteString(right)
	b.WriteString("\n")
}

func (m *Model) renderStatusBar() string {
	c := m.counts()

	return fmt.Sprintf("%d running · %d pending · %s · %s · %s",
		c[outcome.StatusRunning],
		c[outcome.StatusPending],
		m.styles.Success.Render(fmt.Sprintf("%d succeeded", c[outcome.StatusSucceeded])),
		m.styles.Failed.Render(fmt.Sprintf("%d failed", c[outcome.StatusFailed])),
		m.styles.Skipped.Render(fmt.Sprintf("%d skipped", c[outcome.StatusSkipped])),
	)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}

	if n <= len(ellipsis) {
		return s[:n]
	}

	return s[:n-len(ellipsis)] + ellipsis
}
