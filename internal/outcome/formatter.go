// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package outcome

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/matt-FFFFFF/integrator/internal/color"
)

const durationRounding = time.Millisecond

// OutputOptions controls what is included in the output.
type OutputOptions struct {
	IncludeStdOut      bool // Whether to include stdout in the output
	IncludeStdErr      bool // Whether to include stderr in the output
	ShowSuccessDetails bool // Whether to show output for successful scripts
	ShowDetails        bool // Whether to show resolved paths and durations
	SortByLabel        bool // Order by script instead of completion
}

// DefaultOutputOptions returns a default set of output options.
func DefaultOutputOptions() *OutputOptions {
	return &OutputOptions{
		IncludeStdErr: true,
	}
}

// WriteText writes one status line per result, followed by a summary line.
func (r Results) WriteText(w io.Writer, options *OutputOptions) error {
	if options == nil {
		options = DefaultOutputOptions()
	}

	if options.SortByLabel {
		r = slices.Clone(r)
		r.SortByLabel()
	}

	for _, res := range r {
		if err := writeResult(w, res, options); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "%d succeeded, %d failed, %d skipped\n",
		r.Count(StatusSucceeded), r.Count(StatusFailed), r.Count(StatusSkipped))

	return err //nolint:wrapcheck
}

func writeResult(w io.Writer, r *Result, options *OutputOptions) error {
	var statusStr, labelPrefix string

	errColor := color.FgWhite

	switch r.Status {
	case StatusSkipped:
		statusStr = color.Colorize("~", color.FgYellow)
		labelPrefix = color.ControlString(color.Bold, color.FgYellow)
		errColor = color.FgYellow
	case StatusFailed:
		statusStr = color.Colorize("✗", color.FgRed)
		labelPrefix = color.ControlString(color.Bold, color.FgRed)
		errColor = color.FgRed
	case StatusSucceeded:
		statusStr = color.Colorize("✓", color.FgGreen)
		labelPrefix = color.ControlString(color.Bold, color.FgGreen)
	default:
		statusStr = color.Colorize("?", color.FgWhite)
	}

	label := r.Label
	if label == "" {
		label = "[unnamed]"
	}

	var sb strings.Builder

	sb.WriteString(statusStr + " " + labelPrefix + label + color.ControlString(color.Reset))

	if r.ExitCode != 0 {
		fmt.Fprintf(&sb, " (exit code: %d)", r.ExitCode)
	}

	if options.ShowDetails && r.Status != StatusSkipped {
		fmt.Fprintf(&sb, " [%s]", r.Duration.Round(durationRounding))
	}

	sb.WriteString("\n")

	if options.ShowDetails && r.Path != "" {
		fmt.Fprintf(&sb, "  ➜ Path: %s\n", r.Path)
	}

	if r.Error != nil {
		fmt.Fprintf(&sb, "  %s %s%s\n",
			color.ColorizeNoReset("➜ Error:", errColor),
			r.Error.Error(),
			color.ControlString(color.Reset),
		)
	}

	showOutput := r.Status == StatusFailed || (r.Status == StatusSucceeded && options.ShowSuccessDetails)

	if showOutput && options.IncludeStdOut && len(r.StdOut) > 0 {
		sb.WriteString("  ➜ Output:\n")
		sb.WriteString(indent(r.StdOut, "     "))
	}

	if showOutput && options.IncludeStdErr && len(r.StdErr) > 0 {
		sb.WriteString("  " + color.Colorize("➜ Error Output:", color.FgHiRed) + "\n")
		sb.WriteString(indent(r.StdErr, "     "))
	}

	_, err := io.WriteString(w, sb.String())

	return err //nolint:wrapcheck
}

// indent prefixes every non-empty line of output.
func indent(output []byte, prefix string) string {
	lines := strings.Split(strings.TrimRight(string(output), "\n"), "\n")

	sb := strings.Builder{}
	sb.Grow(len(output) + len(lines)*len(prefix))

	for _, line := range lines {
		if line != "" {
			sb.WriteString(prefix)
			sb.WriteString(line)
		}

		sb.WriteString("\n")
	}

	return sb.String()
}
