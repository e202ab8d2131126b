// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Code is an SGR parameter, e.g. 31 for a red foreground.
type Code int

const (
	// NoColor is the environment variable that disables color output.
	NoColor = "NO_COLOR"
	// ForceColor is the environment variable that forces color output.
	ForceColor = "FORCE_COLOR"

	escape = "\033["
	end    = "m"
	reset  = escape + "0" + end
	spare  = 16
)

// Text attributes.
const (
	Reset Code = 0
	Bold  Code = 1
	Faint Code = 2
)

// Foreground colours used by the report and the log handler.
const (
	FgRed     Code = 31
	FgGreen   Code = 32
	FgYellow  Code = 33
	FgBlue    Code = 34
	FgMagenta Code = 35
	FgCyan    Code = 36
	FgWhite   Code = 37

	FgHiBlack   Code = 90
	FgHiRed     Code = 91
	FgHiGreen   Code = 92
	FgHiMagenta Code = 95
	FgHiWhite   Code = 97
)

var enabled = isColorCapable()

// Enabled reports whether colour output was enabled at start-up.
func Enabled() bool {
	return enabled
}

// ControlString renders the escape sequence for the codes regardless of whether
// colour is enabled. It is empty when colour is disabled.
func ControlString(codes ...Code) string {
	if !enabled {
		return ""
	}

	return sequence(codes)
}

// Colorize wraps str in the given codes and a trailing reset.
func Colorize(str string, codes ...Code) string {
	if !enabled || len(codes) == 0 {
		return str
	}

	sb := strings.Builder{}
	sb.Grow(len(str) + len(reset) + spare)
	sb.WriteString(sequence(codes))
	sb.WriteString(str)
	sb.WriteString(reset)

	return sb.String()
}

// ColorizeNoReset is like Colorize but leaves the attributes set, so that text
// written afterwards keeps the colour until the next ControlString(Reset).
func ColorizeNoReset(str string, codes ...Code) string {
	if !enabled || len(codes) == 0 {
		return str
	}

	return sequence(codes) + str
}

func sequence(codes []Code) string {
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = strconv.Itoa(int(c))
	}

	return escape + strings.Join(parts, ";") + end
}

func isColorCapable() bool {
	if os.Getenv(NoColor) != "" {
		return false
	}

	if os.Getenv(ForceColor) != "" {
		return true
	}

	return term.IsTerminal(int(os.Stdout.Fd()))
}
