// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package outcome

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrGobDecode is returned when a saved result cannot be decoded.
var ErrGobDecode = errors.New("failed to decode result")

// Status is the state of a single script.
type Status int

const (
	// StatusPending means the script is queued behind the concurrency limit.
	StatusPending Status = iota
	// StatusRunning means the script holds a slot.
	StatusRunning
	// StatusSucceeded means the executor returned without error.
	StatusSucceeded
	// StatusFailed means the executor returned an error or panicked. It is terminal.
	StatusFailed
	// StatusSkipped means the script was never submitted, e.g. it does not exist.
	StatusSkipped
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Result is the outcome of one script.
type Result struct {
	Label    string        // Identifier as written in the configuration
	Path     string        // Resolved absolute path
	Status   Status        // Final status
	Error    error         // Failure or skip reason, nil on success
	ExitCode int           // Process exit code, -1 when the script could not run
	StdOut   []byte        // Captured standard output, if the executor captures it
	StdErr   []byte        // Captured standard error, if the executor captures it
	Started  time.Time     // When the script left the queue
	Duration time.Duration // Wall time spent running
}

// Results is a slice of Result pointers.
type Results []*Result

// HasError reports whether any script failed. Skipped scripts are not errors.
func (r Results) HasError() bool {
	return slices.ContainsFunc(r, func(res *Result) bool {
		return res.Status == StatusFailed
	})
}

// Count returns the number of results with the given status.
func (r Results) Count(s Status) int {
	n := 0

	for _, res := range r {
		if res.Status == s {
			n++
		}
	}

	return n
}

// SortByLabel orders results by label, then by path. Dispatch returns results in
// completion order; reports sort them so that repeated runs diff cleanly.
func (r Results) SortByLabel() {
	slices.SortStableFunc(r, func(a, b *Result) int {
		if a.Label != b.Label {
			if a.Label < b.Label {
				return -1
			}

			return 1
		}

		switch {
		case a.Path < b.Path:
			return -1
		case a.Path > b.Path:
			return 1
		default:
			return 0
		}
	})
}

// resultGob is the wire form of Result: errors travel as their message.
type resultGob struct {
	Label    string
	Path     string
	Status   Status
	ErrorMsg string
	ExitCode int
	StdOut   []byte
	StdErr   []byte
	Started  time.Time
	Duration time.Duration
}

// GobEncode implements gob.GobEncoder.
func (r *Result) GobEncode() ([]byte, error) {
	g := resultGob{
		Label:    r.Label,
		Path:     r.Path,
		Status:   r.Status,
		ExitCode: r.ExitCode,
		StdOut:   r.StdOut,
		StdErr:   r.StdErr,
		Started:  r.Started,
		Duration: r.Duration,
	}

	if r.Error != nil {
		g.ErrorMsg = r.Error.Error()
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(g); err != nil {
		return nil, fmt.Errorf("failed to encode result %q: %w", r.Label, err)
	}

	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder. A saved error comes back as a plain error
// carrying the original message.
func (r *Result) GobDecode(data []byte) error {
	var g resultGob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&g); err != nil {
		return errors.Join(ErrGobDecode, err)
	}

	*r = Result{
		Label:    g.Label,
		Path:     g.Path,
		Status:   g.Status,
		ExitCode: g.ExitCode,
		StdOut:   g.StdOut,
		StdErr:   g.StdErr,
		Started:  g.Started,
		Duration: g.Duration,
	}

	if g.ErrorMsg != "" {
		r.Error = errors.New(g.ErrorMsg)
	}

	return nil
}
