// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"
)

// Event is a single lifecycle update for one script.
type Event struct {
	Task      string    // Script identifier as written in the configuration
	Type      EventType // What happened
	Message   string    // Human-readable status message
	Timestamp time.Time // When the event occurred
	Data      EventData // Type-specific data
}

// EventType represents the type of progress event.
type EventType int

const (
	// EventQueued indicates the script was submitted and waits for a free slot.
	EventQueued EventType = iota
	// EventStarted indicates the script occupies a slot and is executing.
	EventStarted
	// EventOutput indicates a new line of output is available.
	EventOutput
	// EventCompleted indicates successful completion.
	EventCompleted
	// EventFailed indicates the script failed. Failed is terminal.
	EventFailed
	// EventSkipped indicates the script was never submitted, e.g. it does not exist.
	EventSkipped
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventQueued:
		return "queued"
	case EventStarted:
		return "started"
	case EventOutput:
		return "output"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	case EventSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further events follow for the script.
func (et EventType) Terminal() bool {
	return et == EventCompleted || et == EventFailed || et == EventSkipped
}

// EventData contains type-specific information for progress events.
type EventData struct {
	// For EventOutput
	OutputLine string

	// For EventCompleted/EventFailed
	ExitCode int
	Error    error
	Duration time.Duration
}

// Reporter receives progress events.
type Reporter interface {
	// Report sends a progress event. Implementations must be safe for concurrent use
	// and must not block the caller for long.
	Report(event Event)
	// Close signals that no more events will be sent and cleans up resources.
	Close()
}

// Listener consumes events delivered by a ChannelReporter.
type Listener interface {
	OnEvent(event Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(Event)

// OnEvent calls f(event).
func (f ListenerFunc) OnEvent(event Event) {
	f(event)
}

// NullReporter is a no-op Reporter.
type NullReporter struct{}

// Report implements Reporter.
func (NullReporter) Report(Event) {}

// Close implements Reporter.
func (NullReporter) Close() {}

// NewNullReporter creates a new NullReporter.
func NewNullReporter() Reporter {
	return NullReporter{}
}
