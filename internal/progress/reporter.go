// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"sync"
)

// ChannelReporter buffers events in a channel for a single listener goroutine.
// Events are dropped rather than blocking the sender once the buffer is full.
type ChannelReporter struct {
	ch     chan Event
	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.RWMutex
	wg     sync.WaitGroup
	closed bool
}

// NewChannelReporter creates a new ChannelReporter with the specified buffer size.
func NewChannelReporter(ctx context.Context, bufferSize int) *ChannelReporter {
	reporterCtx, cancel := context.WithCancel(ctx)

	return &ChannelReporter{
		ch:     make(chan Event, bufferSize),
		ctx:    reporterCtx,
		cancel: cancel,
	}
}

// Report implements Reporter.
func (cr *ChannelReporter) Report(event Event) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()

	if cr.closed {
		return
	}

	select {
	case cr.ch <- event:
	case <-cr.ctx.Done():
	default:
	}
}

// Close stops accepting events, lets the listener drain what is buffered and waits for it.
func (cr *ChannelReporter) Close() {
	cr.mu.Lock()

	if cr.closed {
		cr.mu.Unlock()
		return
	}

	cr.closed = true
	close(cr.ch)
	cr.mu.Unlock()

	cr.wg.Wait()
	cr.cancel()
}

// Listen forwards events to listener on a new goroutine until the reporter is closed.
func (cr *ChannelReporter) Listen(listener Listener) {
	cr.wg.Add(1)

	go func() {
		defer cr.wg.Done()

		for event := range cr.ch {
			listener.OnEvent(event)
		}
	}()
}

// Multi fans every event out to each reporter in order.
type Multi []Reporter

// Report implements Reporter.
func (m Multi) Report(event Event) {
	for _, r := range m {
		if r != nil {
			r.Report(event)
		}
	}
}

// Close implements Reporter.
func (m Multi) Close() {
	for _, r := range m {
		if r != nil {
			r.Close()
		}
	}
}
