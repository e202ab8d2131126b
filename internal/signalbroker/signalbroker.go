// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker fans OS termination signals into a channel.
//
// The first signal of a kind is forwarded to running scripts so they can exit
// cleanly; Watch cancels the run context when the same signal arrives a second time.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/integrator/internal/ctxlog"
)

var termSignals = []os.Signal{
	syscall.SIGINT,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	os.Interrupt,
}

// New returns a channel notified of sigs, or of the termination signals when none are given.
// Callers release it with Stop.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	ch := make(chan os.Signal, 1)

	if len(sigs) == 0 {
		sigs = termSignals
	}

	ctxlog.Debug(ctx, "signal broker created", "signals", sigs)
	signal.Notify(ch, sigs...)

	return ch
}

// Stop stops delivery of signals to ch.
func Stop(ch chan os.Signal) {
	signal.Stop(ch)
}
