// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress describes the lifecycle of each script as a stream of events.
//
// The dispatcher emits an event for every state transition (queued, started,
// completed, failed) and executors may add output events. Consumers such as the TUI
// and the metrics collector implement Reporter; Multi fans one stream out to several.
package progress
