// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package executor defines how a single script is run.
//
// The dispatcher treats an Executor as opaque: it may block, return an error, or
// panic, and the dispatcher isolates each of those from every other script.
// Two implementations are provided. LogOnly records that a script would run and
// succeeds. Shell starts the script as a child process and captures its output.
package executor
