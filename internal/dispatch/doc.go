// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package dispatch runs resolved scripts on a bounded pool of goroutines.
//
// Every task is executed exactly once. At most limit tasks run at the same time;
// the rest wait in submission order for a free slot. A task that returns an error
// or panics is recorded as failed and logged, and has no effect on any other task.
// Dispatch always waits for every submitted task before returning.
package dispatch
