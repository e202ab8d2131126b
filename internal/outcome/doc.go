// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package outcome holds the per-script results of a run and renders them.
//
// Results are transient by default; they are only written to disk when the user asks
// for it, in which case Run is gob-encoded and can be shown again later.
package outcome
