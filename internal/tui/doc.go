// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui provides an interactive terminal view of a run. It lists every
// script with its status, elapsed time and the last line it printed, updated
// live from progress events. The view stays open after the run completes until
// the user quits.
package tui
