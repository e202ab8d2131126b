// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color wraps report and log text in ANSI escape codes.
//
// Colour is decided once at start-up: NO_COLOR always wins, FORCE_COLOR turns it on
// for pipes and CI logs, otherwise it is on only when stdout is a terminal
// (detected with golang.org/x/term).
package color
