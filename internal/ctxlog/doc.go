// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger in a context.Context so that every layer of a
// run (loader, resolver, dispatcher, executors) logs through the same handler.
//
// The default handler prints human-friendly lines to stdout. The level comes from the
// INTEGRATOR_LOG_LEVEL environment variable: DEBUG, INFO, WARN or ERROR.
package ctxlog
