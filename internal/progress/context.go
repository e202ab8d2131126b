// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import "context"

type reporterKey struct{}

// NewContext returns a copy of ctx carrying r, so that code running a script can
// report output without holding a reference to the reporter.
func NewContext(ctx context.Context, r Reporter) context.Context {
	return context.WithValue(ctx, reporterKey{}, r)
}

// FromContext returns the reporter stored in ctx, or a NullReporter.
func FromContext(ctx context.Context) Reporter {
	if r, ok := ctx.Value(reporterKey{}).(Reporter); ok && r != nil {
		return r
	}

	return NullReporter{}
}
