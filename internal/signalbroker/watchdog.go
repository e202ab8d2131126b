// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/integrator/internal/ctxlog"
)

// Watch drains sigCh until it is closed. The second signal of the same type cancels
// the run; Watch then closes sigCh and returns.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for sig := range sigCh {
		if _, ok := seen[sig]; ok {
			ctxlog.Warn(ctx, "second signal received, cancelling remaining scripts", "signal", sig.String())
			close(sigCh)
			cancel()

			return
		}

		ctxlog.Info(ctx, "signal received, press again to cancel the run", "signal", sig.String())

		seen[sig] = struct{}{}
	}
}
