// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestWatch(t *testing.T) {
	tests := []struct {
		name       string
		signals    []os.Signal
		wantCancel bool
	}{
		{
			name:       "first signal does not cancel",
			signals:    []os.Signal{os.Interrupt},
			wantCancel: false,
		},
		{
			name:       "second signal of the same type cancels",
			signals:    []os.Signal{os.Interrupt, os.Interrupt},
			wantCancel: true,
		},
		{
			name:       "different signals do not cancel",
			signals:    []os.Signal{os.Interrupt, syscall.SIGTERM},
			wantCancel: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer goleak.VerifyNone(t)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, len(tt.signals))

			var wg sync.WaitGroup

			wg.Add(1)

			go func() {
				defer wg.Done()
				Watch(ctx, sigCh, cancel)
			}()

			for _, s := range tt.signals {
				sigCh <- s
			}

			if tt.wantCancel {
				assert.Eventually(t, func() bool { return ctx.Err() != nil }, time.Second, 5*time.Millisecond)
				wg.Wait()

				_, open := <-sigCh
				assert.False(t, open, "Watch should close the channel after cancelling")

				return
			}

			time.Sleep(50 * time.Millisecond)
			assert.NoError(t, ctx.Err())
			close(sigCh)
			wg.Wait()
		})
	}
}

func TestNewAndStop(t *testing.T) {
	ch := New(context.Background(), os.Interrupt)
	defer Stop(ch)

	assert.Equal(t, 1, cap(ch))
}
