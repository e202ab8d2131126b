// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrettyHandler(t *testing.T) {
	handler := NewPrettyHandler(nil)

	require.NotNil(t, handler)
	assert.NotNil(t, handler.h)
	assert.NotNil(t, handler.b)
	assert.NotNil(t, handler.m)
	assert.NotNil(t, handler.writer)
	assert.False(t, handler.colour)
}

func TestFunctionalOptions(t *testing.T) {
	var buf bytes.Buffer

	handler := NewPrettyHandler(nil, WithDestinationWriter(&buf), WithColour(), WithOutputEmptyAttrs())

	assert.Same(t, &buf, handler.writer)
	assert.True(t, handler.colour)
	assert.True(t, handler.outputEmptyAttrs)
}

func TestPrettyHandler_Enabled(t *testing.T) {
	handler := NewPrettyHandler(&slog.HandlerOptions{Level: slog.LevelWarn})

	assert.False(t, handler.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, handler.Enabled(context.Background(), slog.LevelError))
}

func TestPrettyHandler_WithAttrsAndGroupShareState(t *testing.T) {
	handler := NewPrettyHandler(&slog.HandlerOptions{}, WithColour())

	withAttrs, ok := handler.WithAttrs([]slog.Attr{slog.String("run", "1")}).(*PrettyHandler)
	require.True(t, ok)
	assert.Same(t, handler.b, withAttrs.b)
	assert.Same(t, handler.m, withAttrs.m)
	assert.True(t, withAttrs.colour)

	withGroup, ok := handler.WithGroup("dispatch").(*PrettyHandler)
	require.True(t, ok)
	assert.Same(t, handler.b, withGroup.b)
	assert.Same(t, handler.m, withGroup.m)
}

func TestPrettyHandler_Handle(t *testing.T) {
	tests := []struct {
		name     string
		level    slog.Level
		message  string
		attrs    []slog.Attr
		options  []Option
		contains []string
		excludes []string
	}{
		{
			name:     "info with attributes",
			level:    slog.LevelInfo,
			message:  "running script",
			attrs:    []slog.Attr{slog.String("script", "a.sh"), slog.Int("slot", 2)},
			contains: []string{"INFO:", "running script", `"script": "a.sh"`, `"slot": 2`},
		},
		{
			name:     "warn without attributes",
			level:    slog.LevelWarn,
			message:  "script not found",
			contains: []string{"WARN:", "script not found"},
			excludes: []string{"{"},
		},
		{
			name:     "empty attributes printed on request",
			level:    slog.LevelError,
			message:  "failed",
			options:  []Option{WithOutputEmptyAttrs()},
			contains: []string{"ERROR:", "failed", "{}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			opts := append([]Option{WithDestinationWriter(&buf)}, tt.options...)
			handler := NewPrettyHandler(&slog.HandlerOptions{Level: slog.LevelDebug}, opts...)

			r := slog.NewRecord(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), tt.level, tt.message, 0)
			r.AddAttrs(tt.attrs...)

			require.NoError(t, handler.Handle(context.Background(), r))

			out := buf.String()
			assert.True(t, strings.HasPrefix(out, "[03:04:05.000] "), out)
			assert.True(t, strings.HasSuffix(out, "\n"))

			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}

			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestPrettyHandler_Handle_WithReplaceAttr(t *testing.T) {
	var buf bytes.Buffer

	handler := NewPrettyHandler(&slog.HandlerOptions{
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}

			return a
		},
	}, WithDestinationWriter(&buf))

	r := slog.NewRecord(time.Now(), slog.LevelInfo, "no time", 0)
	require.NoError(t, handler.Handle(context.Background(), r))

	assert.Equal(t, "INFO: no time\n", buf.String())
}

func TestPrettyHandler_ConcurrentHandle(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(NewPrettyHandler(nil, WithDestinationWriter(&buf)))

	var wg sync.WaitGroup

	for i := range 20 {
		wg.Add(1)

		go func() {
			defer wg.Done()
			logger.Info("tick", "n", i)
		}()
	}

	wg.Wait()

	assert.Equal(t, 20, strings.Count(buf.String(), "\n"))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestPrettyHandler_WriteError(t *testing.T) {
	handler := NewPrettyHandler(nil, WithDestinationWriter(failingWriter{}))

	err := handler.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "x", 0))
	require.ErrorIs(t, err, ErrIoWrite)
}

func TestSuppressDefaults(t *testing.T) {
	fn := suppressDefaults(nil)

	assert.Equal(t, slog.Attr{}, fn(nil, slog.String(slog.TimeKey, "t")))
	assert.Equal(t, slog.Attr{}, fn(nil, slog.String(slog.LevelKey, "l")))
	assert.Equal(t, slog.Attr{}, fn(nil, slog.String(slog.MessageKey, "m")))
	assert.Equal(t, slog.String("script", "a.sh"), fn(nil, slog.String("script", "a.sh")))

	upper := suppressDefaults(func(_ []string, a slog.Attr) slog.Attr {
		return slog.String(a.Key, strings.ToUpper(a.Value.String()))
	})
	assert.Equal(t, slog.String("script", "A.SH"), upper(nil, slog.String("script", "a.sh")))
}
