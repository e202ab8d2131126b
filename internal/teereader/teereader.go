// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package teereader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"
)

// DefaultMaxBytes is the capture limit used when none is given.
const DefaultMaxBytes = 8 * 1024 * 1024

// ErrOverflow is returned by Drain when the stream exceeded the capture limit.
var ErrOverflow = errors.New("output exceeds capture limit")

// LineFunc is called with every complete line, without its trailing newline.
type LineFunc func(line string)

// Reader wraps an io.Reader, keeping a bounded copy of everything read and the
// last complete line. It is safe for concurrent use.
type Reader struct {
	r         io.Reader
	max       int
	onLine    LineFunc
	mu        sync.RWMutex
	captured  bytes.Buffer
	truncated bool
	last      string
	partial   []byte
}

// Option configures a Reader.
type Option func(*Reader)

// WithMaxBytes sets how many bytes are kept. Bytes beyond the limit are read and
// discarded so the writer never blocks.
func WithMaxBytes(n int) Option {
	return func(r *Reader) {
		r.max = n
	}
}

// WithLineFunc registers fn to be called for each complete line.
func WithLineFunc(fn LineFunc) Option {
	return func(r *Reader) {
		r.onLine = fn
	}
}

// New returns a Reader over r.
func New(r io.Reader, opts ...Option) *Reader {
	tr := &Reader{
		r:   r,
		max: DefaultMaxBytes,
	}

	for _, opt := range opts {
		opt(tr)
	}

	return tr
}

// Read implements io.Reader.
func (tr *Reader) Read(p []byte) (int, error) {
	n, err := tr.r.Read(p)
	if n > 0 {
		tr.consume(p[:n])
	}

	return n, err //nolint:wrapcheck
}

// Drain reads the underlying reader to EOF. It returns ErrOverflow if output was
// truncated, or the read error.
func (tr *Reader) Drain() error {
	if _, err := io.Copy(io.Discard, tr); err != nil {
		return fmt.Errorf("failed to read output: %w", err)
	}

	if tr.Truncated() {
		return fmt.Errorf("%w of %d bytes", ErrOverflow, tr.max)
	}

	return nil
}

func (tr *Reader) consume(data []byte) {
	var lines []string

	tr.mu.Lock()

	if room := tr.max - tr.captured.Len(); room > 0 {
		if len(data) > room {
			tr.captured.Write(data[:room])
			tr.truncated = true
		} else {
			tr.captured.Write(data)
		}
	} else {
		tr.truncated = true
	}

	// A line longer than max keeps its first max bytes.
	for len(data) > 0 {
		chunk, rest, complete := bytes.Cut(data, []byte{'\n'})

		if room := tr.max - len(tr.partial); len(chunk) > room {
			chunk = chunk[:max(room, 0)]
			tr.truncated = true
		}

		tr.partial = append(tr.partial, chunk...)

		if !complete {
			break
		}

		line := strings.TrimSuffix(string(tr.partial), "\r")
		tr.last = line
		lines = append(lines, line)
		tr.partial = tr.partial[:0]
		data = rest
	}

	onLine := tr.onLine

	tr.mu.Unlock()

	if onLine == nil {
		return
	}

	for _, l := range lines {
		onLine(l)
	}
}

// LastLine returns the last complete line read so far. When maxLength is
// positive, longer lines are cut and end with "...".
func (tr *Reader) LastLine(maxLength int) string {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	return truncate(tr.last, maxLength)
}

// Partial returns data after the last newline.
func (tr *Reader) Partial() string {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	return string(tr.partial)
}

// Bytes returns a copy of the captured output.
func (tr *Reader) Bytes() []byte {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	return bytes.Clone(tr.captured.Bytes())
}

// Truncated reports whether output beyond the limit was discarded.
func (tr *Reader) Truncated() bool {
	tr.mu.RLock()
	defer tr.mu.RUnlock()

	return tr.truncated
}

const ellipsis = "..."

func truncate(s string, maxLength int) string {
	if maxLength <= 0 || len(s) <= maxLength {
		return s
	}

	if maxLength <= len(ellipsis) {
		return s[:runeBoundary(s, maxLength)]
	}

	return s[:runeBoundary(s, maxLength-len(ellipsis))] + ellipsis
}

// runeBoundary moves i back to the start of the rune it falls in.
func runeBoundary(s string, i int) int {
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}

	return i
}
