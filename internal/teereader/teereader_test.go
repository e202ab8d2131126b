// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package teereader

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReader_Lines(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantLast    string
		wantPartial string
		wantLines   []string
	}{
		{
			name:      "single line with newline",
			input:     "hello world\n",
			wantLast:  "hello world",
			wantLines: []string{"hello world"},
		},
		{
			name:        "single line without newline",
			input:       "hello world",
			wantPartial: "hello world",
		},
		{
			name: "empty",
		},
		{
			name:      "just newline",
			input:     "\n",
			wantLines: []string{""},
		},
		{
			name:        "last line unterminated",
			input:       "line1\nline2",
			wantLast:    "line1",
			wantPartial: "line2",
			wantLines:   []string{"line1"},
		},
		{
			name:      "crlf",
			input:     "one\r\ntwo\r\n",
			wantLast:  "two",
			wantLines: []string{"one", "two"},
		},
		{
			name:      "blank lines",
			input:     "line1\n\n\nline4\n",
			wantLast:  "line4",
			wantLines: []string{"line1", "", "", "line4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string

			r := New(strings.NewReader(tt.input), WithLineFunc(func(l string) {
				got = append(got, l)
			}))

			data, err := io.ReadAll(r)
			require.NoError(t, err)

			assert.Equal(t, tt.input, string(data))
			assert.Equal(t, tt.input, string(r.Bytes()))
			assert.Equal(t, tt.wantLast, r.LastLine(0))
			assert.Equal(t, tt.wantPartial, r.Partial())
			assert.Equal(t, tt.wantLines, got)
			assert.False(t, r.Truncated())
		})
	}
}

// chunkReader returns its chunks one Read at a time.
type chunkReader struct {
	chunks []string
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		return 0, io.EOF
	}

	n := copy(p, c.chunks[0])
	c.chunks = c.chunks[1:]

	return n, nil
}

func TestReader_LinesSplitAcrossReads(t *testing.T) {
	r := New(&chunkReader{chunks: []string{"hel", "lo\nwor", "ld\n", "tail"}})

	require.NoError(t, r.Drain())
	assert.Equal(t, "world", r.LastLine(0))
	assert.Equal(t, "tail", r.Partial())
	assert.Equal(t, "hello\nworld\ntail", string(r.Bytes()))
}

func TestReader_MaxBytes(t *testing.T) {
	input := strings.Repeat("abcdefghi\n", 10)

	r := New(strings.NewReader(input), WithMaxBytes(25))

	err := r.Drain()
	require.ErrorIs(t, err, ErrOverflow)
	assert.True(t, r.Truncated())
	assert.Equal(t, input[:25], string(r.Bytes()))
	assert.Equal(t, "abcdefghi", r.LastLine(0), "lines are tracked past the limit")
}

func TestReader_LongLineIsBounded(t *testing.T) {
	const limit = 1024

	input := bytes.Repeat([]byte("x"), 20*limit)

	r := New(bytes.NewReader(input), WithMaxBytes(limit))

	require.ErrorIs(t, r.Drain(), ErrOverflow)
	assert.Len(t, r.Bytes(), limit)
	assert.LessOrEqual(t, len(r.Partial()), limit)

	var got []string

	r = New(&chunkReader{chunks: []string{"0123456789", "abcdef\nnext\n"}},
		WithMaxBytes(12),
		WithLineFunc(func(line string) { got = append(got, line) }))

	require.ErrorIs(t, r.Drain(), ErrOverflow)
	assert.Equal(t, []string{"0123456789ab", "next"}, got)
	assert.Empty(t, r.Partial())
}

func TestReader_ReadError(t *testing.T) {
	r := New(io.MultiReader(strings.NewReader("some data\n"), &errReader{}))

	err := r.Drain()
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, "some data\n", string(r.Bytes()))
	assert.Equal(t, "some data", r.LastLine(0))
}

type errReader struct{}

func (*errReader) Read([]byte) (int, error) {
	return 0, assert.AnError
}

func TestLastLine_Truncate(t *testing.T) {
	r := New(strings.NewReader("a fairly long line of output\n"))
	require.NoError(t, r.Drain())

	assert.Equal(t, "a fairly long line of output", r.LastLine(0))
	assert.Equal(t, "a fairly...", r.LastLine(11))
	assert.Equal(t, "a f", r.LastLine(3))
	assert.Equal(t, "a fairly long line of output", r.LastLine(100))
}

func TestLastLine_TruncateKeepsRunes(t *testing.T) {
	r := New(strings.NewReader("ab\u00e9\u00e9\u00e9\n"))
	require.NoError(t, r.Drain())

	for n := 1; n <= 8; n++ {
		assert.True(t, utf8.ValidString(r.LastLine(n)), "length %d", n)
	}

	assert.Equal(t, "ab...", r.LastLine(6))
	assert.Equal(t, "ab\u00e9...", r.LastLine(7))
}

func TestReader_ConcurrentAccess(t *testing.T) {
	pr, pw := io.Pipe()
	r := New(pr)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		for range 100 {
			_ = r.LastLine(10)
			_ = r.Bytes()
		}
	}()

	go func() {
		for range 100 {
			_, _ = pw.Write([]byte("line\n"))
		}

		_ = pw.Close()
	}()

	require.NoError(t, r.Drain())
	wg.Wait()

	assert.Len(t, r.Bytes(), 500)
	assert.Equal(t, "line", r.LastLine(0))
}
