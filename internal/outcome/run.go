// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package outcome

import (
	"encoding/gob"
	"errors"
	"io"
	"time"
)

var (
	// ErrWriteRun is returned when a run cannot be saved.
	ErrWriteRun = errors.New("failed to write run")
	// ErrReadRun is returned when a saved run cannot be loaded.
	ErrReadRun = errors.New("failed to read run")
)

// Run is everything a single invocation produced.
type Run struct {
	ID          string    // Unique per invocation, also attached to log lines
	ConfigFile  string    // Where the script list came from
	Parallelism int       // Concurrency limit used
	Started     time.Time // Dispatch start
	Finished    time.Time // Dispatch end
	Results     Results   // Skipped scripts first, then dispatched ones in completion order
}

// WriteBinary gob-encodes the run to w.
func (r *Run) WriteBinary(w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(r); err != nil {
		return errors.Join(ErrWriteRun, err)
	}

	return nil
}

// ReadBinary decodes a run previously written by WriteBinary.
func ReadBinary(rd io.Reader) (*Run, error) {
	run := new(Run)
	if err := gob.NewDecoder(rd).Decode(run); err != nil {
		return nil, errors.Join(ErrReadRun, err)
	}

	return run, nil
}
