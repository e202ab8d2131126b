// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package resolver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/matt-FFFFFF/integrator/internal/ctxlog"
	"github.com/spf13/afero"
)

// ErrTaskNotFound is returned for identifiers that do not name a regular file.
var ErrTaskNotFound = errors.New("script not found")

// Task is a script identifier and where it resolved to.
type Task struct {
	ID     string // Identifier as written in the configuration
	Path   string // Absolute, cleaned path
	Exists bool   // Whether Path named a regular file when resolved
}

// String implements fmt.Stringer.
func (t Task) String() string {
	return t.ID
}

// Missing is a task that was excluded, with the reason.
type Missing struct {
	Task
	Err error // Wraps ErrTaskNotFound
}

// Resolution is the result of resolving a list of identifiers.
type Resolution struct {
	Tasks   []Task    // Existing tasks in input order
	Missing []Missing // Excluded tasks in input order
}

// Resolve joins each identifier with baseDir, unless it is already absolute,
// and checks that it names a regular file in fs. Directories count as not found.
// Missing scripts are logged as warnings and are never retried.
func Resolve(ctx context.Context, fs afero.Fs, baseDir string, ids []string) Resolution {
	res := Resolution{
		Tasks: make([]Task, 0, len(ids)),
	}

	for _, id := range ids {
		t := Task{
			ID:   id,
			Path: resolvePath(baseDir, id),
		}

		if err := checkFile(fs, t.Path); err != nil {
			ctxlog.Warn(ctx, "script not found", "script", id, "path", t.Path, "error", err.Error())
			res.Missing = append(res.Missing, Missing{Task: t, Err: err})

			continue
		}

		t.Exists = true
		res.Tasks = append(res.Tasks, t)
	}

	ctxlog.Debug(ctx, "resolved scripts", "found", len(res.Tasks), "missing", len(res.Missing))

	return res
}

func resolvePath(baseDir, id string) string {
	if filepath.IsAbs(id) {
		return filepath.Clean(id)
	}

	p := filepath.Join(baseDir, id)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}

	return p
}

func checkFile(fs afero.Fs, path string) error {
	fi, err := fs.Stat(path)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, path)
	}

	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%w: %s is not a regular file", ErrTaskNotFound, path)
	}

	return nil
}
