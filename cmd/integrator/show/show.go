// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package show implements the command that prints previously saved results.
package show

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/matt-FFFFFF/integrator/cmd/integrator/run"
	"github.com/matt-FFFFFF/integrator/internal/outcome"
	"github.com/urfave/cli/v3"
)

const (
	fileArg = "file"
)

var (
	// ErrReadFile is returned when the file cannot be read.
	ErrReadFile = errors.New("failed to read file")
	// ErrWriteResults is returned when the results cannot be written.
	ErrWriteResults = errors.New("failed to write results")
	// ErrNoFile is returned when no file argument is given.
	ErrNoFile = errors.New("no results file given")
)

// ShowCmd is the command that shows the results saved by `integrator run --out`.
var ShowCmd = &cli.Command{
	Name:        "show",
	Usage:       "Show previously saved results",
	Description: "Show results saved with the --out flag of the run command.",
	Arguments: []cli.Argument{
		&cli.StringArg{
			Name: fileArg,
		},
	},
	Flags: run.OutputFlags(),
	Action: func(_ context.Context, cmd *cli.Command) error {
		opts := run.OutputOptionsFromCommand(cmd)
		return Show(cmd.Writer, cmd.StringArg(fileArg), &opts)
	},
}

// Show reads a saved run from path and writes it to w.
func Show(w io.Writer, path string, opts *outcome.OutputOptions) error {
	if path == "" {
		return ErrNoFile
	}

	file, err := os.Open(path)
	if err != nil {
		return errors.Join(ErrReadFile, err)
	}
	defer file.Close() // nolint:errcheck

	saved, err := outcome.ReadBinary(file)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if _, err := fmt.Fprintf(w, "Run %s (%s, parallelism %d)\n", saved.ID, saved.ConfigFile, saved.Parallelism); err != nil {
		return errors.Join(ErrWriteResults, err)
	}

	if err := saved.Results.WriteText(w, opts); err != nil {
		return errors.Join(ErrWriteResults, err)
	}

	return nil
}
