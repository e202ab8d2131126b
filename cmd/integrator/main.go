// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the integrator command-line interface (CLI).
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/integrator"
	"github.com/matt-FFFFFF/integrator/cmd/integrator/check"
	"github.com/matt-FFFFFF/integrator/cmd/integrator/run"
	"github.com/matt-FFFFFF/integrator/cmd/integrator/schema"
	"github.com/matt-FFFFFF/integrator/cmd/integrator/show"
	"github.com/matt-FFFFFF/integrator/internal/ctxlog"
	"github.com/matt-FFFFFF/integrator/internal/signalbroker"
	"github.com/urfave/cli/v3"
)

// rootCmd runs the configured scripts when invoked without a subcommand.
var rootCmd = &cli.Command{
	Commands: []*cli.Command{
		run.NewCommand(),
		check.CheckCmd,
		show.ShowCmd,
		schema.SchemaCmd,
	},
	Flags:     run.Flags(),
	Action:    run.Action,
	Writer:    os.Stdout,
	ErrWriter: os.Stderr,
	Name:      "integrator",
	Description: `Integrator runs a list of automation scripts concurrently.
The scripts are read from the "scripts" list of a JSON, YAML or HCL configuration file.
Scripts that do not exist are reported and skipped. The rest run on a bounded pool,
and one script failing never stops the others.`,
	Usage:                 "integrator -c integrator_config.json -p 5",
	Copyright:             "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
	EnableShellCompletion: true,
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)
	defer signalbroker.Stop(sigCh)

	go signalbroker.Watch(ctx, sigCh, cancel)

	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", integrator.Version, integrator.Commit)

	err := rootCmd.Run(ctx, os.Args)

	if ctx.Err() != nil {
		ctxlog.Error(ctx, "run terminated due to cancellation", "error", ctx.Err().Error())
		os.Exit(1) //nolint:gocritic
	}

	if err != nil {
		ctxlog.Error(ctx, "command failed", "error", err.Error())
		os.Exit(1)
	}
}
