// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package check implements a command that validates a configuration without running anything.
package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/matt-FFFFFF/integrator/cmd/integrator/run"
	"github.com/matt-FFFFFF/integrator/internal/color"
	"github.com/matt-FFFFFF/integrator/internal/config"
	"github.com/matt-FFFFFF/integrator/internal/ctxlog"
	"github.com/matt-FFFFFF/integrator/internal/resolver"
	"github.com/urfave/cli/v3"
)

const (
	configFlag     = "config"
	scriptDirFlag  = "script-dir"
	timeoutSeconds = 30
)

// ErrScriptsMissing is returned when at least one configured script does not exist.
var ErrScriptsMissing = errors.New("configured scripts are missing")

// CheckCmd loads the configuration and reports which scripts would run.
var CheckCmd = &cli.Command{
	Name:  "check",
	Usage: "Validate the configuration and list the scripts it resolves to",
	Description: `Load the configuration and resolve every script without running anything.
The exit code is 1 when the configuration is invalid or any script is missing.`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:      configFlag,
			Aliases:   []string{"c"},
			Usage:     "Configuration file path or go-getter URL",
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:      scriptDirFlag,
			Aliases:   []string{"d"},
			Usage:     "Directory that relative script paths are resolved against",
			TakesFile: true,
		},
	},
	Action: func(ctx context.Context, cmd *cli.Command) error {
		configPath, scriptDir := run.DefaultPaths(cmd.String(configFlag), cmd.String(scriptDirFlag))

		if err := Check(ctx, cmd.Writer, configPath, scriptDir); err != nil {
			ctxlog.Error(ctx, err.Error())
			return cli.Exit("", 1)
		}

		return nil
	},
}

// Check loads the configuration at configPath and writes one line per script to w.
func Check(ctx context.Context, w io.Writer, configPath, scriptDir string) error {
	loadCtx, cancel := context.WithTimeout(ctx, timeoutSeconds*time.Second)
	defer cancel()

	cfg, err := config.LoadFrom(loadCtx, configPath)
	if err != nil {
		return fmt.Errorf("configuration %s: %w", configPath, err)
	}

	res := resolver.Resolve(ctx, config.FsFactory(), scriptDir, cfg.Scripts)

	for _, t := range res.Tasks {
		if _, err := fmt.Fprintf(w, "%s %s ➜ %s\n", color.Colorize("✓", color.FgGreen), t.ID, t.Path); err != nil {
			return err //nolint:wrapcheck
		}
	}

	for _, m := range res.Missing {
		if _, err := fmt.Fprintf(w, "%s %s ➜ %s (not found)\n", color.Colorize("~", color.FgYellow), m.ID, m.Path); err != nil {
			return err //nolint:wrapcheck
		}
	}

	if _, err := fmt.Fprintf(w, "%d found, %d missing\n", len(res.Tasks), len(res.Missing)); err != nil {
		return err //nolint:wrapcheck
	}

	if len(res.Missing) > 0 {
		return fmt.Errorf("%w: %d of %d", ErrScriptsMissing, len(res.Missing), len(cfg.Scripts))
	}

	return nil
}
