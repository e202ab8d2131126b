// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package run implements the command that loads, resolves and dispatches scripts.
package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/matt-FFFFFF/integrator/internal/config"
	"github.com/matt-FFFFFF/integrator/internal/ctxlog"
	"github.com/matt-FFFFFF/integrator/internal/dispatch"
	"github.com/matt-FFFFFF/integrator/internal/executor"
	"github.com/matt-FFFFFF/integrator/internal/metrics"
	"github.com/matt-FFFFFF/integrator/internal/outcome"
	"github.com/matt-FFFFFF/integrator/internal/progress"
	"github.com/matt-FFFFFF/integrator/internal/resolver"
	"github.com/matt-FFFFFF/integrator/internal/tui"
	"github.com/urfave/cli/v3"
)

const (
	configFlag               = "config"
	parallelismFlag          = "parallelism"
	scriptDirFlag            = "script-dir"
	executorFlag             = "executor"
	outFlag                  = "out"
	metricsTextfileFlag      = "metrics-textfile"
	tuiFlag                  = "tui"
	outputStdOutFlag         = "output-stdout"
	noOutputStdErrFlag       = "no-output-stderr"
	outputSuccessDetailsFlag = "output-success-details"
	showDetailsFlag          = "show-details"
	sortFlag                 = "sort"
	configTimeoutFlag        = "config-timeout"
	logJSONFlag              = "log-json"
	logFileFlag              = "log-file"

	// DefaultConfigFile is looked for next to the executable when --config is not given.
	DefaultConfigFile           = "integrator_config.json"
	defaultParallelism          = 5
	configTimeoutSecondsDefault = 30
	logFileMode                 = 0o644
	cliExitStr                  = ""
)

// ErrCreateOutput is returned when a results, metrics or log file cannot be written.
var ErrCreateOutput = errors.New("failed to write output file")

// executableDir returns the directory of the running binary. Relative scripts
// and the default configuration are found there unless overridden.
var executableDir = func() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}

	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	return filepath.Dir(exe)
}

// Options is everything a run needs, independent of how it was parsed.
type Options struct {
	ConfigPath      string                // Local path or go-getter URL
	ScriptDir       string                // Base directory for relative scripts
	Parallelism     int                   // Concurrency limit
	Executor        string                // Registered executor name
	Out             string                // Gob results file, optional
	MetricsTextfile string                // Prometheus textfile, optional
	TUI             bool                  // Show the interactive view
	ConfigTimeout   time.Duration         // Limit for loading the configuration
	Output          outcome.OutputOptions // Report shaping
}

// Flags returns fresh flag definitions for the run command. The root command
// shares them, so each caller gets its own instances.
func Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:      configFlag,
			Aliases:   []string{"c"},
			Usage:     "Configuration file path or go-getter URL. Defaults to " + DefaultConfigFile + " next to the executable",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.IntFlag{
			Name:    parallelismFlag,
			Aliases: []string{"p"},
			Usage:   "Maximum number of scripts to run at the same time",
			Value:   defaultParallelism,
		},
		&cli.StringFlag{
			Name:      scriptDirFlag,
			Aliases:   []string{"d"},
			Usage:     "Directory that relative script paths are resolved against. Defaults to the executable's directory",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.StringFlag{
			Name:    executorFlag,
			Aliases: []string{"e"},
			Usage:   "How scripts are run: 'log' only logs each script, 'shell' runs it",
			Value:   executor.LogOnlyName,
		},
		&cli.StringFlag{
			Name:      outFlag,
			Usage:     "Save the results to this file, to be read with 'integrator show'",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.StringFlag{
			Name:      metricsTextfileFlag,
			Usage:     "Write Prometheus metrics to this file for node-exporter's textfile collector",
			TakesFile: true,
			OnlyOnce:  true,
		},
		&cli.BoolFlag{
			Name:    tuiFlag,
			Aliases: []string{"t", "interactive"},
			Usage:   "Show an interactive view of the run",
		},
		&cli.IntFlag{
			Name:    configTimeoutFlag,
			Aliases: []string{"timeout"},
			Usage:   "Maximum time in seconds to wait for the configuration to load",
			Value:   configTimeoutSecondsDefault,
		},
		&cli.BoolFlag{
			Name:  logJSONFlag,
			Usage: "Write log lines as JSON",
		},
		&cli.StringFlag{
			Name:      logFileFlag,
			Usage:     "Append log lines to this file instead of the terminal",
			TakesFile: true,
			OnlyOnce:  true,
		},
	}

	return append(flags, OutputFlags()...)
}

// OutputFlags returns the flags that shape the printed results.
func OutputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:    outputStdOutFlag,
			Aliases: []string{"stdout"},
			Usage:   "Include stdout in the results",
		},
		&cli.BoolFlag{
			Name:    noOutputStdErrFlag,
			Aliases: []string{"no-stderr"},
			Usage:   "Exclude stderr from the results",
		},
		&cli.BoolFlag{
			Name:    outputSuccessDetailsFlag,
			Aliases: []string{"success"},
			Usage:   "Include output of successful scripts in the results",
		},
		&cli.BoolFlag{
			Name:    showDetailsFlag,
			Aliases: []string{"details"},
			Usage:   "Include resolved paths and durations in the results",
		},
		&cli.BoolFlag{
			Name:  sortFlag,
			Usage: "List results by script name instead of completion order",
		},
	}
}

// OutputOptionsFromCommand reads the result shaping flags.
func OutputOptionsFromCommand(cmd *cli.Command) outcome.OutputOptions {
	return outcome.OutputOptions{
		IncludeStdOut:      cmd.Bool(outputStdOutFlag),
		IncludeStdErr:      !cmd.Bool(noOutputStdErrFlag),
		ShowSuccessDetails: cmd.Bool(outputSuccessDetailsFlag),
		ShowDetails:        cmd.Bool(showDetailsFlag),
		SortByLabel:        cmd.Bool(sortFlag),
	}
}

// DefaultPaths fills an empty configuration path or script directory with
// locations next to the executable.
func DefaultPaths(configPath, scriptDir string) (string, string) {
	if configPath != "" && scriptDir != "" {
		return configPath, scriptDir
	}

	exeDir := executableDir()

	if configPath == "" {
		configPath = filepath.Join(exeDir, DefaultConfigFile)
	}

	if scriptDir == "" {
		scriptDir = exeDir
	}

	return configPath, scriptDir
}

// NewCommand returns the run command.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the scripts listed in a configuration file",
		Description: `Load the "scripts" list from the configuration file, skip scripts that do not exist,
and run the rest with at most --parallelism running at once.

The exit code is 0 once every script has been attempted, whatever the individual outcomes.
It is 1 when the configuration cannot be loaded or the run is cancelled.

Configuration URLs use Hashicorp's go-getter syntax, see https://github.com/hashicorp/go-getter.`,
		Flags:  Flags(),
		Action: Action,
	}
}

// OptionsFromCommand reads Options from parsed flags, applying defaults that
// depend on the executable's location.
func OptionsFromCommand(cmd *cli.Command) Options {
	opts := Options{
		ConfigPath:      cmd.String(configFlag),
		ScriptDir:       cmd.String(scriptDirFlag),
		Parallelism:     cmd.Int(parallelismFlag),
		Executor:        cmd.String(executorFlag),
		Out:             cmd.String(outFlag),
		MetricsTextfile: cmd.String(metricsTextfileFlag),
		TUI:             cmd.Bool(tuiFlag),
		ConfigTimeout:   time.Duration(cmd.Int(configTimeoutFlag)) * time.Second,
		Output:          OutputOptionsFromCommand(cmd),
	}

	opts.ConfigPath, opts.ScriptDir = DefaultPaths(opts.ConfigPath, opts.ScriptDir)

	return opts
}

// Action is the cli action shared by the root and run commands.
func Action(ctx context.Context, cmd *cli.Command) error {
	ctx, closeLog, err := setupLogging(ctx, cmd)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	defer closeLog()

	logger := ctxlog.Logger(ctx).With("command", cmd.Name)
	logger.Debug("running run command")

	if _, err := Execute(ctx, cmd.Writer, OptionsFromCommand(cmd)); err != nil {
		logger.Error(err.Error())
		return cli.Exit(cliExitStr, 1)
	}

	return nil
}

func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, func(), error) {
	noop := func() {}

	path := cmd.String(logFileFlag)
	if path == "" {
		if cmd.Bool(logJSONFlag) {
			ctx = ctxlog.New(ctx, ctxlog.JSONLogger)
		}

		return ctx, noop, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, logFileMode)
	if err != nil {
		return ctx, noop, errors.Join(ErrCreateOutput, err)
	}

	opts := &slog.HandlerOptions{Level: ctxlog.LevelVar}

	var handler slog.Handler = ctxlog.NewPrettyHandler(opts, ctxlog.WithDestinationWriter(f))
	if cmd.Bool(logJSONFlag) {
		handler = slog.NewJSONHandler(f, opts)
	}

	return ctxlog.New(ctx, slog.New(handler)), func() { _ = f.Close() }, nil
}

// Execute performs a complete run and writes the report to w. Individual script
// failures are part of the returned run, not an error. An error means the run
// could not take place or its outputs could not be saved.
func Execute(ctx context.Context, w io.Writer, opts Options) (*outcome.Run, error) {
	logger := ctxlog.Logger(ctx)

	exec, err := executor.DefaultRegistry.New(opts.Executor)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	timeout := opts.ConfigTimeout
	if timeout <= 0 {
		timeout = configTimeoutSecondsDefault * time.Second
	}

	configCtx, configCancel := context.WithTimeout(ctx, timeout)
	defer configCancel()

	cfg, err := config.LoadFrom(configCtx, opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("configuration %s: %w", opts.ConfigPath, err)
	}

	cfg.BaseDir = opts.ScriptDir

	logger.Info("configuration loaded", "config", opts.ConfigPath, "scripts", len(cfg.Scripts))

	resolution := resolver.Resolve(ctx, config.FsFactory(), cfg.BaseDir, cfg.Scripts)

	run := &outcome.Run{
		ID:          uuid.NewString(),
		ConfigFile:  opts.ConfigPath,
		Parallelism: dispatch.EffectiveLimit(opts.Parallelism),
		Results:     make(outcome.Results, 0, len(cfg.Scripts)),
	}

	for _, m := range resolution.Missing {
		run.Results = append(run.Results, &outcome.Result{
			Label:  m.ID,
			Path:   m.Path,
			Status: outcome.StatusSkipped,
			Error:  m.Err,
		})
	}

	var collector *metrics.Collector
	if opts.MetricsTextfile != "" {
		collector = metrics.NewCollector()
	}

	work := func(ctx context.Context, reporter progress.Reporter) outcome.Results {
		reporters := progress.Multi{reporter}
		if collector != nil {
			reporters = append(reporters, collector)
		}

		for _, m := range resolution.Missing {
			reporters.Report(progress.Event{
				Task:      m.ID,
				Type:      progress.EventSkipped,
				Message:   "not found",
				Timestamp: time.Now(),
				Data:      progress.EventData{Error: m.Err},
			})
		}

		return dispatch.Dispatch(ctx, resolution.Tasks, opts.Parallelism, exec,
			dispatch.WithReporter(reporters),
			dispatch.WithRunID(run.ID),
		)
	}

	run.Started = time.Now()

	var dispatched outcome.Results

	if opts.TUI {
		logger.Info("starting interactive view")

		buf := new(bytes.Buffer)
		runner := tui.NewRunner("integrator")

		dispatched, err = runner.Run(ctxlog.NewForTUI(ctx, buf), work)

		_, _ = buf.WriteTo(w)

		if err != nil {
			logger.Error("interactive view failed", "error", err.Error())
		}
	} else {
		dispatched = work(ctx, progress.NullReporter{})
	}

	run.Finished = time.Now()
	run.Results = append(run.Results, dispatched...)

	if err := writeOutputs(ctx, run, collector, opts); err != nil {
		return run, err
	}

	if err := run.Results.WriteText(w, &opts.Output); err != nil {
		return run, fmt.Errorf("failed to write results: %w", err)
	}

	if run.Results.HasError() {
		logger.Warn("some scripts failed, see above for details", "failed", run.Results.Count(outcome.StatusFailed))
	}

	return run, nil
}

func writeOutputs(ctx context.Context, run *outcome.Run, collector *metrics.Collector, opts Options) error {
	if collector != nil {
		collector.Close()

		if err := collector.WriteTextfile(opts.MetricsTextfile); err != nil {
			return errors.Join(ErrCreateOutput, err)
		}

		ctxlog.Info(ctx, "metrics written", "file", opts.MetricsTextfile)
	}

	if opts.Out == "" {
		return nil
	}

	f, err := os.Create(opts.Out)
	if err != nil {
		return errors.Join(ErrCreateOutput, err)
	}

	defer f.Close() //nolint:errcheck

	if err := run.WriteBinary(f); err != nil {
		return errors.Join(ErrCreateOutput, err)
	}

	ctxlog.Info(ctx, "results written", "file", opts.Out)

	return nil
}
