// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package schema provides the command that documents the configuration file format.
package schema

import (
	"context"
	"strings"

	"github.com/matt-FFFFFF/integrator/internal/schema"
	"github.com/urfave/cli/v3"
)

const formatFlag = "format"

// SchemaCmd writes the configuration schema.
var SchemaCmd = &cli.Command{
	Name:        "schema",
	Usage:       "Describe the configuration file format",
	Description: "Write the configuration format as JSON Schema, a YAML example or Markdown.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    formatFlag,
			Aliases: []string{"f"},
			Usage:   "Output format: " + strings.Join(schema.Formats, ", "),
			Value:   "json",
		},
	},
	Action: func(_ context.Context, cmd *cli.Command) error {
		if err := schema.Write(cmd.Writer, cmd.String(formatFlag)); err != nil {
			return cli.Exit(err.Error(), 1)
		}

		return nil
	},
}
