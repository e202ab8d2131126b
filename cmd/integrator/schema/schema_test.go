// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package schema

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func newCmd(out *bytes.Buffer) *cli.Command {
	return &cli.Command{
		Name:           SchemaCmd.Name,
		Flags:          SchemaCmd.Flags,
		Action:         SchemaCmd.Action,
		Writer:         out,
		ErrWriter:      out,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

func TestSchemaCmd(t *testing.T) {
	var out bytes.Buffer

	require.NoError(t, newCmd(&out).Run(context.Background(), []string{"schema", "-f", "markdown"}))
	assert.Contains(t, out.String(), "# Integrator Configuration")
}

func TestSchemaCmd_BadFormat(t *testing.T) {
	var out bytes.Buffer

	err := newCmd(&out).Run(context.Background(), []string{"schema", "--format", "xml"})

	var exitErr cli.ExitCoder
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 1, exitErr.ExitCode())
}
