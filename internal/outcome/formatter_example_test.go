// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package outcome

import (
	"errors"
	"os"
)

func ExampleResults_WriteText() {
	results := Results{
		{
			Label:  "missing.sh",
			Path:   "/opt/scripts/missing.sh",
			Status: StatusSkipped,
			Error:  errors.New("script not found: /opt/scripts/missing.sh"),
		},
		{
			Label:  "a.sh",
			Path:   "/opt/scripts/a.sh",
			Status: StatusSucceeded,
			StdOut: []byte("hello\n"),
		},
		{
			Label:    "b.sh",
			Path:     "/opt/scripts/b.sh",
			Status:   StatusFailed,
			ExitCode: 2,
			Error:    errors.New("task execution failed: exit status 2"),
			StdErr:   []byte("line one\n  indented\nline three"),
		},
	}

	_ = results.WriteText(os.Stdout, DefaultOutputOptions())

	// Output:
	// ~ missing.sh
	//   ➜ Error: script not found: /opt/scripts/missing.sh
	// ✓ a.sh
	// ✗ b.sh (exit code: 2)
	//   ➜ Error: task execution failed: exit status 2
	//   ➜ Error Output:
	//      line one
	//        indented
	//      line three
	// 1 succeeded, 1 failed, 1 skipped
}
