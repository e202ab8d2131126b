// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package config loads the list of scripts to run.
//
// A configuration document is a mapping with a single required key, `scripts`,
// holding an ordered list of script identifiers. JSON and YAML documents are
// parsed with the same YAML parser; files ending in `.hcl` are parsed as HCL:
//
//	scripts = ["task_a.sh", "subdir/task_b.sh"]
//
// Every error returned by this package wraps ErrConfigLoad.
package config
