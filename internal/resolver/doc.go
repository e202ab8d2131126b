// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package resolver turns script identifiers into tasks that are known to exist.
package resolver
