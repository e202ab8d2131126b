// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package teereader captures a script's output stream up to a size limit while
// keeping track of the most recent complete line, so that long-running scripts
// can show progress without waiting for them to finish.
package teereader
