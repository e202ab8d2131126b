// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
)

// ErrFetchConfig is returned when a remote configuration cannot be downloaded.
var ErrFetchConfig = errors.New("failed to fetch configuration")

const (
	goGetterForcedSeparator = "::"
	goGetterSchemeSeparator = "://"
	goGetterPathSeparator   = "//"
	goGetterRefSeparator    = "?"
	minimumGetterParts      = 3 // scheme, host and path
)

// IsRemote reports whether src is a go-getter URL rather than a local path.
func IsRemote(src string) bool {
	return strings.Contains(src, goGetterForcedSeparator) || strings.Contains(src, goGetterSchemeSeparator)
}

// Fetch downloads src with go-getter into a temporary directory and returns the
// contents of the named file. The directory is removed before returning.
func Fetch(ctx context.Context, src string) ([]byte, error) {
	if src == "" {
		return nil, errors.Join(ErrConfigLoad, ErrFetchConfig)
	}

	tmpDir, err := os.MkdirTemp("", "integrator-getter-*")
	if err != nil {
		return nil, errors.Join(ErrConfigLoad, ErrFetchConfig, err)
	}

	defer os.RemoveAll(tmpDir) //nolint:errcheck

	wd, err := os.Getwd()
	if err != nil {
		return nil, errors.Join(ErrConfigLoad, ErrFetchConfig, err)
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     src,
		Dst:     filepath.Join(tmpDir, "g"),
		Pwd:     wd,
		GetMode: getter.ModeDir,
	}

	// Subdirectory URLs are downloaded as a directory and the file read from it.
	// https://github.com/hashicorp/go-getter/issues/98
	dirURL, fileName := splitFileNameFromGetterURL(src)

	switch dirURL {
	case "":
		req.GetMode = getter.ModeFile
		req.Dst = filepath.Join(tmpDir, "config")
	default:
		req.Src = dirURL
	}

	res, err := client.Get(ctx, req)
	if err != nil {
		return nil, errors.Join(ErrConfigLoad, ErrFetchConfig, err)
	}

	path := res.Dst
	if fileName != "" {
		path = filepath.Join(res.Dst, fileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrConfigLoad, ErrReadConfig, err)
	}

	return data, nil
}

// splitFileNameFromGetterURL splits a go-getter URL into the URL of the containing
// directory and the file name. A ref query is moved to the directory URL.
func splitFileNameFromGetterURL(url string) (string, string) {
	var ref string

	parts := strings.Split(url, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	last := parts[len(parts)-1]

	if before, after, found := strings.Cut(last, goGetterRefSeparator); found {
		ref = after
		last = before
	}

	if filepath.Clean(last) == filepath.Dir(last) {
		return "", ""
	}

	fileName := filepath.Base(last)

	parts[len(parts)-1] = filepath.Dir(last)
	if parts[len(parts)-1] == "." {
		parts = parts[:len(parts)-1]
	}

	dirURL := strings.Join(parts, goGetterPathSeparator)

	if ref != "" {
		dirURL += goGetterRefSeparator + ref
	}

	return dirURL, fileName
}
