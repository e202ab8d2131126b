// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/integrator/internal/ctxlog"
	"github.com/spf13/afero"
)

const (
	scriptsKey = "scripts"
	hclFileExt = ".hcl"
)

var (
	// ErrConfigLoad wraps every error returned when a configuration cannot be loaded.
	ErrConfigLoad = errors.New("failed to load configuration")
	// ErrReadConfig is returned when the configuration file is missing or unreadable.
	ErrReadConfig = errors.New("failed to read configuration file")
	// ErrParseConfig is returned when the document is malformed or is not a mapping.
	ErrParseConfig = errors.New("failed to parse configuration")
	// ErrMissingScripts is returned when the `scripts` field is absent or null.
	ErrMissingScripts = errors.New("configuration has no `scripts` field")
	// ErrInvalidScripts is returned when `scripts` is not a list of non-empty strings.
	ErrInvalidScripts = errors.New("configuration has invalid `scripts`")
)

// Config is a loaded configuration. It is not modified after loading.
type Config struct {
	// Scripts are the script identifiers in the order they were written.
	Scripts []string `json:"scripts" validate:"dive,required" docdesc:"Scripts to run, in order. Relative paths are resolved against the script directory."`
	// BaseDir is where relative identifiers are resolved. It is not read from the
	// document; the caller sets it.
	BaseDir string `json:"-"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Load reads the file at path from fs and parses it.
func Load(ctx context.Context, fs afero.Fs, path string) (*Config, error) {
	ctxlog.Debug(ctx, "reading configuration", "path", path)

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Join(ErrConfigLoad, ErrReadConfig, err)
	}

	return Parse(path, data)
}

// LoadFrom loads a configuration from either a local path or a go-getter URL.
// Local paths are read through FsFactory.
func LoadFrom(ctx context.Context, src string) (*Config, error) {
	if !IsRemote(src) {
		return Load(ctx, FsFactory(), src)
	}

	ctxlog.Debug(ctx, "fetching remote configuration", "url", src)

	data, err := Fetch(ctx, src)
	if err != nil {
		return nil, err
	}

	return Parse(src, data)
}

// Parse decodes a configuration document. The name selects the format: names
// ending in `.hcl` are parsed as HCL, everything else as YAML, which also
// accepts JSON.
func Parse(name string, data []byte) (*Config, error) {
	var (
		raw map[string]any
		err error
	)

	switch strings.ToLower(filepath.Ext(stripQuery(name))) {
	case hclFileExt:
		raw, err = decodeHCL(name, data)
	default:
		raw, err = decodeYAML(data)
	}

	if err != nil {
		return nil, errors.Join(ErrConfigLoad, err)
	}

	cfg, err := fromRaw(raw)
	if err != nil {
		return nil, errors.Join(ErrConfigLoad, err)
	}

	return cfg, nil
}

func decodeYAML(data []byte) (map[string]any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Join(ErrParseConfig, err)
	}

	if doc == nil {
		return nil, fmt.Errorf("%w: document is empty", ErrParseConfig)
	}

	raw, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: document is not a mapping", ErrParseConfig)
	}

	return raw, nil
}

// fromRaw extracts the script list from a decoded document. Keys other than
// `scripts` are ignored.
func fromRaw(raw map[string]any) (*Config, error) {
	v, ok := raw[scriptsKey]
	if !ok || v == nil {
		return nil, ErrMissingScripts
	}

	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a list, got %T", ErrInvalidScripts, v)
	}

	cfg := &Config{
		Scripts: make([]string, len(list)),
	}

	var result error

	for i, item := range list {
		s, ok := item.(string)
		if !ok {
			result = multierror.Append(result, fmt.Errorf("%s[%d]: expected a string, got %T", scriptsKey, i, item))
			continue
		}

		cfg.Scripts[i] = s
	}

	if result != nil {
		return nil, errors.Join(ErrInvalidScripts, result)
	}

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, errors.Join(ErrInvalidScripts, err)
		}

		for _, fe := range verrs {
			result = multierror.Append(result, fmt.Errorf("%s: failed on the '%s' tag", fe.Field(), fe.Tag()))
		}

		return nil, errors.Join(ErrInvalidScripts, result)
	}

	return cfg, nil
}

func stripQuery(name string) string {
	before, _, _ := strings.Cut(name, "?")
	return before
}
