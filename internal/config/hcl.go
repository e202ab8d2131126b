// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// decodeHCL reads the top-level attributes of an HCL file into the same shape
// the YAML decoder produces. Blocks are not allowed.
func decodeHCL(name string, data []byte) (map[string]any, error) {
	file, diags := hclsyntax.ParseConfig(data, name, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, errors.Join(ErrParseConfig, diagsToError(diags))
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, errors.Join(ErrParseConfig, diagsToError(diags))
	}

	raw := make(map[string]any, len(attrs))

	for key, attr := range attrs {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, errors.Join(ErrParseConfig, diagsToError(diags))
		}

		v, err := ctyToGo(val)
		if err != nil {
			return nil, fmt.Errorf("%w: attribute %q at %s: %w", ErrParseConfig, key, attr.Range.String(), err)
		}

		raw[key] = v
	}

	return raw, nil
}

func diagsToError(diags hcl.Diagnostics) error {
	var err error

	for _, d := range diags.Errs() {
		err = multierror.Append(err, d)
	}

	return err
}

// ctyToGo converts a cty value into plain Go values: strings, numbers, bools,
// slices and maps.
func ctyToGo(val cty.Value) (any, error) {
	if val.IsNull() {
		return nil, nil
	}

	if !val.IsWhollyKnown() {
		return nil, errors.New("value is not known")
	}

	ty := val.Type()

	switch {
	case ty == cty.String:
		return val.AsString(), nil
	case ty == cty.Number:
		var f float64
		if err := gocty.FromCtyValue(val, &f); err != nil {
			return nil, err //nolint:wrapcheck
		}

		return f, nil
	case ty == cty.Bool:
		return val.True(), nil
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		out := make([]any, 0, val.LengthInt())

		for it := val.ElementIterator(); it.Next(); {
			_, ev := it.Element()

			v, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}

			out = append(out, v)
		}

		return out, nil
	case ty.IsObjectType() || ty.IsMapType():
		out := make(map[string]any, val.LengthInt())

		for it := val.ElementIterator(); it.Next(); {
			k, ev := it.Element()

			v, err := ctyToGo(ev)
			if err != nil {
				return nil, err
			}

			out[k.AsString()] = v
		}

		return out, nil
	default:
		return nil, fmt.Errorf("unsupported type %s", ty.FriendlyName())
	}
}
