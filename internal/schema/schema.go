// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package schema describes the configuration file format as JSON Schema,
// a YAML example and Markdown.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/integrator/internal/config"
)

const draft = "https://json-schema.org/draft/2020-12/schema"

var (
	// ErrNotStruct is returned when a schema is requested for a non-struct type.
	ErrNotStruct = errors.New("expected struct type")
	// ErrUnknownFormat is returned for an output format that is not supported.
	ErrUnknownFormat = errors.New("unknown schema format")
)

// Formats lists the supported output formats.
var Formats = []string{"json", "yaml", "markdown"}

// Field is one property of a schema.
type Field struct {
	Name        string `json:"-"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"-"`
	Items       *Field `json:"items,omitempty"`
	MinLength   int    `json:"minLength,omitempty"`
}

// Schema is the JSON Schema of an object.
type Schema struct {
	Schema               string           `json:"$schema,omitempty"`
	Title                string           `json:"title,omitempty"`
	Description          string           `json:"description,omitempty"`
	Type                 string           `json:"type"`
	Properties           map[string]Field `json:"properties"`
	Required             []string         `json:"required,omitempty"`
	AdditionalProperties bool             `json:"additionalProperties"`
	Fields               []Field          `json:"-"`
}

// Generate builds a schema from the exported, json-tagged fields of def.
func Generate(def any) (*Schema, error) {
	fields, err := extractFields(reflect.TypeOf(def))
	if err != nil {
		return nil, err
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })

	s := &Schema{
		Type:                 "object",
		Properties:           make(map[string]Field, len(fields)),
		AdditionalProperties: true,
		Fields:               fields,
	}

	for _, f := range fields {
		s.Properties[f.Name] = f

		if f.Required {
			s.Required = append(s.Required, f.Name)
		}
	}

	return s, nil
}

// ConfigSchema returns the schema of the configuration file.
func ConfigSchema() (*Schema, error) {
	s, err := Generate(config.Config{})
	if err != nil {
		return nil, err
	}

	s.Schema = draft
	s.Title = "Integrator Configuration"
	s.Description = "Scripts run by integrator. JSON, YAML and HCL files share this structure."

	return s, nil
}

// Write writes the configuration schema in the given format.
func Write(w io.Writer, format string) error {
	s, err := ConfigSchema()
	if err != nil {
		return err
	}

	switch strings.ToLower(format) {
	case "json":
		return s.WriteJSONSchema(w)
	case "yaml":
		return s.WriteYAMLExample(w)
	case "markdown", "md":
		return s.WriteMarkdownDoc(w)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// WriteJSONSchema writes the schema as indented JSON.
func (s *Schema) WriteJSONSchema(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(s) //nolint:wrapcheck
}

// WriteYAMLExample writes an example configuration document.
func (s *Schema) WriteYAMLExample(w io.Writer) error {
	example := config.Config{Scripts: []string{"backup.sh", "reports/daily.sh", "/opt/scripts/cleanup.sh"}}

	data, err := yaml.Marshal(example)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if _, err := fmt.Fprintf(w, "# %s\n", s.Title); err != nil {
		return err //nolint:wrapcheck
	}

	_, err = w.Write(data)

	return err //nolint:wrapcheck
}

// WriteMarkdownDoc writes a Markdown table of the fields.
func (s *Schema) WriteMarkdownDoc(w io.Writer) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n%s\n\n", s.Title, s.Description)
	sb.WriteString("| Field | Type | Required | Description |\n")
	sb.WriteString("|-------|------|----------|-------------|\n")

	for _, f := range s.Fields {
		typ := f.Type
		if f.Items != nil {
			typ += " of " + f.Items.Type
		}

		req := "No"
		if f.Required {
			req = "Yes"
		}

		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n", f.Name, typ, req, f.Description)
	}

	_, err := io.WriteString(w, sb.String())

	return err //nolint:wrapcheck
}

func extractFields(t reflect.Type) ([]Field, error) {
	if t == nil {
		return nil, ErrNotStruct
	}

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w, got %s", ErrNotStruct, t.Kind())
	}

	var fields []Field

	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}

		if f, ok := toField(sf); ok {
			fields = append(fields, f)
		}
	}

	return fields, nil
}

// toField maps a struct field to a schema field. Fields tagged json:"-" are not part of the document.
func toField(sf reflect.StructField) (Field, bool) {
	name, opts, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "-" {
		return Field{}, false
	}

	if name == "" {
		name = strings.ToLower(sf.Name)
	}

	validate := sf.Tag.Get("validate")

	f := Field{
		Name:        name,
		Type:        schemaType(sf.Type),
		Description: sf.Tag.Get("docdesc"),
		Required:    !strings.Contains(opts, "omitempty"),
	}

	if f.Type == "array" {
		item := Field{Type: schemaType(sf.Type.Elem())}
		if strings.Contains(validate, "dive,required") && item.Type == "string" {
			item.MinLength = 1
		}

		f.Items = &item
	}

	return f, true
}

func schemaType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Ptr:
		return schemaType(t.Elem())
	default:
		return "object"
	}
}
