package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator checks tool arguments against a JSON Schema and decodes them.
type Validator struct {
	tool   string
	schema *jsonschema.Schema
}

// NewValidator compiles the input schema of a tool.
func NewValidator(tool string, schema map[string]any) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7

	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema for %s: %w", tool, err)
	}

	url := tool + ".schema.json"
	if err := compiler.AddResource(url, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource for %s: %w", tool, err)
	}

	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema for %s: %w", tool, err)
	}

	return &Validator{tool: tool, schema: compiled}, nil
}

// MustValidator is like NewValidator but panics on an invalid schema.
// It is meant for schemas declared in code.
func MustValidator(tool string, schema map[string]any) *Validator {
	v, err := NewValidator(tool, schema)
	if err != nil {
		panic(err)
	}
	return v
}

// Decode validates raw against the schema and unmarshals it into dst. Fields of
// dst that are absent from raw keep the values they had, so callers set
// defaults before decoding. Missing or null arguments count as an empty object.
func (v *Validator) Decode(raw json.RawMessage, dst any) error {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		raw = json.RawMessage("{}")
	}

	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return &ValidationError{Tool: v.tool, Cause: fmt.Errorf("arguments are not valid JSON: %w", err)}
	}

	if err := v.schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return &ValidationError{Tool: v.tool, Fields: leafErrors(ve), Cause: err}
		}
		return &ValidationError{Tool: v.tool, Cause: err}
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return &ValidationError{Tool: v.tool, Cause: err}
	}
	return nil
}

// leafErrors flattens a schema error tree into one entry per failing location.
func leafErrors(ve *jsonschema.ValidationError) []FieldError {
	if len(ve.Causes) == 0 {
		return []FieldError{{Field: fieldName(ve.InstanceLocation), Message: ve.Message}}
	}

	var out []FieldError
	for _, cause := range ve.Causes {
		out = append(out, leafErrors(cause)...)
	}
	return out
}

func fieldName(instanceLocation string) string {
	field := strings.Trim(instanceLocation, "/")
	if field == "" {
		return "arguments"
	}
	return strings.ReplaceAll(field, "/", ".")
}
