package tools

import (
	"fmt"
	"strings"
)

// UnknownToolError is returned when a call names a tool that is not registered.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("Unknown tool: %s", e.Name)
}

// FieldError describes one argument that failed validation.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError is returned when tool arguments do not match the tool schema.
type ValidationError struct {
	Tool   string
	Fields []FieldError
	Cause  error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		if e.Cause != nil {
			return fmt.Sprintf("invalid arguments: %v", e.Cause)
		}
		return "invalid arguments"
	}

	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "invalid arguments: " + strings.Join(parts, "; ")
}

// Unwrap returns the underlying cause
func (e *ValidationError) Unwrap() error {
	return e.Cause
}
