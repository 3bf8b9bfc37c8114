package tools

import (
	"context"
	"encoding/json"
)

// Tool is the interface that all tools must implement.
type Tool interface {
	// Name returns the name of the tool.
	Name() string

	// Definition returns the catalog entry advertised by tools/list.
	Definition() Definition

	// Call executes the tool with the raw JSON arguments of the request.
	// Tools report their own failures as text results; a returned error is
	// treated as unexpected by the Dispatcher.
	Call(ctx context.Context, args json.RawMessage) (*Result, error)
}

// Definition is a tool definition in MCP format.
type Definition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
	Annotations *Annotations   `json:"annotations,omitempty"`
}

// Annotations are the optional MCP behaviour hints of a tool.
type Annotations struct {
	Title         string `json:"title,omitempty"`
	ReadOnlyHint  bool   `json:"readOnlyHint,omitempty"`
	OpenWorldHint bool   `json:"openWorldHint,omitempty"`
}

// Content is a single content block of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the response of a tool call. Failures travel as text too; failed
// only feeds telemetry and is never serialized.
type Result struct {
	Content []Content `json:"content"`

	failed bool
}

// TextResult wraps text in a single-block result.
func TextResult(text string) *Result {
	return &Result{Content: []Content{{Type: "text", Text: text}}}
}

// ErrorResult is a text result that reports a failed call.
func ErrorResult(text string) *Result {
	r := TextResult(text)
	r.failed = true
	return r
}

// Failed reports whether the result describes a failure.
func (r *Result) Failed() bool {
	return r != nil && r.failed
}

// Text returns the concatenated text of all blocks.
func (r *Result) Text() string {
	if r == nil {
		return ""
	}
	if len(r.Content) == 1 {
		return r.Content[0].Text
	}
	var out string
	for _, c := range r.Content {
		out += c.Text
	}
	return out
}
