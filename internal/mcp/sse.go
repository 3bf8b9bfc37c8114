package mcp

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SSEWriter writes JSON-RPC messages as server-sent events.
type SSEWriter struct {
	w http.ResponseWriter
}

// NewSSEWriter sets the event-stream headers on w.
func NewSSEWriter(w http.ResponseWriter) *SSEWriter {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &SSEWriter{w: w}
}

// SendEvent writes data as a "message" event and flushes it. The flush goes
// through http.ResponseController so wrapping middleware does not hide it.
func (s *SSEWriter) SendEvent(data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE data: %w", err)
	}

	if _, err := fmt.Fprintf(s.w, "event: message\ndata: %s\n\n", payload); err != nil {
		return fmt.Errorf("failed to write SSE event: %w", err)
	}

	if err := http.NewResponseController(s.w).Flush(); err != nil {
		return fmt.Errorf("failed to flush SSE event: %w", err)
	}
	return nil
}
