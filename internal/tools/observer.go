package tools

import (
	"context"
	"time"
)

// Observer receives the lifecycle events of tool calls. Implementations must be
// safe for concurrent use.
type Observer interface {
	ToolStarted(ctx context.Context, tool string)
	ToolFinished(ctx context.Context, tool string, duration time.Duration, failed bool)

	ValidationStarted(ctx context.Context, tool string)
	ValidationFinished(ctx context.Context, tool string, err error)

	ProviderCallStarted(ctx context.Context, tool, op string)
	ProviderCallFinished(ctx context.Context, tool, op string, duration time.Duration, err error)

	// ToolFailed is reported once per call that ends in an error text.
	ToolFailed(ctx context.Context, tool string, err error)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) ToolStarted(context.Context, string)                                        {}
func (NopObserver) ToolFinished(context.Context, string, time.Duration, bool)                  {}
func (NopObserver) ValidationStarted(context.Context, string)                                  {}
func (NopObserver) ValidationFinished(context.Context, string, error)                          {}
func (NopObserver) ProviderCallStarted(context.Context, string, string)                        {}
func (NopObserver) ProviderCallFinished(context.Context, string, string, time.Duration, error) {}
func (NopObserver) ToolFailed(context.Context, string, error)                                  {}
