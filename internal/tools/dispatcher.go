package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Dispatcher routes tool calls to registered tools. It never fails: unknown
// tools, tool errors and panics all come back as "Error: ..." text results.
type Dispatcher struct {
	registry *Registry
	observer Observer
	logger   zerolog.Logger
}

// NewDispatcher creates a dispatcher over registry. A nil observer is replaced
// with NopObserver.
func NewDispatcher(registry *Registry, observer Observer, logger zerolog.Logger) *Dispatcher {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Dispatcher{
		registry: registry,
		observer: observer,
		logger:   logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Registry returns the registry the dispatcher routes to.
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch calls the tool called name with args.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args json.RawMessage) (result *Result) {
	logger := d.logger.With().
		Str("call_id", uuid.NewString()).
		Str("tool", name).
		Logger()
	ctx = logger.WithContext(ctx)

	start := time.Now()
	d.observer.ToolStarted(ctx, name)
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("%v", rec)
			logger.Error().Interface("panic", rec).Msg("Tool panicked")
			d.observer.ToolFailed(ctx, name, err)
			result = ErrorResult("Error: " + err.Error())
		}
		d.observer.ToolFinished(ctx, name, time.Since(start), result.Failed())
	}()

	tool, ok := d.registry.Get(name)
	if !ok {
		err := &UnknownToolError{Name: name}
		logger.Warn().Msg("Unknown tool requested")
		d.observer.ToolFailed(ctx, name, err)
		return ErrorResult("Error: " + err.Error())
	}

	res, err := tool.Call(ctx, args)
	if err != nil {
		logger.Error().Err(err).Msg("Tool returned an error")
		d.observer.ToolFailed(ctx, name, err)
		return ErrorResult("Error: " + err.Error())
	}
	if res == nil {
		return ErrorResult("Error: tool returned no result")
	}

	logger.Debug().Bool("failed", res.Failed()).Dur("duration", time.Since(start)).Msg("Tool call completed")
	return res
}
