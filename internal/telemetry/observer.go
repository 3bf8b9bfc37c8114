package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"noves-mcp-go/internal/provider"
	"noves-mcp-go/internal/tools"
)

const unknownTool = "unknown"

// Observer records tool call events as Prometheus metrics and zerolog events.
type Observer struct {
	metrics *Metrics
	logger  zerolog.Logger
	known   map[string]bool
}

var _ tools.Observer = (*Observer)(nil)

// NewObserver creates an observer. Tool names outside known are recorded
// under a single "unknown" label.
func NewObserver(metrics *Metrics, logger zerolog.Logger, known []string) *Observer {
	set := make(map[string]bool, len(known))
	for _, name := range known {
		set[name] = true
	}
	return &Observer{
		metrics: metrics,
		logger:  logger.With().Str("component", "tool_observer").Logger(),
		known:   set,
	}
}

func (o *Observer) label(tool string) string {
	if o.known[tool] {
		return tool
	}
	return unknownTool
}

// log prefers the per-call logger carried by ctx.
func (o *Observer) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &o.logger
}

func (o *Observer) ToolStarted(ctx context.Context, tool string) {
	o.log(ctx).Debug().Str("tool", tool).Msg("Tool call started")
}

func (o *Observer) ToolFinished(ctx context.Context, tool string, duration time.Duration, failed bool) {
	result := "success"
	if failed {
		result = "error"
	}
	o.metrics.RecordToolExecution(o.label(tool), result, duration)
	o.log(ctx).Info().
		Str("tool", tool).
		Str("status", result).
		Dur("duration", duration).
		Msg("Tool call finished")
}

func (o *Observer) ValidationStarted(context.Context, string) {}

func (o *Observer) ValidationFinished(ctx context.Context, tool string, err error) {
	if err == nil {
		return
	}
	o.metrics.RecordValidationFailure(o.label(tool))
	o.log(ctx).Debug().Err(err).Str("tool", tool).Msg("Tool arguments rejected")
}

func (o *Observer) ProviderCallStarted(ctx context.Context, tool, op string) {
	o.log(ctx).Debug().Str("tool", tool).Str("operation", op).Msg("Provider call started")
}

func (o *Observer) ProviderCallFinished(ctx context.Context, tool, op string, duration time.Duration, err error) {
	o.metrics.RecordProviderCall(op, status(err), duration)
	o.log(ctx).Debug().
		Err(err).
		Str("tool", tool).
		Str("operation", op).
		Dur("duration", duration).
		Msg("Provider call finished")
}

func (o *Observer) ToolFailed(ctx context.Context, tool string, err error) {
	event := o.log(ctx).Warn().Err(err).Str("tool", tool)
	var perr *provider.Error
	if errors.As(err, &perr) && perr.StatusCode != 0 {
		event = event.Int("provider_status", perr.StatusCode)
	}
	event.Msg("Tool call failed")
}
