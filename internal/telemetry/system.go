package telemetry

import (
	"context"
	"runtime"
	"time"

	"github.com/rs/zerolog"
)

// SystemMetricsCollector samples goroutine count and heap usage periodically.
type SystemMetricsCollector struct {
	metrics  *Metrics
	logger   zerolog.Logger
	interval time.Duration
}

// NewSystemMetricsCollector creates a collector sampling every interval.
func NewSystemMetricsCollector(metrics *Metrics, logger zerolog.Logger, interval time.Duration) *SystemMetricsCollector {
	return &SystemMetricsCollector{
		metrics:  metrics,
		logger:   logger.With().Str("component", "system_metrics").Logger(),
		interval: interval,
	}
}

// Run samples immediately and then on every tick until ctx is done.
func (c *SystemMetricsCollector) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.logger.Info().Dur("interval", c.interval).Msg("Starting system metrics collection")
	c.Collect()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info().Msg("Stopping system metrics collection")
			return nil
		case <-ticker.C:
			c.Collect()
		}
	}
}

// Collect takes one sample.
func (c *SystemMetricsCollector) Collect() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	goroutines := runtime.NumGoroutine()

	c.metrics.UpdateSystemMetrics(goroutines, m.Alloc)

	c.logger.Debug().
		Int("goroutines", goroutines).
		Uint64("memory_bytes", m.Alloc).
		Msg("Updated system metrics")
}
