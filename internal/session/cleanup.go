package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const sweepTimeout = 30 * time.Second

// Sweeper removes expired sessions on a fixed interval.
type Sweeper struct {
	manager  Manager
	interval time.Duration
	logger   zerolog.Logger
}

// NewSweeper creates a sweeper over manager.
func NewSweeper(manager Manager, interval time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		manager:  manager,
		interval: interval,
		logger:   logger.With().Str("component", "session_sweeper").Logger(),
	}
}

// Run sweeps until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("Starting session sweeper")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Session sweeper stopped")
			return nil
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, sweepTimeout)
			if _, err := s.SweepOnce(sweepCtx); err != nil {
				s.logger.Error().Err(err).Msg("Session sweep failed")
			}
			cancel()
		}
	}
}

// SweepOnce removes the currently expired sessions and returns how many.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	start := time.Now()
	removed, err := s.manager.Cleanup(ctx)
	if err != nil {
		return 0, err
	}

	event := s.logger.Debug()
	if len(removed) > 0 {
		event = s.logger.Info()
	}
	event.Int("deleted_count", len(removed)).Dur("duration", time.Since(start)).Msg("Session sweep completed")
	return len(removed), nil
}
