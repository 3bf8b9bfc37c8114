package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"noves-mcp-go/internal/config"
	"noves-mcp-go/internal/mcp"
	"noves-mcp-go/internal/provider/noves"
	"noves-mcp-go/internal/server"
	"noves-mcp-go/internal/session"
	"noves-mcp-go/internal/telemetry"
	"noves-mcp-go/internal/tools"
	"noves-mcp-go/internal/tools/chain"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Stdout carries the stdio transport, so logs always go to stderr.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().
		Timestamp().
		Logger()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("Invalid configuration")
	}

	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	zerolog.SetGlobalLevel(level)

	if cfg.Noves.APIKey == "" {
		logger.Warn().Msg("NOVES_API_KEY is not set, provider requests will be unauthenticated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
	logger.Info().Msg("Server stopped")
}

func run(sigCtx context.Context, cfg config.Config, logger zerolog.Logger) error {
	ctx, cancel := context.WithCancel(sigCtx)
	defer cancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := telemetry.NewMetrics(reg)

	client := noves.NewClient(noves.Config{
		TranslateURL: cfg.Noves.TranslateURL,
		PricingURL:   cfg.Noves.PricingURL,
		APIKey:       cfg.Noves.APIKey,
		Timeout:      cfg.Noves.Timeout,
		RateLimit:    cfg.Noves.RateLimit,
		Burst:        cfg.Noves.Burst,
	}, logger)

	registry := tools.NewRegistry()
	observer := telemetry.NewObserver(metrics, logger, chain.Names())
	chain.Register(registry, chain.Deps{Provider: client, Observer: observer})
	dispatcher := tools.NewDispatcher(registry, observer, logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return telemetry.NewSystemMetricsCollector(metrics, logger, cfg.MetricsInterval).Run(ctx)
	})

	if cfg.Transport == config.TransportStdio {
		g.Go(func() error {
			// EOF on stdin stops the collector too.
			defer cancel()
			return mcp.NewServer(dispatcher, logger).ServeStdio(ctx, os.Stdin, os.Stdout)
		})
		return waitStdio(sigCtx, g)
	}

	store := session.NewMemoryStore(logger)
	defer store.Close()
	sessions := telemetry.NewSessionManager(
		session.NewManager(store, session.ManagerConfig{Timeout: cfg.SessionTimeout}, logger),
		metrics,
	)

	g.Go(func() error {
		return session.NewSweeper(sessions, cfg.CleanupInterval, logger).Run(ctx)
	})

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: server.New(server.Options{
			Dispatcher:     dispatcher,
			Sessions:       sessions,
			RequireSession: cfg.RequireSession,
			Metrics:        metrics,
			Gatherer:       reg,
			Logger:         logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		logger.Info().
			Str("addr", cfg.Addr).
			Dur("session_timeout", cfg.SessionTimeout).
			Bool("require_session", cfg.RequireSession).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// waitStdio waits for g unless a signal arrives first. A blocked stdin read
// cannot be interrupted, so on a signal it returns without waiting.
func waitStdio(sigCtx context.Context, g *errgroup.Group) error {
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	select {
	case err := <-done:
		return err
	case <-sigCtx.Done():
		return nil
	}
}
