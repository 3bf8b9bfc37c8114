package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"noves-mcp-go/internal/mcp"
	"noves-mcp-go/internal/session"
	"noves-mcp-go/internal/telemetry"
	"noves-mcp-go/internal/tools"
)

// Options contains everything the HTTP handler is built from.
type Options struct {
	Dispatcher     *tools.Dispatcher
	Sessions       session.Manager
	RequireSession bool

	Metrics  *telemetry.Metrics
	Gatherer prometheus.Gatherer

	Logger zerolog.Logger
}

// New creates the HTTP handler serving /mcp, /health and /metrics.
func New(opts Options) http.Handler {
	logger := opts.Logger.With().Str("component", "http").Logger()

	registry := opts.Dispatcher.Registry()
	logger.Info().Int("count", registry.Len()).Strs("tools", registry.Names()).Msg("Registered tools")

	mcpHandler := mcp.NewHTTPHandler(
		mcp.NewServer(opts.Dispatcher, opts.Logger),
		opts.Sessions,
		opts.RequireSession,
		opts.Logger,
	)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	if opts.Metrics != nil {
		r.Use(telemetry.HTTPMetricsMiddleware(opts.Metrics))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", session.HeaderName},
		ExposedHeaders:   []string{session.HeaderName, "Content-Type", "Cache-Control", "Connection"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]any{
			"status": "ok",
			"tools":  registry.Len(),
		})
	})

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	mcpRoutes := r.With()
	if opts.Sessions != nil {
		mcpRoutes = r.With(session.Middleware(opts.Sessions, opts.Logger))
	}
	mcpRoutes.Post("/mcp", mcpHandler.ServeHTTP)
	mcpRoutes.Delete("/mcp", mcpHandler.ServeHTTP)

	return r
}

// requestLogger logs one line per request and puts a request-scoped logger
// into the context for downstream handlers.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			reqLogger := logger.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
			r = r.WithContext(reqLogger.WithContext(r.Context()))

			defer func() {
				reqLogger.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("HTTP request")
			}()

			next.ServeHTTP(ww, r)
		})
	}
}
