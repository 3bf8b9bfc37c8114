package session

import (
	"context"
	"net/http"

	"github.com/go-chi/render"
	"github.com/rs/zerolog"
)

type contextKey struct{}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session attached by the middleware.
func FromContext(ctx context.Context) (*Session, bool) {
	sess, ok := ctx.Value(contextKey{}).(*Session)
	return sess, ok && sess != nil
}

// Middleware resolves the Mcp-Session-Id header. Requests without the header
// pass through untouched so initialize can open a session; requests with an
// unknown, expired or malformed id are rejected.
func Middleware(manager Manager, logger zerolog.Logger) func(http.Handler) http.Handler {
	logger = logger.With().Str("component", "session_middleware").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(HeaderName)
			if id == "" || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := manager.Validate(r.Context(), id)
			if err != nil {
				logger.Debug().Err(err).Str("session_id", id).Str("path", r.URL.Path).Msg("Session validation failed")
				writeError(w, r, err)
				return
			}

			if err := manager.Refresh(r.Context(), id); err != nil {
				logger.Warn().Err(err).Str("session_id", id).Msg("Failed to refresh session")
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// StatusCode maps a session error to an HTTP status. Unknown and expired
// sessions are 404 so clients know to initialize again.
func StatusCode(err error) int {
	switch CodeOf(err) {
	case CodeInvalid:
		return http.StatusBadRequest
	case CodeNotFound, CodeExpired:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusCode(err)
	render.Status(r, status)
	render.JSON(w, r, map[string]any{
		"error": map[string]any{
			"message": err.Error(),
			"code":    CodeOf(err),
			"status":  status,
		},
	})
}
