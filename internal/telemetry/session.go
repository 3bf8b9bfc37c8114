package telemetry

import (
	"context"
	"time"

	"noves-mcp-go/internal/session"
)

// SessionManager wraps a session.Manager to record session lifecycle metrics.
type SessionManager struct {
	session.Manager
	metrics *Metrics
	now     func() time.Time
}

var _ session.Manager = (*SessionManager)(nil)

// NewSessionManager wraps manager.
func NewSessionManager(manager session.Manager, metrics *Metrics) *SessionManager {
	return &SessionManager{Manager: manager, metrics: metrics, now: time.Now}
}

func (w *SessionManager) Create(ctx context.Context, client session.ClientInfo) (*session.Session, error) {
	sess, err := w.Manager.Create(ctx, client)
	if err == nil {
		w.metrics.RecordSessionCreated()
		w.syncActive(ctx)
	}
	return sess, err
}

func (w *SessionManager) Validate(ctx context.Context, id string) (*session.Session, error) {
	sess, err := w.Manager.Validate(ctx, id)
	if session.CodeOf(err) == session.CodeExpired {
		// The lifetime is unknown once the manager has dropped the session.
		w.metrics.MCPSessionsTotal.WithLabelValues("expired").Inc()
		w.syncActive(ctx)
	}
	return sess, err
}

func (w *SessionManager) Delete(ctx context.Context, id string) (*session.Session, error) {
	sess, err := w.Manager.Delete(ctx, id)
	if err == nil {
		w.metrics.RecordSessionEnded("deleted", sess.Age(w.now()))
		w.syncActive(ctx)
	}
	return sess, err
}

func (w *SessionManager) Cleanup(ctx context.Context) ([]*session.Session, error) {
	removed, err := w.Manager.Cleanup(ctx)
	now := w.now()
	for _, sess := range removed {
		w.metrics.RecordSessionEnded("expired", sess.Age(now))
	}
	w.syncActive(ctx)
	return removed, err
}

func (w *SessionManager) syncActive(ctx context.Context) {
	if n, err := w.Manager.Count(ctx); err == nil {
		w.metrics.SetActiveSessions(n)
	}
}
