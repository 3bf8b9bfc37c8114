package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ManagerConfig configures a DefaultManager.
type ManagerConfig struct {
	Timeout time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

// DefaultManager implements Manager on top of a Store.
type DefaultManager struct {
	store   Store
	timeout time.Duration
	now     func() time.Time
	logger  zerolog.Logger
}

// NewManager creates a manager with sliding expiry of cfg.Timeout.
func NewManager(store Store, cfg ManagerConfig, logger zerolog.Logger) *DefaultManager {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &DefaultManager{
		store:   store,
		timeout: cfg.Timeout,
		now:     now,
		logger:  logger.With().Str("component", "session_manager").Logger(),
	}
}

func (m *DefaultManager) Create(ctx context.Context, client ClientInfo) (*Session, error) {
	now := m.now()
	id, err := NewID(now)
	if err != nil {
		m.logger.Error().Err(err).Str("remote_addr", client.RemoteAddr).Msg("Failed to generate session ID")
		return nil, err
	}

	sess := &Session{
		ID:         id,
		CreatedAt:  now,
		LastAccess: now,
		ExpiresAt:  now.Add(m.timeout),
		Client:     client,
	}
	if err := m.store.Put(ctx, sess); err != nil {
		return nil, storageError("create", err)
	}

	m.logger.Info().
		Str("session_id", id).
		Str("remote_addr", client.RemoteAddr).
		Str("client", client.Name).
		Time("expires_at", sess.ExpiresAt).
		Msg("Session created")
	return sess, nil
}

func (m *DefaultManager) Validate(ctx context.Context, id string) (*Session, error) {
	if _, err := ParseID(id); err != nil {
		return nil, err
	}

	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if sess.ExpiredAt(m.now()) {
		if err := m.store.Delete(ctx, id); err != nil && CodeOf(err) != CodeNotFound {
			m.logger.Warn().Err(err).Str("session_id", id).Msg("Failed to delete expired session")
		}
		return nil, expired(id)
	}
	return sess, nil
}

func (m *DefaultManager) Refresh(ctx context.Context, id string) error {
	sess, err := m.Validate(ctx, id)
	if err != nil {
		return err
	}

	now := m.now()
	sess.LastAccess = now
	sess.ExpiresAt = now.Add(m.timeout)
	if err := m.store.Put(ctx, sess); err != nil {
		return storageError("refresh", err)
	}
	return nil
}

func (m *DefaultManager) Delete(ctx context.Context, id string) (*Session, error) {
	sess, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return nil, err
	}

	m.logger.Info().Str("session_id", id).Msg("Session deleted")
	return sess, nil
}

func (m *DefaultManager) Cleanup(ctx context.Context) ([]*Session, error) {
	sessions, err := m.store.List(ctx)
	if err != nil {
		return nil, storageError("cleanup", err)
	}

	now := m.now()
	var removed []*Session
	for _, sess := range sessions {
		if !sess.ExpiredAt(now) {
			continue
		}
		if err := m.store.Delete(ctx, sess.ID); err != nil {
			m.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("Failed to delete expired session during cleanup")
			continue
		}
		removed = append(removed, sess)
	}
	return removed, nil
}

func (m *DefaultManager) Count(ctx context.Context) (int, error) {
	n, err := m.store.Len(ctx)
	if err != nil {
		return 0, storageError("count", err)
	}
	return n, nil
}
