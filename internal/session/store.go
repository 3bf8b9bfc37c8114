package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// MemoryStore keeps sessions in process memory. Stored values are copies, so
// callers can mutate what they get back.
type MemoryStore struct {
	sessions map[string]Session
	mu       sync.RWMutex
	logger   zerolog.Logger
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(logger zerolog.Logger) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		logger:   logger.With().Str("component", "session_store").Logger(),
	}
}

func (s *MemoryStore) Put(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = *sess
	s.logger.Debug().
		Str("session_id", sess.ID).
		Time("expires_at", sess.ExpiresAt).
		Msg("Stored session")
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, notFound(id)
	}
	return &sess, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return notFound(id)
	}
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sess := sess
		out = append(out, &sess)
	}
	return out, nil
}

func (s *MemoryStore) Len(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions), nil
}

// Close drops every session.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.sessions)
	s.sessions = make(map[string]Session)
	s.logger.Info().Int("cleared_sessions", n).Msg("Session store closed")
	return nil
}
