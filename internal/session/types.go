package session

import (
	"context"
	"time"
)

// HeaderName carries the session id on every MCP request after initialize.
const HeaderName = "Mcp-Session-Id"

// Session is an MCP client session opened by initialize.
type Session struct {
	ID         string     `json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	LastAccess time.Time  `json:"last_access"`
	ExpiresAt  time.Time  `json:"expires_at"`
	Client     ClientInfo `json:"client"`
}

// ClientInfo describes the peer that opened the session.
type ClientInfo struct {
	RemoteAddr string `json:"remote_addr"`
	UserAgent  string `json:"user_agent"`
	// Name and Version come from the clientInfo of the initialize request.
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

// ExpiredAt reports whether the session is expired at now.
func (s *Session) ExpiredAt(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Age is the lifetime of the session at now.
func (s *Session) Age(now time.Time) time.Duration {
	return now.Sub(s.CreatedAt)
}

// Manager creates and tracks sessions.
type Manager interface {
	// Create opens a new session.
	Create(ctx context.Context, client ClientInfo) (*Session, error)

	// Validate returns the live session with id. Expired sessions are removed
	// and reported as expired.
	Validate(ctx context.Context, id string) (*Session, error)

	// Refresh extends the expiry of a live session.
	Refresh(ctx context.Context, id string) error

	// Delete ends a session and returns it.
	Delete(ctx context.Context, id string) (*Session, error)

	// Cleanup removes every expired session and returns the removed ones.
	Cleanup(ctx context.Context) ([]*Session, error)

	// Count returns the number of stored sessions.
	Count(ctx context.Context) (int, error)
}

// Store persists sessions.
type Store interface {
	Put(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Session, error)
	Len(ctx context.Context) (int, error)
	Close() error
}
