package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestManager(timeout time.Duration) (*DefaultManager, *testClock) {
	clock := &testClock{now: time.Unix(1700000000, 0)}
	store := NewMemoryStore(zerolog.Nop())
	return NewManager(store, ManagerConfig{Timeout: timeout, Now: clock.Now}, zerolog.Nop()), clock
}

func TestNewID_Format(t *testing.T) {
	now := time.Unix(1700000000, 0)
	id, err := NewID(now)
	if err != nil {
		t.Fatalf("NewID failed: %v", err)
	}

	if !strings.HasPrefix(id, "sess.1700000000.") {
		t.Errorf("Unexpected id %q", id)
	}

	created, err := ParseID(id)
	if err != nil {
		t.Fatalf("ParseID rejected a fresh id: %v", err)
	}
	if !created.Equal(now) {
		t.Errorf("Expected creation time %v, got %v", now, created)
	}

	other, _ := NewID(now)
	if other == id {
		t.Error("Expected unique ids")
	}
}

func TestParseID_Rejects(t *testing.T) {
	valid, _ := NewID(time.Now())
	random := strings.SplitN(valid, ".", 3)[2]

	tests := map[string]string{
		"empty":        "",
		"two parts":    "sess.123",
		"wrong prefix": "sid.123." + random,
		"bad time":     "sess.abc." + random,
		"short random": "sess.123.abc",
		"bad chars":    "sess.123." + strings.Repeat("*", len(random)),
	}

	for name, id := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseID(id)
			if CodeOf(err) != CodeInvalid {
				t.Errorf("Expected %s, got %v", CodeInvalid, err)
			}
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(zerolog.Nop())

	sess := &Session{ID: "a", ExpiresAt: time.Unix(10, 0)}
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	sess.ExpiresAt = time.Unix(20, 0)

	got, err := store.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.ExpiresAt.Equal(time.Unix(10, 0)) {
		t.Error("Store must not alias caller values")
	}

	if err := store.Delete(ctx, "missing"); CodeOf(err) != CodeNotFound {
		t.Errorf("Expected not found, got %v", err)
	}
	if n, _ := store.Len(ctx); n != 1 {
		t.Errorf("Expected 1 session, got %d", n)
	}

	store.Close()
	if n, _ := store.Len(ctx); n != 0 {
		t.Errorf("Expected empty store after Close, got %d", n)
	}
}

func TestManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(time.Hour)

	sess, err := m.Create(ctx, ClientInfo{RemoteAddr: "127.0.0.1", Name: "inspector"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !sess.ExpiresAt.Equal(clock.Now().Add(time.Hour)) {
		t.Errorf("Unexpected expiry %v", sess.ExpiresAt)
	}

	got, err := m.Validate(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if got.Client.Name != "inspector" {
		t.Errorf("Expected client info to be kept, got %+v", got.Client)
	}

	clock.Advance(30 * time.Minute)
	if err := m.Refresh(ctx, sess.ID); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	clock.Advance(45 * time.Minute)
	if _, err := m.Validate(ctx, sess.ID); err != nil {
		t.Errorf("Refresh should have extended the session: %v", err)
	}

	deleted, err := m.Delete(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted.ID != sess.ID {
		t.Errorf("Expected deleted session to be returned")
	}
	if _, err := m.Validate(ctx, sess.ID); CodeOf(err) != CodeNotFound {
		t.Errorf("Expected not found after delete, got %v", err)
	}
}

func TestManager_ExpiredSessionIsRemoved(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(time.Minute)

	sess, _ := m.Create(ctx, ClientInfo{})
	clock.Advance(2 * time.Minute)

	if _, err := m.Validate(ctx, sess.ID); CodeOf(err) != CodeExpired {
		t.Fatalf("Expected expired, got %v", err)
	}
	if n, _ := m.Count(ctx); n != 0 {
		t.Errorf("Expected expired session to be removed, %d left", n)
	}
}

func TestSweeper_SweepOnce(t *testing.T) {
	ctx := context.Background()
	m, clock := newTestManager(time.Minute)

	old, _ := m.Create(ctx, ClientInfo{})
	clock.Advance(2 * time.Minute)
	fresh, _ := m.Create(ctx, ClientInfo{})

	n, err := NewSweeper(m, time.Minute, zerolog.Nop()).SweepOnce(ctx)
	if err != nil {
		t.Fatalf("SweepOnce failed: %v", err)
	}
	if n != 1 {
		t.Errorf("Expected 1 removed session, got %d", n)
	}
	if _, err := m.Validate(ctx, old.ID); err == nil {
		t.Error("Expected old session to be gone")
	}
	if _, err := m.Validate(ctx, fresh.ID); err != nil {
		t.Errorf("Fresh session should survive: %v", err)
	}
}

func TestSweeper_RunStopsOnCancel(t *testing.T) {
	m, _ := newTestManager(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- NewSweeper(m, time.Millisecond, zerolog.Nop()).Run(ctx) }()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Sweeper did not stop")
	}
}

func TestMiddleware(t *testing.T) {
	m, _ := newTestManager(time.Hour)
	sess, _ := m.Create(context.Background(), ClientInfo{})

	var seen *Session
	handler := Middleware(m, zerolog.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantSess   bool
	}{
		{"no header", "", http.StatusNoContent, false},
		{"valid", sess.ID, http.StatusNoContent, true},
		{"malformed", "nope", http.StatusBadRequest, false},
		{"unknown", "sess.1." + strings.Repeat("A", 43), http.StatusNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
			if tt.header != "" {
				req.Header.Set(HeaderName, tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if (seen != nil) != tt.wantSess {
				t.Errorf("Expected session in context: %v", tt.wantSess)
			}
			if rec.Code >= 400 {
				var body map[string]map[string]any
				if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
					t.Fatalf("Expected JSON error body: %v", err)
				}
				if body["error"]["code"] == "" {
					t.Error("Expected an error code")
				}
			}
		})
	}
}
