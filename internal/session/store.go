// Package session pins a chosen model to a client session id for the
// session's lifetime, so repeated "auto" requests from the same
// conversation don't get reclassified on every turn.
//
// Grounded on internal/gateway/tool_session.go's ToolSessionStore
// (mutex-protected map, lazy-sweep TTL eviction).
package session

import (
	"net/http"
	"sync"
	"time"

	"github.com/llmrouter/router/internal/registry"
)

// Entry is a pinned session.
type Entry struct {
	SessionID string
	Model     string
	Tier      registry.Tier
	FirstSeen time.Time
	LastSeen  time.Time
}

// Store is a TTL-bounded session-id -> Entry map.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Entry
	ttl     time.Duration
	maxSize int
}

// New creates a Store. maxSize bounds entry count; 0 means unbounded.
func New(ttl time.Duration, maxSize int) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{entries: make(map[string]*Entry), ttl: ttl, maxSize: maxSize}
}

// GetSessionID extracts a client session id from request headers, in
// priority order: X-Session-Id, X-Request-Session, then a "session" cookie.
// Returns "" if none are present.
func GetSessionID(h http.Header, cookies []*http.Cookie) string {
	if v := h.Get("X-Session-Id"); v != "" {
		return v
	}
	if v := h.Get("X-Request-Session"); v != "" {
		return v
	}
	for _, c := range cookies {
		if c.Name == "session" && c.Value != "" {
			return c.Value
		}
	}
	return ""
}

// Set pins model/tier to sessionID, creating or overwriting the entry.
func (s *Store) Set(sessionID, model string, tier registry.Tier) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(now)
	if s.maxSize > 0 && len(s.entries) >= s.maxSize {
		if _, exists := s.entries[sessionID]; !exists {
			return // drop rather than grow unbounded; caller falls back to classification
		}
	}
	e, ok := s.entries[sessionID]
	if !ok {
		e = &Entry{SessionID: sessionID, FirstSeen: now}
		s.entries[sessionID] = e
	}
	e.Model = model
	e.Tier = tier
	e.LastSeen = now
}

// Get returns the pinned entry for sessionID, touching LastSeen on hit.
func (s *Store) Get(sessionID string) (Entry, bool) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok || now.Sub(e.LastSeen) > s.ttl {
		return Entry{}, false
	}
	e.LastSeen = now
	return *e, true
}

// sweepLocked evicts expired entries. Caller must hold mu.
func (s *Store) sweepLocked(now time.Time) {
	for id, e := range s.entries {
		if now.Sub(e.LastSeen) > s.ttl {
			delete(s.entries, id)
		}
	}
}

// Len returns the current entry count.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
