// Package dedup coalesces concurrent duplicate outbound requests keyed by a
// hash of the request body, and replays recently completed responses for a
// short window.
//
// Grounded on internal/gateway/tool_session.go's ToolSessionStore (mutex +
// map + background cleanupLoop/cleanup ticker) and
// internal/costcontrol/tracker.go's Tracker (same discipline, applied to a
// cost accumulator there).
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Response is the captured outcome of a completed request, replayed
// verbatim to later duplicates within the TTL window.
type Response struct {
	StatusCode int
	Headers    map[string][]string
	Body       []byte
}

// entry is either inflight (Done is open, Response is nil) or completed
// (Done is closed, Response is set). The two states never overlap.
type entry struct {
	inflight bool
	done     chan struct{}
	response *Response
	expires  time.Time
}

// Store is a TTL-bounded dedup map, safe for concurrent use.
type Store struct {
	mu        sync.Mutex
	entries   map[string]*entry
	ttl       time.Duration
	stopCh    chan struct{}
	stopOnce  sync.Once
}

// New creates a Store and starts its background cleanup goroutine. ttl
// controls how long a completed entry is replayed before eviction.
func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	s := &Store{
		entries: make(map[string]*entry),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

// Key returns the stable dedup key for an outbound request body.
func Key(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Claim marks key inflight if no entry exists yet, returning owner=true and
// the new entry's done channel. If an entry already exists it returns
// owner=false and that entry's done channel: callers should block on it,
// then call Lookup again once it closes to read either the completed
// Response (hit) or fall through to dispatch themselves if the original
// owner disconnected without completing (wait closes, Lookup reports no hit).
func (s *Store) Claim(key string) (owner bool, wait <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		return false, e.done
	}
	e := &entry{inflight: true, done: make(chan struct{})}
	s.entries[key] = e
	return true, e.done
}

// Lookup returns the completed response for key, if any, without blocking.
func (s *Store) Lookup(key string) (Response, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.inflight || e.response == nil {
		return Response{}, false
	}
	return *e.response, true
}

// Complete transitions key from inflight to completed, publishing resp to
// any waiters and starting its TTL countdown.
func (s *Store) Complete(key string, resp Response) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	e.inflight = false
	e.response = &resp
	e.expires = time.Now().Add(s.ttl)
	close(e.done)
	s.mu.Unlock()
}

// Abandon removes an inflight entry without publishing a response, e.g.
// because the owning client disconnected. Waiters are released so they can
// dispatch themselves instead of hanging forever.
func (s *Store) Abandon(key string) {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		return
	}
	if e.inflight {
		close(e.done)
	}
	delete(s.entries, key)
	s.mu.Unlock()
}

// Stop halts the background cleanup goroutine.
func (s *Store) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *Store) cleanup() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if !e.inflight && now.After(e.expires) {
			delete(s.entries, k)
		}
	}
}
