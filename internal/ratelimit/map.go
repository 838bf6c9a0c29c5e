// Package ratelimit tracks per-model cooldown marks set when a provider
// returns a 429, so the proxy can deprioritize recently-throttled models in
// its fallback walk.
//
// Grounded on internal/auth/anthropic/handler.go's ShouldFallback, whose
// status-code signal (429 among others) is the trigger for Mark
// here, and on the same TTL-map idiom as internal/dedup and
// internal/session.
package ratelimit

import (
	"sort"
	"sync"
	"time"
)

// Map is a per-model rate-limit cooldown tracker.
type Map struct {
	mu       sync.Mutex
	marks    map[string]time.Time
	cooldown time.Duration
}

// New creates a Map with the given cooldown window (default 60s).
func New(cooldown time.Duration) *Map {
	if cooldown <= 0 {
		cooldown = 60 * time.Second
	}
	return &Map{marks: make(map[string]time.Time), cooldown: cooldown}
}

// Mark records that modelID was just rate-limited.
func (m *Map) Mark(modelID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.marks[modelID] = time.Now()
}

// IsLimited reports whether modelID has an unexpired mark, lazily evicting
// it if it has expired.
func (m *Map) IsLimited(modelID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.marks[modelID]
	if !ok {
		return false
	}
	if time.Since(t) >= m.cooldown {
		delete(m.marks, modelID)
		return false
	}
	return true
}

// Prioritize partitions ids into {not currently limited} followed by
// {limited}, preserving relative order within each partition. If every id
// is limited, the least-recently-marked one is moved to the front so the
// proxy still has somewhere to retry.
func (m *Map) Prioritize(ids []string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var free, limited []string
	for _, id := range ids {
		t, marked := m.marks[id]
		if !marked || time.Since(t) >= m.cooldown {
			free = append(free, id)
			continue
		}
		limited = append(limited, id)
	}
	if len(free) > 0 {
		return append(free, limited...)
	}
	if len(limited) == 0 {
		return nil
	}
	// All limited: oldest mark first (least-recently-throttled, most likely
	// to have recovered).
	sorted := append([]string{}, limited...)
	sort.Slice(sorted, func(i, j int) bool {
		return m.marks[sorted[i]].Before(m.marks[sorted[j]])
	})
	return sorted
}
