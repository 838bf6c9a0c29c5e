package costcontrol

import (
	"sync"
	"sync/atomic"
	"time"
)

// evictAfter is how long a session can sit idle before its accumulated
// cost is dropped from both the session map and the global total.
const evictAfter = 24 * time.Hour

// Tracker accumulates cost per session id and, when its config says to,
// rejects further requests once a cap is crossed. Accumulation itself
// never stops; only the accept/reject decision in CheckBudget depends on
// config.Enabled.
type Tracker struct {
	config   CostControlConfig
	sessions map[string]*CostSession
	mu       sync.RWMutex

	// globalCostNano is the running total across every session, in
	// nano-dollars so it can be read and adjusted with atomic ops instead
	// of taking mu for every RecordUsage/CheckBudget call.
	globalCostNano int64
}

// NewTracker starts a Tracker and its background eviction sweep.
func NewTracker(cfg CostControlConfig) *Tracker {
	t := &Tracker{
		config:   cfg,
		sessions: make(map[string]*CostSession),
	}
	go t.evictLoop()
	return t
}

// CheckBudget reports whether sessionID may proceed. When enforcement is
// off it always allows the request but still reports the running totals,
// so a caller can log them even on a deployment with no cap configured.
func (t *Tracker) CheckBudget(sessionID string) BudgetCheckResult {
	sessionCap, globalCap := t.effectiveCaps()

	t.mu.RLock()
	sessionCost := 0.0
	if s := t.sessions[sessionID]; s != nil {
		sessionCost = s.Cost
	}
	t.mu.RUnlock()

	globalCost := t.GetGlobalCost()
	result := BudgetCheckResult{CurrentCost: sessionCost, GlobalCost: globalCost, Cap: sessionCap, GlobalCap: globalCap}

	if !t.config.Enabled {
		result.Allowed = true
		return result
	}

	if globalCap > 0 && globalCost >= globalCap {
		return result // Allowed stays false
	}
	if sessionCap > 0 && sessionCost >= sessionCap {
		return result
	}
	result.Allowed = true
	return result
}

// GetGlobalCost returns the running total across every session.
func (t *Tracker) GetGlobalCost() float64 {
	return nanoToDollars(atomic.LoadInt64(&t.globalCostNano))
}

// RecordUsage converts token counts into a dollar cost via the model's
// pricing and adds it to both the session's and the global total.
// cacheCreationTokens/cacheReadTokens are Anthropic prompt-caching counts;
// pass zero for dialects that don't report them.
func (t *Tracker) RecordUsage(sessionID, model string, inputTokens, outputTokens, cacheCreationTokens, cacheReadTokens int) {
	pricing := GetModelPricing(model)
	var cost float64
	if cacheCreationTokens > 0 || cacheReadTokens > 0 {
		cost = CalculateCostWithCache(inputTokens, outputTokens, cacheCreationTokens, cacheReadTokens, pricing)
	} else {
		cost = CalculateCost(inputTokens, outputTokens, pricing)
	}

	t.mu.Lock()
	s := t.getOrCreateLocked(sessionID, model)
	s.Cost += cost
	s.RequestCount++
	s.LastUpdated = time.Now()
	if model != "" {
		s.Model = model
	}
	t.mu.Unlock()

	atomic.AddInt64(&t.globalCostNano, dollarsToNano(cost))
}

// GetSessionCost returns sessionID's running total, or 0 if it has never
// recorded usage.
func (t *Tracker) GetSessionCost(sessionID string) float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if s, ok := t.sessions[sessionID]; ok {
		return s.Cost
	}
	return 0
}

// AllSessions snapshots every tracked session for the dashboard, stamped
// with the session cap currently in effect.
func (t *Tracker) AllSessions() []CostSessionSnapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	sessionCap, _ := t.effectiveCaps()
	out := make([]CostSessionSnapshot, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, CostSessionSnapshot{
			ID: s.ID, Cost: s.Cost, Cap: sessionCap, RequestCount: s.RequestCount,
			Model: s.Model, CreatedAt: s.CreatedAt, LastUpdated: s.LastUpdated,
		})
	}
	return out
}

// Config returns the tracker's config with caps normalized by
// effectiveCaps, for the dashboard to render.
func (t *Tracker) Config() CostControlConfig {
	cfg := t.config
	cfg.SessionCap, cfg.GlobalCap = t.effectiveCaps()
	return cfg
}

// effectiveCaps folds a session-cap-only config into a global cap: an
// operator who only set LLMROUTER_SESSION_CAP almost always means "stop
// the deployment from spending more than this in total", not "let each
// session spend this much independently" (which, with enough concurrent
// sessions, has no ceiling at all).
func (t *Tracker) effectiveCaps() (sessionCap, globalCap float64) {
	sessionCap, globalCap = t.config.SessionCap, t.config.GlobalCap
	if globalCap <= 0 && sessionCap > 0 {
		return 0, sessionCap
	}
	return sessionCap, globalCap
}

func (t *Tracker) getOrCreateLocked(sessionID, model string) *CostSession {
	if s, ok := t.sessions[sessionID]; ok {
		return s
	}
	s := &CostSession{ID: sessionID, Model: model, CreatedAt: time.Now(), LastUpdated: time.Now()}
	t.sessions[sessionID] = s
	return s
}

func (t *Tracker) evictLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		t.evictStale()
	}
}

func (t *Tracker) evictStale() {
	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, s := range t.sessions {
		if now.Sub(s.LastUpdated) > evictAfter {
			atomic.AddInt64(&t.globalCostNano, -dollarsToNano(s.Cost))
			delete(t.sessions, id)
		}
	}
}

func dollarsToNano(d float64) int64 { return int64(d * 1e9) }
func nanoToDollars(n int64) float64 { return float64(n) / 1e9 }
