// Package costcontrol accumulates per-session and aggregate USD spend for
// every completed proxy request and, when a cap is configured, refuses new
// requests once a session or the whole deployment has exceeded it.
//
// Accumulation always runs, whether or not a cap is set, so /v1/admin/costs
// has something to show even on a deployment that never enforces a budget.
package costcontrol

import (
	"fmt"
	"time"
)

// CostControlConfig is the budget-enforcement policy for a Server, loaded
// from LLMROUTER_COST_CONTROL_ENABLED / LLMROUTER_SESSION_CAP /
// LLMROUTER_GLOBAL_CAP by internal/config.
type CostControlConfig struct {
	Enabled    bool    `yaml:"enabled"`     // enforce caps; false still tracks spend
	SessionCap float64 `yaml:"session_cap"` // USD, per session id; 0 disables
	GlobalCap  float64 `yaml:"global_cap"`  // USD, across every session; 0 disables
}

// Validate rejects a negative cap before it reaches the tracker.
func (c *CostControlConfig) Validate() error {
	if c.SessionCap < 0 {
		return fmt.Errorf("cost_control.session_cap must be >= 0, got %f", c.SessionCap)
	}
	if c.GlobalCap < 0 {
		return fmt.Errorf("cost_control.global_cap must be >= 0, got %f", c.GlobalCap)
	}
	return nil
}

// CostSession is one session id's running total.
type CostSession struct {
	ID           string
	Cost         float64
	RequestCount int
	Model        string
	CreatedAt    time.Time
	LastUpdated  time.Time
}

// BudgetCheckResult is what CheckBudget hands back to the caller deciding
// whether to admit a request.
type BudgetCheckResult struct {
	Allowed     bool
	CurrentCost float64 // this session's running total
	GlobalCost  float64 // every session's running total
	Cap         float64 // the session cap in effect
	GlobalCap   float64
}

// CostSessionSnapshot is an immutable copy of a CostSession for rendering,
// safe to read after the tracker's lock is released.
type CostSessionSnapshot struct {
	ID           string
	Cost         float64
	Cap          float64
	RequestCount int
	Model        string
	CreatedAt    time.Time
	LastUpdated  time.Time
}
