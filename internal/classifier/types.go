// Package classifier scores a prompt against weighted signals and maps the
// score, together with hard token thresholds, to a routing tier.
package classifier

import "github.com/llmrouter/router/internal/registry"

// Signal names one scoring contribution, kept for explainability in
// RoutingDecision.reasoning rather than folded anonymously into the total.
type Signal struct {
	Name   string
	Weight float64
}

// Result is the outcome of Classify.
type Result struct {
	Tier    registry.Tier
	Score   float64
	Signals []Signal
	// HardPinned is true when totalTokens forced the COMPLEX floor
	// regardless of score (see Config.ComplexTokenThreshold).
	HardPinned bool
}
