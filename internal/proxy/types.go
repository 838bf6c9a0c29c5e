// Package proxy is the HTTP front end: it orchestrates the classifier,
// selector, key resolver, dialect adapter, dedup store, session store, and
// rate-limit map for every /v1/chat/completions request, and serves
// /health, /stats, /v1/models alongside it.
//
// Grounded on internal/gateway/handler.go in full (handleProxy,
// handleStreamingWithExpand, streamResponse, forwardPassthrough,
// telemetryParams/recordRequestTelemetry) and
// internal/gateway/phantom_loop.go's bounded retry loop.
package proxy

import (
	"time"

	"github.com/llmrouter/router/internal/registry"
)

// RoutingDecision records where a request went and why. recordCompletion
// copies its model and tier into the usage log; no response header
// carries it.
type RoutingDecision struct {
	Tier         registry.Tier
	Model        string
	CostEstimate float64
	BaselineCost float64
	Savings      float64
	Reasoning    string
	Notes        []string
	FromPin      bool // true when served from a session pin, classifier skipped
}

// requestContext carries everything the state machine threads through a
// single request's RECEIVE->COMPLETE lifecycle.
type requestContext struct {
	requestID   string
	startedAt   time.Time
	sessionID   string
	decision    RoutingDecision
	isStreaming bool
	fallbackN   int
}
