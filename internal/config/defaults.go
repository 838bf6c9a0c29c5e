// Package config - defaults.go centralizes magic numbers and default values.
//
// DESIGN: All default values that appear in multiple places should be defined here.
// This makes configuration more maintainable and auditable.
package config

import "time"

// =============================================================================
// TOKEN ESTIMATION
// =============================================================================

// TokenEstimateRatio is the approximate number of characters per token.
// classifier.CountTokens applies the same ratio (as a literal) when
// tiktoken-go has no encoding loaded; it does not read this constant.
const TokenEstimateRatio = 4

// =============================================================================
// CLEANUP AND MAINTENANCE
// =============================================================================

// DefaultCleanupInterval is a default frequency for background cleanup
// goroutines. No store reads it: the dedup store sweeps once per its TTL,
// and the session and rate-limit stores evict lazily.
const DefaultCleanupInterval = 5 * time.Minute

// DefaultSessionTTL is the TTL for session-scoped model pins.
const DefaultSessionTTL = 1 * time.Hour

// DefaultDedupTTL is how long a completed response is replayed to
// duplicate requests.
const DefaultDedupTTL = 30 * time.Second

// DefaultRateLimitCooldown is how long a model stays deprioritized after a
// 429 before it's eligible again.
const DefaultRateLimitCooldown = 60 * time.Second

// =============================================================================
// HTTP AND NETWORKING
// =============================================================================

// DefaultDialTimeout is the TCP dial timeout for upstream connections.
const DefaultDialTimeout = 30 * time.Second

// MaxErrorBodyLogLen limits error response body in logs to prevent bloat.
const MaxErrorBodyLogLen = 500

// DefaultServerWriteTimeout for the HTTP server (safe for streaming).
const DefaultServerWriteTimeout = 10 * time.Minute

// DefaultPort is the port the proxy listens on when --port isn't given.
const DefaultPort = 8787

// =============================================================================
// COST CONTROL
// =============================================================================

// DefaultCostSessionTTL is how long cost sessions are tracked.
const DefaultCostSessionTTL = 24 * time.Hour
