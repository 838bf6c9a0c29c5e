package proxy

import "strings"

// retryableStatusCodes mirrors SPEC_FULL.md §6.4: these statuses are
// candidates for fallback, subject to the body-signal check below for
// anything under 500.
var retryableStatusCodes = map[int]bool{
	400: true, 401: true, 402: true, 403: true, 429: true,
	500: true, 502: true, 503: true, 504: true,
}

// errorClassSignals is a data table of body substrings indicating a
// retryable provider-side condition, generalized from
// internal/auth/anthropic/handler.go's ShouldFallback and the parallel
// OpenAI handler's quota/auth signal lists into one provider-agnostic
// table (kept as data, not per-provider code, per the teacher's own
// preference for data-driven pattern tables over hardcoded logic).
var errorClassSignals = []string{
	// billing / quota
	"quota exceeded", "quota_exceeded", "insufficient_quota", "credit balance",
	"billing", "usage limit", "billing_hard_limit_reached",
	// rate limit
	"rate_limit_error", "rate limit", "rate_limit_exceeded",
	// capacity
	"overloaded_error", "overloaded", "capacity",
	// auth invalid (but recoverable via a different key/model)
	"invalid_api_key", "invalid_token", "token_expired", "authentication",
	"invalid credentials", "unauthorized",
	// model unavailable
	"model_not_found", "model not found", "does not exist", "deprecated",
}

// ShouldFallback reports whether statusCode+body justifies walking the
// fallback chain. Statuses >= 500 are always retryable (upstream's
// problem, not a signal-dependent judgment call); everything else needs a
// matching body signal.
func ShouldFallback(statusCode int, body []byte) (bool, string) {
	if !retryableStatusCodes[statusCode] {
		return false, ""
	}
	if statusCode >= 500 {
		return true, "upstream server error"
	}

	msg := strings.ToLower(string(body))
	for _, signal := range errorClassSignals {
		if strings.Contains(msg, signal) {
			return true, signal
		}
	}
	return false, ""
}
