package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldFallback_ServerErrorAlwaysRetries(t *testing.T) {
	ok, reason := ShouldFallback(503, []byte("whatever, doesn't matter"))
	assert.True(t, ok)
	assert.NotEmpty(t, reason)
}

func TestShouldFallback_429WithRateLimitSignal(t *testing.T) {
	ok, reason := ShouldFallback(429, []byte(`{"error":{"type":"rate_limit_error"}}`))
	assert.True(t, ok)
	assert.Equal(t, "rate_limit_error", reason)
}

func TestShouldFallback_429WithoutSignal(t *testing.T) {
	ok, _ := ShouldFallback(429, []byte(`{"error":"something unrelated"}`))
	assert.False(t, ok)
}

func TestShouldFallback_NonRetryableStatus(t *testing.T) {
	ok, _ := ShouldFallback(404, []byte("not found"))
	assert.False(t, ok)
}

func TestShouldFallback_400WithQuotaSignal(t *testing.T) {
	ok, _ := ShouldFallback(400, []byte("insufficient_quota for this account"))
	assert.True(t, ok)
}
