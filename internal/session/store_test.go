package session

import (
	"net/http"
	"testing"
	"time"

	"github.com/llmrouter/router/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGet_RoundTrip(t *testing.T) {
	s := New(time.Hour, 0)
	s.Set("sess1", "anthropic/claude-haiku-4-5", registry.TierSimple)

	e, ok := s.Get("sess1")
	require.True(t, ok)
	assert.Equal(t, "anthropic/claude-haiku-4-5", e.Model)
	assert.Equal(t, registry.TierSimple, e.Tier)
}

func TestGet_MissingSession(t *testing.T) {
	s := New(time.Hour, 0)
	_, ok := s.Get("nope")
	assert.False(t, ok)
}

func TestGet_ExpiredEntryEvicted(t *testing.T) {
	s := New(time.Millisecond, 0)
	s.Set("sess1", "anthropic/claude-haiku-4-5", registry.TierSimple)
	time.Sleep(5 * time.Millisecond)

	_, ok := s.Get("sess1")
	assert.False(t, ok)
}

func TestGetSessionID_HeaderPrecedence(t *testing.T) {
	h := http.Header{}
	h.Set("X-Session-Id", "from-header")
	h.Set("X-Request-Session", "from-other-header")
	assert.Equal(t, "from-header", GetSessionID(h, nil))
}

func TestGetSessionID_FallsBackToCookie(t *testing.T) {
	h := http.Header{}
	cookies := []*http.Cookie{{Name: "session", Value: "from-cookie"}}
	assert.Equal(t, "from-cookie", GetSessionID(h, cookies))
}

func TestGetSessionID_NoneFound(t *testing.T) {
	assert.Equal(t, "", GetSessionID(http.Header{}, nil))
}

func TestSet_BoundedSizeDropsNewSessions(t *testing.T) {
	s := New(time.Hour, 1)
	s.Set("sess1", "model-a", registry.TierSimple)
	s.Set("sess2", "model-b", registry.TierSimple)

	_, ok := s.Get("sess2")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}
