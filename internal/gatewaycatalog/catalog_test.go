package gatewaycatalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayID_FallsBackToLocalIDWhenUnmapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{}})
	}))
	defer srv.Close()

	c := New(srv.URL, "", nil)
	defer c.Stop()

	assert.Equal(t, "anthropic/claude-haiku-4-5", c.GatewayID("anthropic/claude-haiku-4-5"))
}

func TestGatewayID_UsesFetchedMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{
			{"id": "anthropic/claude-haiku-4-5"},
		}})
	}))
	defer srv.Close()

	c := New(srv.URL, "key", nil)
	defer c.Stop()

	require.Equal(t, "anthropic/claude-haiku-4-5", c.GatewayID("anthropic/claude-haiku-4-5"))
}

func TestGatewayID_SuffixMatchesBareAdvertisedName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []map[string]string{
			// the gateway drops our vendor prefix and advertises the bare name
			{"id": "claude-haiku-4-5"},
		}})
	}))
	defer srv.Close()

	c := New(srv.URL, "key", nil)
	defer c.Stop()

	assert.Equal(t, "claude-haiku-4-5", c.GatewayID("anthropic/claude-haiku-4-5"))
}

func TestOnInvalidate_DoesNotPanicWithoutServer(t *testing.T) {
	c := New("http://127.0.0.1:0", "", nil)
	defer c.Stop()
	c.OnInvalidate()
}
