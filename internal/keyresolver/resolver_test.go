package keyresolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_DirectKeyForOpenAIDialect(t *testing.T) {
	r := New(ProviderKeys{DirectKeys: map[string]string{"openai": "sk-test"}})
	a, err := r.Resolve("openai/gpt-4o-mini")
	require.NoError(t, err)
	assert.Equal(t, "openai", a.Provider)
	assert.Equal(t, "sk-test", a.APIKey)
	assert.False(t, a.ViaGateway)
}

func TestResolve_GatewayPreferredForNonOpenAIDialectWhenConfigured(t *testing.T) {
	r := New(ProviderKeys{
		DirectKeys: map[string]string{"anthropic": "direct-key"},
		GatewayKey: "gw-key",
		GatewayURL: "https://gateway.example.com",
	})
	a, err := r.Resolve("anthropic/claude-haiku-4-5")
	require.NoError(t, err)
	assert.True(t, a.ViaGateway)
	assert.Equal(t, "gw-key", a.APIKey)
}

func TestResolve_DirectFallsBackWhenNoGateway(t *testing.T) {
	r := New(ProviderKeys{DirectKeys: map[string]string{"anthropic": "direct-key"}})
	a, err := r.Resolve("anthropic/claude-haiku-4-5")
	require.NoError(t, err)
	assert.False(t, a.ViaGateway)
	assert.Equal(t, "direct-key", a.APIKey)
}

func TestResolve_UnreachableWithNoKeys(t *testing.T) {
	r := New(ProviderKeys{})
	_, err := r.Resolve("anthropic/claude-haiku-4-5")
	assert.Error(t, err)
}

func TestResolve_UnknownModel(t *testing.T) {
	r := New(ProviderKeys{GatewayKey: "x", GatewayURL: "https://gw"})
	_, err := r.Resolve("openai/not-a-real-model")
	assert.Error(t, err)
}

func TestResolvable_MatchesResolve(t *testing.T) {
	r := New(ProviderKeys{DirectKeys: map[string]string{"openai": "sk-test"}})
	assert.True(t, r.Resolvable("openai/gpt-4o-mini"))
	assert.False(t, r.Resolvable("gemini/gemini-1.5-pro"))
}
