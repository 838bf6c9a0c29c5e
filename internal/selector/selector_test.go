package selector

import (
	"testing"

	"github.com/llmrouter/router/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allResolvable(string) bool { return true }

func TestSelect_PrimaryWhenResolvable(t *testing.T) {
	d, err := Select(registry.TierSimple, false, allResolvable)
	require.NoError(t, err)
	assert.Equal(t, registry.TierSimple, d.Tier)
	assert.False(t, d.Widened)
	assert.NotEmpty(t, d.Model)
}

func TestSelect_FallsBackWithinTier(t *testing.T) {
	cfg := registry.TierTable(false)[registry.TierSimple]
	resolvable := func(id string) bool { return id != cfg.Primary }
	d, err := Select(registry.TierSimple, false, resolvable)
	require.NoError(t, err)
	assert.Equal(t, registry.TierSimple, d.Tier)
	assert.NotEqual(t, cfg.Primary, d.Model)
}

func TestSelect_WidensWhenTierFullyUnresolvable(t *testing.T) {
	simpleIDs := map[string]bool{}
	cfg := registry.TierTable(false)[registry.TierSimple]
	simpleIDs[cfg.Primary] = true
	for _, f := range cfg.Fallback {
		simpleIDs[f] = true
	}
	resolvable := func(id string) bool { return !simpleIDs[id] }

	d, err := Select(registry.TierSimple, false, resolvable)
	require.NoError(t, err)
	assert.NotEqual(t, registry.TierSimple, d.Tier)
	assert.True(t, d.Widened)
	assert.NotEmpty(t, d.Notes)
}

func TestSelect_NoneResolvable_ReturnsError(t *testing.T) {
	_, err := Select(registry.TierSimple, false, func(string) bool { return false })
	assert.Error(t, err)
}

func TestSelect_FallbackExcludesChosenModel(t *testing.T) {
	d, err := Select(registry.TierComplex, false, allResolvable)
	require.NoError(t, err)
	for _, fb := range d.Fallback {
		assert.NotEqual(t, d.Model, fb)
	}
}
