package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_Known(t *testing.T) {
	m, ok := Get("anthropic/claude-haiku-4-5")
	require.True(t, ok)
	assert.Equal(t, "anthropic", m.ProviderPrefix)
	assert.True(t, m.Agentic)
}

func TestGet_Unknown(t *testing.T) {
	_, ok := Get("openai/does-not-exist")
	assert.False(t, ok)
}

func TestPricingFor_ExactMatch(t *testing.T) {
	in, out := PricingFor("anthropic/claude-opus-4-6")
	assert.Equal(t, 5.0, in)
	assert.Equal(t, 25.0, out)
}

func TestPricingFor_FamilyFallback(t *testing.T) {
	in, out := PricingFor("anthropic/claude-sonnet-4-9-brand-new")
	assert.Equal(t, 3.0, in)
	assert.Equal(t, 15.0, out)
}

func TestPricingFor_Default(t *testing.T) {
	in, out := PricingFor("unknown/totally-new-model")
	assert.Equal(t, 15.0, in)
	assert.Equal(t, 75.0, out)
}

func TestTierTable_EveryModelExistsInCatalog(t *testing.T) {
	for _, agentic := range []bool{false, true} {
		for tier, cfg := range TierTable(agentic) {
			_, ok := Get(cfg.Primary)
			assert.True(t, ok, "tier %s primary %s missing from catalog", tier, cfg.Primary)
			for _, fb := range cfg.Fallback {
				_, ok := Get(fb)
				assert.True(t, ok, "tier %s fallback %s missing from catalog", tier, fb)
			}
		}
	}
}

func TestWiden_StartsAtRequestedTier(t *testing.T) {
	order := Widen(TierMedium)
	require.NotEmpty(t, order)
	assert.Equal(t, TierMedium, order[0])
	assert.Len(t, order, len(AllTiers()))
}

func TestWiden_VisitsEveryTierOnce(t *testing.T) {
	seen := map[Tier]int{}
	for _, t2 := range Widen(TierSimple) {
		seen[t2]++
	}
	for _, tier := range AllTiers() {
		assert.Equal(t, 1, seen[tier])
	}
}

func TestNativeModelID_StripsPrefixWhenNoAlias(t *testing.T) {
	assert.Equal(t, "gpt-4o", NativeModelID("openai/gpt-4o"))
}

func TestNativeModelID_UsesAlias(t *testing.T) {
	assert.Equal(t, "claude-haiku-4-5-20251001", NativeModelID("anthropic/claude-haiku-4-5"))
}

func TestMostExpensiveForTier(t *testing.T) {
	id := MostExpensiveForTier(TierReasoning, false)
	assert.Equal(t, "openai/o1", id)
}
