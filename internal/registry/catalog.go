package registry

import "github.com/llmrouter/router/internal/costcontrol"

// catalog maps model ID ("provider/name") to its Model entry.
//
// Pricing for catalog entries mirrors costcontrol.byExactID's rates;
// anything not listed exactly here falls through to
// costcontrol.GetModelPricing directly (see PricingFor), so the two stay in
// sync with a single source of truth for unlisted or newly-added models.
var catalog = map[string]Model{
	"anthropic/claude-haiku-4-5":  {ID: "anthropic/claude-haiku-4-5", ProviderPrefix: "anthropic", ContextWindow: 200_000, InputPerMTok: 1, OutputPerMTok: 5, Agentic: true, NativeDialect: DialectAnthropic},
	"anthropic/claude-sonnet-4-5": {ID: "anthropic/claude-sonnet-4-5", ProviderPrefix: "anthropic", ContextWindow: 200_000, InputPerMTok: 3, OutputPerMTok: 15, Agentic: true, NativeDialect: DialectAnthropic},
	"anthropic/claude-opus-4-6":   {ID: "anthropic/claude-opus-4-6", ProviderPrefix: "anthropic", ContextWindow: 200_000, InputPerMTok: 5, OutputPerMTok: 25, Agentic: true, NativeDialect: DialectAnthropic},

	"openai/gpt-4o-mini": {ID: "openai/gpt-4o-mini", ProviderPrefix: "openai", ContextWindow: 128_000, InputPerMTok: 0.15, OutputPerMTok: 0.60, Agentic: true, NativeDialect: DialectOpenAI},
	"openai/gpt-4o":       {ID: "openai/gpt-4o", ProviderPrefix: "openai", ContextWindow: 128_000, InputPerMTok: 2.5, OutputPerMTok: 10, Agentic: true, NativeDialect: DialectOpenAI},
	"openai/o1":           {ID: "openai/o1", ProviderPrefix: "openai", ContextWindow: 200_000, InputPerMTok: 15, OutputPerMTok: 60, Agentic: false, NativeDialect: DialectOpenAI},

	"gemini/gemini-1.5-flash": {ID: "gemini/gemini-1.5-flash", ProviderPrefix: "gemini", ContextWindow: 1_000_000, InputPerMTok: 0.075, OutputPerMTok: 0.30, Agentic: true, NativeDialect: DialectGemini},
	"gemini/gemini-1.5-pro":   {ID: "gemini/gemini-1.5-pro", ProviderPrefix: "gemini", ContextWindow: 2_000_000, InputPerMTok: 1.25, OutputPerMTok: 5, Agentic: true, NativeDialect: DialectGemini},

	"bedrock/anthropic.claude-3-5-haiku":  {ID: "bedrock/anthropic.claude-3-5-haiku", ProviderPrefix: "bedrock", ContextWindow: 200_000, InputPerMTok: 1, OutputPerMTok: 5, Agentic: true, NativeDialect: DialectAnthropic},
	"bedrock/anthropic.claude-3-5-sonnet": {ID: "bedrock/anthropic.claude-3-5-sonnet", ProviderPrefix: "bedrock", ContextWindow: 200_000, InputPerMTok: 3, OutputPerMTok: 15, Agentic: true, NativeDialect: DialectAnthropic},
}

// defaultTiers is the non-agentic tier table. Every model named here must
// exist in catalog; keyresolver's Resolvable() reports a missing one as
// unresolvable at use time.
var defaultTiers = map[Tier]TierConfig{
	TierSimple:    {Primary: "anthropic/claude-haiku-4-5", Fallback: []string{"openai/gpt-4o-mini", "gemini/gemini-1.5-flash"}},
	TierMedium:    {Primary: "openai/gpt-4o", Fallback: []string{"anthropic/claude-sonnet-4-5", "gemini/gemini-1.5-pro"}},
	TierComplex:   {Primary: "anthropic/claude-sonnet-4-5", Fallback: []string{"openai/gpt-4o", "bedrock/anthropic.claude-3-5-sonnet"}},
	TierReasoning: {Primary: "anthropic/claude-opus-4-6", Fallback: []string{"openai/o1", "anthropic/claude-sonnet-4-5"}},
}

// agenticTiers is consulted instead of defaultTiers when the selector
// flags a request as agentic (tool-call heavy). Every model referenced
// here has Agentic == true in catalog.
var agenticTiers = map[Tier]TierConfig{
	TierSimple:    {Primary: "anthropic/claude-haiku-4-5", Fallback: []string{"openai/gpt-4o-mini"}},
	TierMedium:    {Primary: "anthropic/claude-sonnet-4-5", Fallback: []string{"openai/gpt-4o", "gemini/gemini-1.5-pro"}},
	TierComplex:   {Primary: "anthropic/claude-sonnet-4-5", Fallback: []string{"bedrock/anthropic.claude-3-5-sonnet", "openai/gpt-4o"}},
	TierReasoning: {Primary: "anthropic/claude-opus-4-6", Fallback: []string{"anthropic/claude-sonnet-4-5"}},
}

// Get returns the catalog entry for id, or false if unknown.
func Get(id string) (Model, bool) {
	m, ok := catalog[id]
	return m, ok
}

// PricingFor returns per-million-token pricing for id: exact catalog match
// first, otherwise costcontrol.GetModelPricing against the native (vendor)
// model id, which itself does longest-family-prefix matching before
// falling back to a conservative default.
func PricingFor(id string) (inputPerMTok, outputPerMTok float64) {
	if m, ok := catalog[id]; ok {
		return m.InputPerMTok, m.OutputPerMTok
	}
	p := costcontrol.GetModelPricing(NativeModelID(id))
	return p.InputPerMTok, p.OutputPerMTok
}

// TierTable returns the tier table to use, switching to the agentic table
// when agentic is true.
func TierTable(agentic bool) map[Tier]TierConfig {
	if agentic {
		return agenticTiers
	}
	return defaultTiers
}

// AllTiers returns every tier, cheapest first.
func AllTiers() []Tier {
	out := make([]Tier, len(orderedTiers))
	copy(out, orderedTiers)
	return out
}

// Widen returns the tier search order starting at t: t itself, then
// alternating outward (one tier up, one tier down) until every tier has
// been visited once. This is how the selector widens when a tier has no
// resolvable model.
func Widen(t Tier) []Tier {
	idx := -1
	for i, ot := range orderedTiers {
		if ot == t {
			idx = i
			break
		}
	}
	if idx == -1 {
		return append([]Tier{}, orderedTiers...)
	}
	out := []Tier{orderedTiers[idx]}
	for up, down := idx+1, idx-1; up < len(orderedTiers) || down >= 0; up, down = up+1, down-1 {
		if up < len(orderedTiers) {
			out = append(out, orderedTiers[up])
		}
		if down >= 0 {
			out = append(out, orderedTiers[down])
		}
	}
	return out
}

// TierContaining returns the first tier (cheapest-first) whose table
// (primary or fallback, either tier table) includes modelID. Used when a
// caller bypasses routing by naming a model explicitly, so cost/tier
// reporting still has something meaningful to show.
func TierContaining(modelID string) (Tier, bool) {
	for _, agentic := range []bool{false, true} {
		for _, tier := range orderedTiers {
			cfg, ok := TierTable(agentic)[tier]
			if !ok {
				continue
			}
			if cfg.Primary == modelID {
				return tier, true
			}
			for _, fb := range cfg.Fallback {
				if fb == modelID {
					return tier, true
				}
			}
		}
	}
	return "", false
}

// MostExpensiveForTier returns the highest-priced model id eligible for
// tier t (primary or fallback), used as RoutingDecision.baselineCost.
func MostExpensiveForTier(t Tier, agentic bool) string {
	cfg, ok := TierTable(agentic)[t]
	if !ok {
		return ""
	}
	candidates := append([]string{cfg.Primary}, cfg.Fallback...)
	best := ""
	var bestCost float64
	for _, id := range candidates {
		in, out := PricingFor(id)
		cost := in + out
		if best == "" || cost > bestCost {
			best, bestCost = id, cost
		}
	}
	return best
}
