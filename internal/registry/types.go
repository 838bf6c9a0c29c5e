// Package registry holds the static model catalog: provider prefixes,
// per-model pricing, context windows, and the tier tables the selector
// consults.
package registry

// Tier is a routing bucket ordered from cheapest to most capable.
type Tier string

const (
	TierSimple     Tier = "simple"
	TierMedium     Tier = "medium"
	TierComplex    Tier = "complex"
	TierReasoning  Tier = "reasoning"
)

// orderedTiers lists tiers from cheapest to most capable, used for widening.
var orderedTiers = []Tier{TierSimple, TierMedium, TierComplex, TierReasoning}

// Dialect is the wire shape a provider natively speaks.
type Dialect string

const (
	DialectOpenAI    Dialect = "openai"    // chat/completions style
	DialectAnthropic Dialect = "anthropic" // messages style
	DialectGemini    Dialect = "gemini"    // generateContent style
)

// Model is an immutable catalog entry.
type Model struct {
	ID             string  // "<providerPrefix>/<name>", e.g. "anthropic/claude-haiku-4-5"
	ProviderPrefix string  // "openai", "anthropic", "gemini", "bedrock"
	ContextWindow  int     // tokens
	InputPerMTok   float64 // USD per million input tokens
	OutputPerMTok  float64 // USD per million output tokens
	Agentic        bool    // eligible for the agentic tier table
	NativeDialect  Dialect
}

// TierConfig names the primary model for a tier plus an ordered fallback chain.
type TierConfig struct {
	Primary  string
	Fallback []string
}
