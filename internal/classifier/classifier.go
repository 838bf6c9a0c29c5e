package classifier

import (
	"unicode/utf8"

	"github.com/llmrouter/router/internal/registry"
)

// Classify scores userPrompt against the weighted signal table and maps
// the result to a tier. systemPrompt is accepted for structural use only
// (e.g. future signals) and is never scanned for lexical cues - tool
// definition boilerplate in the system prompt must not lift a request's
// tier. totalTokens should be the token count of the user-visible
// conversation (not including the system prompt); callers that don't have
// an exact count may pass CountTokens(userPrompt).
func Classify(userPrompt, systemPrompt string, totalTokens int, cfg Config) Result {
	_ = systemPrompt // structural only, never scored lexically

	var signals []Signal
	var score float64

	add := func(name string, weight float64) {
		signals = append(signals, Signal{Name: name, Weight: weight})
		score += weight
	}

	if anyMatch(reasoningCuePatterns, userPrompt) {
		add("reasoning_cue", cfg.ReasoningCueWeight)
	}

	n := utf8.RuneCountInString(userPrompt)
	switch {
	case n <= cfg.ShortPromptMaxChars:
		add("short_prompt", cfg.ShortPromptWeight)
	case n > cfg.LongPromptMinChars:
		add("long_prompt", cfg.LongPromptWeight)
	}

	structuredOutputSignal := anyMatch(structuredOutputPatterns, userPrompt)
	if structuredOutputSignal {
		add("structured_output", cfg.StructuredOutputWeight)
	}

	if isInterrogative(userPrompt) {
		add("interrogative", cfg.InterrogativeWeight)
	}

	if n <= 3*4 && anyMatch(greetingPatterns, userPrompt) {
		add("greeting", cfg.GreetingWeight)
	}

	if anyMatch(codeBlockPatterns, userPrompt) {
		add("code_block", cfg.CodeBlockWeight)
	}

	if totalTokens > cfg.MediumTokenThreshold {
		add("medium_token_volume", cfg.MediumTokenWeight)
	}

	// Hard pin: token volume above the complex threshold always reaches at
	// least COMPLEX, regardless of lexical score. If the lexical score
	// alone would already reach REASONING, REASONING wins - capability
	// bias beats the pin (see SPEC_FULL.md classifier tie-break rule).
	hardPinned := totalTokens > cfg.ComplexTokenThreshold

	tier := tierForScore(score, cfg)
	if hardPinned && tier != registry.TierReasoning {
		tier = registry.TierComplex
	}

	// A structured-output request (e.g. "respond in JSON") always floors at
	// MEDIUM: even a short prompt that would otherwise score SIMPLE still
	// needs a model capable of reliable schema adherence.
	if structuredOutputSignal {
		tier = higherTier(tier, registry.TierMedium)
	}

	return Result{Tier: tier, Score: score, Signals: signals, HardPinned: hardPinned}
}

// tierRank orders tiers cheapest-to-most-capable for floor comparisons.
var tierRank = map[registry.Tier]int{
	registry.TierSimple:    0,
	registry.TierMedium:    1,
	registry.TierComplex:   2,
	registry.TierReasoning: 3,
}

// higherTier returns whichever of a, b is more capable.
func higherTier(a, b registry.Tier) registry.Tier {
	if tierRank[a] >= tierRank[b] {
		return a
	}
	return b
}

// tierForScore maps a score to a tier using the configured cutoffs. A score
// equal to a cutoff maps to that cutoff's tier.
func tierForScore(score float64, cfg Config) registry.Tier {
	switch {
	case score >= cfg.ReasoningCutoff:
		return registry.TierReasoning
	case score >= cfg.ComplexCutoff:
		return registry.TierComplex
	case score >= cfg.MediumCutoff:
		return registry.TierMedium
	default:
		return registry.TierSimple
	}
}
