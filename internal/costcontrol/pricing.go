package costcontrol

import "strings"

// ModelPricing is USD cost per million tokens, input and output priced
// separately since output typically costs several times more.
type ModelPricing struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// byExactID is pricing for specific dated model releases. internal/registry
// consults this only as a fallback for an id outside its own curated
// catalog (see registry.PricingFor). Tracker.RecordUsage prices every
// recorded request through GetModelPricing with the id it is given,
// including provider-prefixed registry ids, which match no row here.
var byExactID = map[string]ModelPricing{
	"claude-opus-4-6":            {InputPerMTok: 5, OutputPerMTok: 25},
	"claude-opus-4-0-20250514":   {InputPerMTok: 15, OutputPerMTok: 75},
	"claude-sonnet-4-5-20250929": {InputPerMTok: 3, OutputPerMTok: 15},
	"claude-sonnet-4-0-20250514": {InputPerMTok: 3, OutputPerMTok: 15},
	"claude-haiku-4-5-20251001":  {InputPerMTok: 1, OutputPerMTok: 5},

	"claude-sonnet-4-5": {InputPerMTok: 3, OutputPerMTok: 15},
	"claude-sonnet-4-0": {InputPerMTok: 3, OutputPerMTok: 15},
	"claude-haiku-4-5":  {InputPerMTok: 1, OutputPerMTok: 5},

	"claude-3-5-sonnet-20241022": {InputPerMTok: 3, OutputPerMTok: 15},
	"claude-3-5-haiku-20241022":  {InputPerMTok: 1, OutputPerMTok: 5},
	"claude-3-haiku-20240307":    {InputPerMTok: 0.25, OutputPerMTok: 1.25},

	"gpt-4o":                 {InputPerMTok: 2.5, OutputPerMTok: 10},
	"gpt-4o-2024-11-20":      {InputPerMTok: 2.5, OutputPerMTok: 10},
	"gpt-4o-mini":            {InputPerMTok: 0.15, OutputPerMTok: 0.60},
	"gpt-4o-mini-2024-07-18": {InputPerMTok: 0.15, OutputPerMTok: 0.60},
}

// unknownModelPricing prices anything byFamilyPrefix also misses.
// Deliberately the most expensive tier in the table: an unrecognized model
// should never look artificially cheap in the cost dashboard.
var unknownModelPricing = ModelPricing{InputPerMTok: 15, OutputPerMTok: 75}

// byFamilyPrefix prices a model by the longest matching name prefix, for
// ids GetModelPricing doesn't have an exact row for (new dates, aliases).
// Map order plays no part: GetModelPricing keeps the longest matching
// prefix, so a version-specific prefix wins over its broader family.
var byFamilyPrefix = map[string]ModelPricing{
	"claude-opus-4-6":   {InputPerMTok: 5, OutputPerMTok: 25},
	"claude-opus-4-0":   {InputPerMTok: 15, OutputPerMTok: 75},
	"claude-sonnet-4-5": {InputPerMTok: 3, OutputPerMTok: 15},
	"claude-sonnet-4-0": {InputPerMTok: 3, OutputPerMTok: 15},
	"claude-haiku-4-5":  {InputPerMTok: 1, OutputPerMTok: 5},
	"claude-3-5-sonnet": {InputPerMTok: 3, OutputPerMTok: 15},
	"claude-3-5-haiku":  {InputPerMTok: 1, OutputPerMTok: 5},
	"claude-3-haiku":    {InputPerMTok: 0.25, OutputPerMTok: 1.25},

	"claude-opus":   {InputPerMTok: 15, OutputPerMTok: 75},
	"claude-sonnet": {InputPerMTok: 3, OutputPerMTok: 15},
	"claude-haiku":  {InputPerMTok: 1, OutputPerMTok: 5},
	"gpt-4o-mini":   {InputPerMTok: 0.15, OutputPerMTok: 0.60},
	"gpt-4o":        {InputPerMTok: 2.5, OutputPerMTok: 10},
	"gpt-4":         {InputPerMTok: 10, OutputPerMTok: 30},
}

// GetModelPricing looks up model: exact id first, then the longest matching
// family prefix, then unknownModelPricing.
func GetModelPricing(model string) ModelPricing {
	if p, ok := byExactID[model]; ok {
		return p
	}

	var bestPrefix string
	var bestPricing ModelPricing
	for prefix, p := range byFamilyPrefix {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(bestPrefix) {
			bestPrefix, bestPricing = prefix, p
		}
	}
	if bestPrefix != "" {
		return bestPricing
	}
	return unknownModelPricing
}

// CalculateCost prices a plain (no prompt-cache) completion.
func CalculateCost(inputTokens, outputTokens int, pricing ModelPricing) float64 {
	return float64(inputTokens)/1_000_000*pricing.InputPerMTok + float64(outputTokens)/1_000_000*pricing.OutputPerMTok
}

// CalculateCostWithCache prices a completion that used Anthropic prompt
// caching: inputTokens is already the non-cached count, cache writes bill
// at 1.25x the input rate and cache reads at 0.1x.
func CalculateCostWithCache(inputTokens, outputTokens, cacheCreationTokens, cacheReadTokens int, pricing ModelPricing) float64 {
	base := CalculateCost(inputTokens, outputTokens, pricing)
	writeCost := float64(cacheCreationTokens) / 1_000_000 * pricing.InputPerMTok * 1.25
	readCost := float64(cacheReadTokens) / 1_000_000 * pricing.InputPerMTok * 0.1
	return base + writeCost + readCost
}
