// Package dialect translates chat request/response bodies between the
// three wire shapes the proxy supports: OpenAI-compatible chat/completions
// (dialect A), Anthropic "messages" (dialect B), and Gemini
// "generateContent" (dialect C).
//
// Grounded on internal/adapters/types.go (Provider enum,
// ParsedRequestAdapter shape) and internal/adapters/ollama.go
// (composition-by-embedding, per-provider usage-field extraction), plus
// internal/gateway/handler.go's sseUsageParser/nextSSEEvent for SSE frame
// handling. Request/response bodies are rewritten surgically with
// gjson/sjson rather than full struct round-trips, so unrelated fields
// survive translation untouched.
package dialect

import "github.com/llmrouter/router/internal/registry"

// Dialect re-exports registry.Dialect for callers that only import this
// package.
type Dialect = registry.Dialect

const (
	OpenAI    = registry.DialectOpenAI
	Anthropic = registry.DialectAnthropic
	Gemini    = registry.DialectGemini
)

// Usage is the token accounting extracted from a response, regardless of
// source dialect.
type Usage struct {
	InputTokens         int
	OutputTokens        int
	CacheCreationTokens int
	CacheReadTokens     int
}
