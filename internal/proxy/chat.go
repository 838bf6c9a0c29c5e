package proxy

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/llmrouter/router/internal/classifier"
	"github.com/llmrouter/router/internal/costcontrol"
	"github.com/llmrouter/router/internal/dedup"
	"github.com/llmrouter/router/internal/monitoring"
	"github.com/llmrouter/router/internal/registry"
	"github.com/llmrouter/router/internal/selector"
	"github.com/llmrouter/router/internal/session"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// handleChatCompletions is the RECEIVE->COMPLETE state machine described in
// SPEC_FULL.md §6.4, grounded on internal/gateway/handler.go's handleProxy.
func (s *Server) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	reqID := newRequestID()

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "could not read request body")
		return
	}

	sessionID := sessionIDFromRequest(r)
	if check := s.costs.CheckBudget(budgetKeyFor(sessionID)); !check.Allowed {
		writeError(w, http.StatusTooManyRequests, "budget_exceeded", "session or global cost cap reached")
		return
	}

	requestedModel := gjson.GetBytes(body, "model").String()
	isStreaming := gjson.GetBytes(body, "stream").Bool()

	decision, candidates, err := s.route(requestedModel, sessionID, body)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "routing_unavailable", err.Error())
		return
	}

	rc := &requestContext{requestID: reqID, startedAt: started, sessionID: sessionID, decision: decision, isStreaming: isStreaming}

	log.Info().
		Str("request_id", reqID).
		Str("model", decision.Model).
		Str("tier", string(decision.Tier)).
		Bool("streaming", isStreaming).
		Msg("proxy: routed request")

	s.dispatchWithFallback(w, r, rc, candidates, body)
}

// route decides the model and its fallback chain, either from a session
// pin, an explicit model name, or the classifier+selector.
func (s *Server) route(requestedModel, sessionID string, body []byte) (RoutingDecision, []string, error) {
	isAuto := requestedModel == "" || requestedModel == "auto" || strings.HasSuffix(requestedModel, "/auto")

	if isAuto {
		if sessionID != "" {
			if pinned, ok := s.sessions.Get(sessionID); ok {
				return s.decisionFor(pinned.Model, pinned.Tier, true), s.fallbackFor(pinned.Model, pinned.Tier), nil
			}
		}

		userPrompt, systemPrompt := extractPrompt(body)
		tokens := classifier.CountTokens(userPrompt)
		result := classifier.Classify(userPrompt, systemPrompt, tokens, s.classifierCfg)
		agentic := detectAgentic(body, s.agenticThreshold)

		sel, err := selector.Select(result.Tier, agentic, s.resolver.Resolvable)
		if err != nil {
			return RoutingDecision{}, nil, err
		}
		if sessionID != "" {
			s.sessions.Set(sessionID, sel.Model, sel.Tier)
		}
		decision := s.decisionFor(sel.Model, sel.Tier, false)
		decision.Notes = sel.Notes
		decision.Reasoning = reasoningFor(result, sel)
		return decision, sel.Fallback, nil
	}

	// Explicit model: honor it if it resolves, building a fallback chain
	// from the tier it happens to belong to (if any).
	tier, _ := registry.TierContaining(requestedModel)
	return s.decisionFor(requestedModel, tier, false), s.fallbackFor(requestedModel, tier), nil
}

func (s *Server) decisionFor(modelID string, tier registry.Tier, fromPin bool) RoutingDecision {
	in, out := registry.PricingFor(modelID)
	// Cost estimate is a placeholder until actual usage is known; it's
	// refined with real token counts in recordCompletion.
	estimate := (in + out) / 2
	baselineID := registry.MostExpensiveForTier(tier, false)
	baselineIn, baselineOut := registry.PricingFor(baselineID)
	baseline := (baselineIn + baselineOut) / 2
	var savings float64
	if baseline > 0 {
		savings = (baseline - estimate) / baseline
	}
	return RoutingDecision{Tier: tier, Model: modelID, CostEstimate: estimate, BaselineCost: baseline, Savings: savings, FromPin: fromPin}
}

func (s *Server) fallbackFor(modelID string, tier registry.Tier) []string {
	if tier == "" {
		return nil
	}
	cfg, ok := registry.TierTable(false)[tier]
	if !ok {
		return nil
	}
	var out []string
	for _, id := range append([]string{cfg.Primary}, cfg.Fallback...) {
		if id != modelID {
			out = append(out, id)
		}
	}
	return out
}

func reasoningFor(result classifier.Result, sel selector.Decision) string {
	sb := strings.Builder{}
	sb.WriteString("classified as ")
	sb.WriteString(string(result.Tier))
	if result.HardPinned {
		sb.WriteString(" (token-volume pin)")
	}
	sb.WriteString(", routed to ")
	sb.WriteString(sel.Model)
	if sel.Widened {
		sb.WriteString(" after widening")
	}
	return sb.String()
}

// extractPrompt pulls the last user message and the concatenation of every
// system message from an OpenAI-shaped request body, for classification.
// The system prompt is returned only for structural bookkeeping - Classify
// never scores it lexically.
func extractPrompt(body []byte) (userPrompt, systemPrompt string) {
	var systemParts []string
	messages := gjson.GetBytes(body, "messages")
	messages.ForEach(func(_, msg gjson.Result) bool {
		role := msg.Get("role").String()
		content := msg.Get("content").String()
		switch role {
		case "system", "developer":
			systemParts = append(systemParts, content)
		case "user":
			userPrompt = content
		}
		return true
	})
	return userPrompt, strings.Join(systemParts, "\n\n")
}

// detectAgentic implements the Open Question 2 decision from DESIGN.md:
// tool presence alone isn't enough, we also require more than threshold
// observed assistant tool_calls in the visible history. There is no
// header or body-field override.
func detectAgentic(body []byte, threshold int) bool {
	tools := gjson.GetBytes(body, "tools")
	if !tools.IsArray() || len(tools.Array()) == 0 {
		return false
	}

	count := 0
	gjson.GetBytes(body, "messages").ForEach(func(_, msg gjson.Result) bool {
		if msg.Get("role").String() == "assistant" && msg.Get("tool_calls").IsArray() {
			count += len(msg.Get("tool_calls").Array())
		}
		return true
	})
	return count > threshold
}

func sessionIDFromRequest(r *http.Request) string {
	return session.GetSessionID(r.Header, r.Cookies())
}

// dedupKeyFor hashes the translated outbound body. Translation rewrites
// fields surgically and keeps the rest byte-for-byte, so requests that
// differ only in whitespace or field order hash differently and do not
// coalesce.
func dedupKeyFor(translatedBody []byte) string {
	return dedup.Key(translatedBody)
}

// recordCompletion writes the final usage event to both the JSONL
// telemetry log and the stats store, swallowing any logging failure -
// telemetry must never fail a request that otherwise succeeded.
func (s *Server) recordCompletion(rc *requestContext, statusCode int, usageIn, usageOut int) {
	cost := costFor(rc.decision.Model, usageIn, usageOut)
	baseline := costFor(registry.MostExpensiveForTier(rc.decision.Tier, false), usageIn, usageOut)
	var savings float64
	if baseline > 0 {
		savings = (baseline - cost) / baseline
	}
	event := monitoring.UsageRecord{
		RequestID:     rc.requestID,
		Timestamp:     time.Now(),
		Model:         rc.decision.Model,
		Tier:          string(rc.decision.Tier),
		InputTokens:   usageIn,
		OutputTokens:  usageOut,
		CostEstimate:  cost,
		BaselineCost:  baseline,
		Savings:       savings,
		LatencyMs:     time.Since(rc.startedAt).Milliseconds(),
		StatusCode:    statusCode,
		FallbackCount: rc.fallbackN,
	}
	if s.monitor != nil {
		s.monitor.RecordUsage(event)
	}
	if s.stats != nil {
		if err := s.stats.Insert(event); err != nil {
			log.Warn().Err(err).Msg("proxy: stats insert failed")
		}
	}
	s.costs.RecordUsage(budgetKeyFor(rc.sessionID), rc.decision.Model, usageIn, usageOut, 0, 0)
}

// budgetKeyFor maps an empty (cookie-less, header-less) session id to a
// shared "anonymous" bucket so unpinned requests still accrue toward the
// global cap.
func budgetKeyFor(sessionID string) string {
	if sessionID == "" {
		return "anonymous"
	}
	return sessionID
}

func costFor(modelID string, inputTokens, outputTokens int) float64 {
	in, out := registry.PricingFor(modelID)
	return costcontrol.CalculateCost(inputTokens, outputTokens, costcontrol.ModelPricing{InputPerMTok: in, OutputPerMTok: out})
}
