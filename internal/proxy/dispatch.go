package proxy

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/llmrouter/router/internal/classifier"
	"github.com/llmrouter/router/internal/dialect"
	"github.com/llmrouter/router/internal/keyresolver"
	"github.com/llmrouter/router/internal/registry"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// dispatchWithFallback walks [primary model, ...candidates] (reordered by
// rate-limit state first), translating and forwarding the request to each
// in turn until one succeeds or every candidate (up to MaxFallbackAttempts)
// has failed retryably. Grounded on internal/gateway/phantom_loop.go's
// bounded retry loop and internal/gateway/handler.go's forwardPassthrough.
func (s *Server) dispatchWithFallback(w http.ResponseWriter, r *http.Request, rc *requestContext, fallbackChain []string, originalBody []byte) {
	chain := append([]string{rc.decision.Model}, fallbackChain...)
	chain = s.rateLimits.Prioritize(chain)

	requiredTokens := requiredContextTokens(originalBody)

	var lastErr error
	attempt := 0
	for _, modelID := range chain {
		if attempt >= MaxFallbackAttempts {
			break
		}
		if model, ok := registry.Get(modelID); ok && model.ContextWindow > 0 && model.ContextWindow < requiredTokens {
			log.Info().Str("model", modelID).Int("context_window", model.ContextWindow).Int("required", requiredTokens).
				Msg("proxy: skipping candidate, context window too small")
			continue
		}

		rc.decision.Model = modelID
		rc.fallbackN = attempt
		attempt++

		ok, retryable := s.attemptDispatch(w, r, rc, modelID, originalBody)
		if ok {
			return
		}
		if !retryable {
			return // attemptDispatch already wrote the error response
		}
		lastErr = context.DeadlineExceeded // sentinel; actual message already logged
	}

	if lastErr != nil {
		writeError(w, http.StatusServiceUnavailable, "fallback_exhausted", "every candidate model failed or was rate-limited")
	} else {
		writeError(w, http.StatusServiceUnavailable, "fallback_exhausted", "no candidate model has a large enough context window")
	}
}

// requiredContextTokens estimates how many tokens of context the request
// needs: the visible conversation plus whatever headroom the caller asked
// for via max_tokens. Candidates whose context window can't fit this are
// skipped during fallback rather than dispatched and left to fail upstream.
func requiredContextTokens(body []byte) int {
	var total int
	gjson.GetBytes(body, "messages").ForEach(func(_, msg gjson.Result) bool {
		total += classifier.CountTokens(msg.Get("content").String())
		return true
	})
	if maxTokens := gjson.GetBytes(body, "max_tokens").Int(); maxTokens > 0 {
		total += int(maxTokens)
	}
	return total
}

// attemptDispatch tries exactly one model. Returns (true, _) on success,
// after which the response has already been written. Returns (false,
// retryable) on failure: if retryable, the caller should try the next
// candidate; if not, attemptDispatch has already written the error
// response to w.
func (s *Server) attemptDispatch(w http.ResponseWriter, r *http.Request, rc *requestContext, modelID string, originalBody []byte) (success bool, retryable bool) {
	model, ok := registry.Get(modelID)
	if !ok {
		return false, true
	}

	access, err := s.resolver.Resolve(modelID)
	if err != nil {
		return false, true
	}

	// The gateway speaks the OpenAI-compatible dialect for every model it
	// fronts, so only a direct call uses the provider's native dialect.
	target := model.NativeDialect
	if access.ViaGateway {
		target = registry.DialectOpenAI
	}

	translated, err := dialect.TranslateRequest(originalBody, target, registry.NativeModelID(modelID))
	if err != nil {
		log.Warn().Err(err).Str("model", modelID).Msg("proxy: request translation failed")
		return false, true
	}

	if access.ViaGateway && s.catalog != nil {
		translated, err = sjson.SetBytes(translated, "model", s.catalog.GatewayID(modelID))
		if err != nil {
			log.Warn().Err(err).Str("model", modelID).Msg("proxy: gateway model rewrite failed")
			return false, true
		}
	}

	dedupKey := dedupKeyFor(translated)
	if cached, ok := s.dedupStore.Lookup(dedupKey); ok {
		replay(w, cached)
		return true, false
	}
	owner, wait := s.dedupStore.Claim(dedupKey)
	if !owner {
		<-wait
		if cached, ok := s.dedupStore.Lookup(dedupKey); ok {
			replay(w, cached)
			return true, false
		}
		// Original owner abandoned without completing; fall through and
		// dispatch ourselves rather than hang.
		owner, _ = s.dedupStore.Claim(dedupKey)
	}

	targetURL := buildUpstreamURL(access, model, rc.isStreaming)
	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, targetURL, bytes.NewReader(translated))
	if err != nil {
		if owner {
			s.dedupStore.Abandon(dedupKey)
		}
		return false, true
	}
	if err := applyAuth(req, access, translated); err != nil {
		if owner {
			s.dedupStore.Abandon(dedupKey)
		}
		log.Warn().Err(err).Str("model", modelID).Msg("proxy: auth signing failed")
		return false, true
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if owner {
			s.dedupStore.Abandon(dedupKey)
		}
		return false, true
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		shouldFallback, reason := ShouldFallback(resp.StatusCode, respBody)
		if owner {
			if shouldFallback {
				s.dedupStore.Abandon(dedupKey)
			} else {
				s.dedupStore.Complete(dedupKey, dedupResponseFrom(resp.StatusCode, resp.Header, respBody))
			}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			s.rateLimits.Mark(modelID)
		}
		if shouldFallback {
			log.Info().Str("model", modelID).Int("status", resp.StatusCode).Str("reason", reason).Msg("proxy: falling back")
			return false, true
		}
		copyHeaders(w.Header(), resp.Header)
		w.WriteHeader(resp.StatusCode)
		_, _ = w.Write(respBody)
		s.recordCompletion(rc, resp.StatusCode, 0, 0)
		return false, false
	}

	if rc.isStreaming {
		usage, captured := s.streamResponse(w, resp, target, rc)
		if owner {
			s.dedupStore.Complete(dedupKey, captured)
		}
		s.recordCompletion(rc, http.StatusOK, usage.InputTokens, usage.OutputTokens)
		return true, false
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		if owner {
			s.dedupStore.Abandon(dedupKey)
		}
		return false, true
	}
	out, usage, err := dialect.TranslateNonStreamResponse(respBody, target, rc.requestID, modelID)
	if err != nil {
		if owner {
			s.dedupStore.Abandon(dedupKey)
		}
		log.Warn().Err(err).Str("model", modelID).Msg("proxy: response translation failed")
		return false, true
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)

	if owner {
		s.dedupStore.Complete(dedupKey, dedupResponseFrom(http.StatusOK, w.Header(), out))
	}
	s.recordCompletion(rc, http.StatusOK, usage.InputTokens, usage.OutputTokens)
	return true, false
}

// buildUpstreamURL picks the provider-native path for model, honoring
// access.ViaGateway (always the OpenAI-compatible chat/completions path,
// since the gateway itself handles dialect translation for anything it
// fronts).
func buildUpstreamURL(access keyresolver.Access, model registry.Model, streaming bool) string {
	if access.ViaGateway {
		return access.BaseURL + "/v1/chat/completions"
	}
	native := registry.NativeModelID(model.ID)
	switch model.ProviderPrefix {
	case "anthropic":
		return access.BaseURL + "/v1/messages"
	case "gemini":
		method := "generateContent"
		if streaming {
			method = "streamGenerateContent"
		}
		url := access.BaseURL + "/v1beta/models/" + native + ":" + method
		if streaming {
			url += "?alt=sse"
		}
		return url
	case "bedrock":
		if streaming {
			return access.BaseURL + "/model/" + native + "/invoke-with-response-stream"
		}
		return access.BaseURL + "/model/" + native + "/invoke"
	default:
		return access.BaseURL + "/v1/chat/completions"
	}
}

func applyAuth(req *http.Request, access keyresolver.Access, body []byte) error {
	req.Header.Set("Content-Type", "application/json")

	if access.Sign != nil {
		headers, err := access.Sign(req.Method, req.URL.String(), body)
		if err != nil {
			return err
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		return nil
	}

	switch {
	case access.ViaGateway:
		req.Header.Set("Authorization", "Bearer "+access.APIKey)
	case access.Provider == "anthropic":
		req.Header.Set("x-api-key", access.APIKey)
		req.Header.Set("anthropic-version", "2023-06-01")
	case access.Provider == "gemini":
		req.Header.Set("x-goog-api-key", access.APIKey)
	default:
		req.Header.Set("Authorization", "Bearer "+access.APIKey)
	}
	return nil
}

func copyHeaders(dst http.Header, src http.Header) {
	for k, v := range src {
		for _, vv := range v {
			dst.Add(k, vv)
		}
	}
}
