package proxy

import (
	"bytes"
	"io"
	"net/http"

	"github.com/llmrouter/router/internal/dialect"
	"github.com/llmrouter/router/internal/registry"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// handlePassthrough forwards any /v1/* request this Server has no
// dedicated handler for (e.g. /v1/embeddings, /v1/responses): the body's
// "model" field picks the upstream the same way handleChatCompletions
// does, the body is dialect-translated for that upstream, and the
// upstream's response is relayed back verbatim - there's no fixed
// response shape to translate into for an arbitrary endpoint, unlike the
// chat-completions path.
func (s *Server) handlePassthrough(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "could not read request body")
		return
	}

	modelID := gjson.GetBytes(body, "model").String()
	if modelID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "model is required")
		return
	}

	model, ok := registry.Get(modelID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown_model", "no such model: "+modelID)
		return
	}

	access, err := s.resolver.Resolve(modelID)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "routing_unavailable", err.Error())
		return
	}

	target := model.NativeDialect
	if access.ViaGateway {
		target = registry.DialectOpenAI // the gateway speaks the OpenAI-compatible dialect
	}
	translated, err := dialect.TranslateRequest(body, target, registry.NativeModelID(modelID))
	if err != nil {
		log.Warn().Err(err).Str("model", modelID).Str("path", r.URL.Path).Msg("proxy: passthrough translation failed")
		writeError(w, http.StatusBadGateway, "translation_failed", "could not translate request for upstream")
		return
	}
	if access.ViaGateway && s.catalog != nil {
		translated, err = sjson.SetBytes(translated, "model", s.catalog.GatewayID(modelID))
		if err != nil {
			writeError(w, http.StatusBadGateway, "translation_failed", "could not rewrite model for gateway")
			return
		}
	}

	targetURL := access.BaseURL + r.URL.Path
	if r.URL.RawQuery != "" {
		targetURL += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, targetURL, bytes.NewReader(translated))
	if err != nil {
		writeError(w, http.StatusBadGateway, "upstream_request_failed", "could not build upstream request")
		return
	}
	if err := applyAuth(req, access, translated); err != nil {
		log.Warn().Err(err).Str("model", modelID).Msg("proxy: passthrough auth signing failed")
		writeError(w, http.StatusBadGateway, "upstream_request_failed", "could not sign upstream request")
		return
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		writeError(w, http.StatusBadGateway, "upstream_request_failed", "upstream request failed")
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		writeError(w, http.StatusBadGateway, "upstream_request_failed", "could not read upstream response")
		return
	}

	copyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	_, _ = w.Write(respBody)
}
