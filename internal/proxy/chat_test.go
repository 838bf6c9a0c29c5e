package proxy

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/llmrouter/router/internal/classifier"
	"github.com/llmrouter/router/internal/costcontrol"
	"github.com/llmrouter/router/internal/keyresolver"
	"github.com/llmrouter/router/internal/monitoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func newFullTestServer(t *testing.T, upstream *mockUpstream) *Server {
	t.Helper()
	resolver := keyresolver.New(keyresolver.ProviderKeys{
		DirectKeys: map[string]string{"openai": "sk-test", "anthropic": "sk-ant"},
		BaseURLs:   map[string]string{"openai": upstream.URL, "anthropic": upstream.URL},
	})
	tracker, err := monitoring.NewTracker(monitoring.TelemetryConfig{})
	require.NoError(t, err)
	store, err := monitoring.OpenStore(t.TempDir() + "/stats.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return NewServer(Config{
		Resolver:          resolver,
		ClassifierCfg:     classifier.DefaultConfig(),
		AgenticThreshold:  1,
		Monitor:           tracker,
		Stats:             store,
		DedupTTL:          5 * time.Second,
		SessionTTL:        time.Hour,
		RateLimitCooldown: time.Minute,
	})
}

func newFullTestServerWithCostControl(t *testing.T, upstream *mockUpstream, cc costcontrol.CostControlConfig) *Server {
	t.Helper()
	resolver := keyresolver.New(keyresolver.ProviderKeys{
		DirectKeys: map[string]string{"openai": "sk-test", "anthropic": "sk-ant"},
		BaseURLs:   map[string]string{"openai": upstream.URL, "anthropic": upstream.URL},
	})
	tracker, err := monitoring.NewTracker(monitoring.TelemetryConfig{})
	require.NoError(t, err)
	store, err := monitoring.OpenStore(t.TempDir() + "/stats.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return NewServer(Config{
		Resolver:          resolver,
		ClassifierCfg:     classifier.DefaultConfig(),
		AgenticThreshold:  1,
		Monitor:           tracker,
		Stats:             store,
		CostControl:       cc,
		DedupTTL:          5 * time.Second,
		SessionTTL:        time.Hour,
		RateLimitCooldown: time.Minute,
	})
}

func postChatRequest(body []byte, session string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", bytes.NewReader(body))
	if session != "" {
		req.Header.Set("X-Session-Id", session)
	}
	return req
}

func TestHandleChatCompletionsExplicitModel(t *testing.T) {
	upstream := newMockUpstream(t)
	upstream.SetHandler(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(openAINonStreamBody("explicit model response"))
	})
	srv := newFullTestServer(t, upstream)

	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, postChatRequest(chatRequestBody("openai/gpt-4o-mini", false), ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "explicit model response")
}

func TestHandleChatCompletionsAutoRoutingPicksATier(t *testing.T) {
	upstream := newMockUpstream(t)
	var gotModel string
	upstream.SetHandler(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotModel = gjson.GetBytes(body, "model").String()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(openAINonStreamBody("auto-routed"))
	})
	srv := newFullTestServer(t, upstream)

	rec := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec, postChatRequest(chatRequestBody("auto", false), ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, gotModel)
}

func TestHandleChatCompletionsSessionPinReusesModel(t *testing.T) {
	upstream := newMockUpstream(t)
	var models []string
	upstream.SetHandler(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		models = append(models, gjson.GetBytes(body, "model").String())
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(openAINonStreamBody("pinned"))
	})
	srv := newFullTestServer(t, upstream)

	// Different prompts per turn: identical bodies would be replayed from
	// the dedup store without a second upstream call, and the second prompt
	// would classify to a different tier if the pin were not honored.
	for _, prompt := range []string{"hello there", "Prove this step by step and derive the result."} {
		body, err := json.Marshal(map[string]any{
			"model":    "auto",
			"messages": []map[string]any{{"role": "user", "content": prompt}},
		})
		require.NoError(t, err)
		rec := httptest.NewRecorder()
		srv.Mux().ServeHTTP(rec, postChatRequest(body, "sess-abc"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	require.Len(t, models, 2)
	assert.Equal(t, models[0], models[1])
}

func TestHandleChatCompletionsBudgetExceededReturns429(t *testing.T) {
	upstream := newMockUpstream(t)
	upstream.SetHandler(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(openAINonStreamBody("should not be reached"))
	})
	srv := newFullTestServerWithCostControl(t, upstream, costcontrol.CostControlConfig{Enabled: true, SessionCap: 0.000001})

	rec1 := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec1, postChatRequest(chatRequestBody("openai/gpt-4o-mini", false), "sess-budget"))
	require.Equal(t, http.StatusOK, rec1.Code)

	rec2 := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rec2, postChatRequest(chatRequestBody("openai/gpt-4o-mini", false), "sess-budget"))
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
	assert.Contains(t, rec2.Body.String(), "budget_exceeded")
}

func TestHandleHealth(t *testing.T) {
	upstream := newMockUpstream(t)
	srv := newFullTestServer(t, upstream)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	srv.Mux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "ok", out["status"])
	assert.ElementsMatch(t, []any{"openai", "anthropic"}, out["configuredProviders"])
	assert.Equal(t, false, out["gatewayFallback"])
	assert.ElementsMatch(t, []any{"openai", "anthropic"}, out["accessibleProviders"])
	assert.Greater(t, out["modelCount"], float64(0))
}

func TestHandleModelsListsCatalog(t *testing.T) {
	upstream := newMockUpstream(t)
	srv := newFullTestServer(t, upstream)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	srv.Mux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "anthropic/claude-haiku-4-5")

	var out struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	var sawAuto, sawGemini bool
	for _, m := range out.Data {
		if m["id"] == "auto" {
			sawAuto = true
			assert.Equal(t, "llmrouter", m["owned_by"])
		}
		if m["id"] == "gemini/gemini-1.5-flash" {
			sawGemini = true
		}
		assert.NotZero(t, m["created"])
	}
	assert.True(t, sawAuto, "auto must always be listed even with no gemini key configured")
	assert.False(t, sawGemini, "models without a resolvable key must be filtered out")
}

func TestHandleStatsEmptyByDefault(t *testing.T) {
	upstream := newMockUpstream(t)
	srv := newFullTestServer(t, upstream)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/stats?days=7", nil)
	srv.Mux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleNotFound(t *testing.T) {
	upstream := newMockUpstream(t)
	srv := newFullTestServer(t, upstream)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	srv.Mux().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
