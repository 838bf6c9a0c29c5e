package proxy

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/llmrouter/router/internal/classifier"
	"github.com/llmrouter/router/internal/costcontrol"
	"github.com/llmrouter/router/internal/dedup"
	"github.com/llmrouter/router/internal/gatewaycatalog"
	"github.com/llmrouter/router/internal/keyresolver"
	"github.com/llmrouter/router/internal/monitoring"
	"github.com/llmrouter/router/internal/ratelimit"
	"github.com/llmrouter/router/internal/session"
	"github.com/rs/zerolog/log"
)

// MaxRequestBodySize bounds how much of a chat-completions body we'll
// buffer, matching the teacher's config.MaxRequestBodySize discipline of
// naming such limits rather than leaving them implicit.
const MaxRequestBodySize = 10 << 20 // 10MB; chat bodies are small

// MaxFallbackAttempts bounds FALLBACK_NEXT's retry walk.
const MaxFallbackAttempts = 3

// DefaultRequestTimeout is the per-request deadline against the upstream.
const DefaultRequestTimeout = 180 * time.Second

// Config configures a Server.
type Config struct {
	Resolver        *keyresolver.Resolver
	ClassifierCfg   classifier.Config
	AgenticThreshold int
	Catalog         *gatewaycatalog.Catalog // nil if no gateway configured
	Monitor         *monitoring.Tracker
	Stats           *monitoring.Store
	CostControl     costcontrol.CostControlConfig
	DedupTTL        time.Duration
	SessionTTL      time.Duration
	RateLimitCooldown time.Duration
	HTTPClient      *http.Client
}

// Server is the proxy's HTTP front end.
type Server struct {
	resolver         *keyresolver.Resolver
	classifierCfg    classifier.Config
	agenticThreshold int
	catalog          *gatewaycatalog.Catalog
	monitor          *monitoring.Tracker
	stats            *monitoring.Store
	costs            *costcontrol.Tracker

	dedupStore *dedup.Store
	sessions   *session.Store
	rateLimits *ratelimit.Map

	httpClient *http.Client
	startedAt  time.Time
}

// NewServer builds a Server and its internal stores.
func NewServer(cfg Config) *Server {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultRequestTimeout}
	}
	return &Server{
		resolver:         cfg.Resolver,
		classifierCfg:    cfg.ClassifierCfg,
		agenticThreshold: cfg.AgenticThreshold,
		catalog:          cfg.Catalog,
		monitor:          cfg.Monitor,
		stats:            cfg.Stats,
		costs:            costcontrol.NewTracker(cfg.CostControl),
		dedupStore:       dedup.New(cfg.DedupTTL),
		sessions:         session.New(cfg.SessionTTL, 0),
		rateLimits:       ratelimit.New(cfg.RateLimitCooldown),
		httpClient:       httpClient,
		startedAt:        time.Now(),
	}
}

// Mux builds the HTTP handler tree: /health, /stats, /v1/admin/costs,
// /v1/models, /v1/chat/completions, passthrough for any other /v1/* path,
// and 404 for everything else.
func (s *Server) Mux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/v1/admin/costs", s.costs.HandleDashboard)
	mux.HandleFunc("/v1/models", s.handleModels)
	mux.HandleFunc("/v1/chat/completions", s.handleChatCompletions)
	mux.HandleFunc("/v1/", s.handlePassthrough)
	mux.HandleFunc("/", s.handleNotFound)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	accessible := s.accessibleProviders()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":              "ok",
		"uptime":              time.Since(s.startedAt).String(),
		"configuredProviders": s.resolver.ConfiguredProviders(),
		"gatewayFallback":     s.resolver.HasGateway(),
		"accessibleProviders": accessible,
		"modelCount":          len(s.accessibleModelIDs()),
	})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"object": "list",
		"data":   s.modelCatalogEntries(),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	days := 7
	if d := r.URL.Query().Get("days"); d != "" {
		if parsed, err := parsePositiveInt(d); err == nil {
			days = parsed
		}
	}
	if s.stats == nil {
		writeJSON(w, http.StatusOK, map[string]any{"days": days, "rows": []any{}})
		return
	}
	summary, err := s.stats.Summary(days)
	if err != nil {
		log.Warn().Err(err).Msg("proxy: stats summary failed")
		writeJSON(w, http.StatusOK, map[string]any{"days": days, "rows": []any{}})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not_found", "no such endpoint: "+r.URL.Path)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"type": code, "message": message},
	})
}

func newRequestID() string {
	return "req_" + uuid.NewString()
}

func parsePositiveInt(s string) (int, error) {
	var n int
	_, err := jsonNumber(s, &n)
	if err != nil || n < 0 {
		return 0, err
	}
	return n, nil
}

func jsonNumber(s string, out *int) (int, error) {
	var n int
	err := json.Unmarshal([]byte(s), &n)
	*out = n
	return n, err
}
