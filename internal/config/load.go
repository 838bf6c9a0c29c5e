// Package config - load.go discovers provider API keys and runtime
// settings from (in increasing precedence) a persisted JSON config file,
// a .env file, and the process environment.
//
// Grounded on the teacher's agent_wizard.go/.env-per-scope discovery
// (~/.config/context-gateway/.env) and its ApiKeysConfig JSON persistence,
// generalized from a single provider set to the provider-keyed map this
// router's Key Resolver needs.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/llmrouter/router/internal/keyresolver"
)

// ApiKeysConfig is the persisted provider-key file shape, read from
// ~/.llmrouter/llmrouter/config.json.
type ApiKeysConfig struct {
	Providers map[string]ProviderEntry `json:"providers"`
}

// ProviderEntry is one provider's persisted credentials.
type ProviderEntry struct {
	APIKey  string `json:"apiKey"`
	BaseURL string `json:"baseUrl,omitempty"`
}

// Runtime holds everything main.go needs to boot the proxy.
type Runtime struct {
	Keys              keyresolver.ProviderKeys
	Port              int
	Disabled          bool
	RoutingConfigPath string
	TelemetryLogPath  string
	StatsDBPath       string
	CostControl       CostControlConfig
}

var knownProviders = []string{"anthropic", "openai", "gemini", "bedrock", "gateway"}

// Load resolves provider keys and runtime settings. It never fails on a
// missing .env or config file - those are optional; it errors on a
// config.json that exists but can't be read or parsed, and on a negative
// cost cap, since those are user mistakes worth surfacing.
func Load() (Runtime, error) {
	_ = godotenv.Load() // optional; env vars already set take precedence regardless

	rt := Runtime{
		Keys: keyresolver.ProviderKeys{
			DirectKeys: map[string]string{},
			BaseURLs:   map[string]string{},
		},
		Port:              DefaultPort,
		RoutingConfigPath: os.Getenv("LLMROUTER_ROUTING_CONFIG"),
		TelemetryLogPath:  envOr("LLMROUTER_TELEMETRY_LOG", ""),
		StatsDBPath:       envOr("LLMROUTER_STATS_DB", "llmrouter-stats.db"),
	}

	if cfg, err := loadPersistedConfig(); err != nil {
		return rt, err
	} else if cfg != nil {
		for provider, entry := range cfg.Providers {
			if entry.APIKey != "" {
				rt.Keys.DirectKeys[provider] = entry.APIKey
			}
			if entry.BaseURL != "" {
				rt.Keys.BaseURLs[provider] = entry.BaseURL
			}
		}
	}

	for _, provider := range knownProviders {
		envKey := strings.ToUpper(provider) + "_API_KEY"
		if v := os.Getenv(envKey); v != "" {
			rt.Keys.DirectKeys[provider] = v
		}
		if v := os.Getenv(strings.ToUpper(provider) + "_BASE_URL"); v != "" {
			rt.Keys.BaseURLs[provider] = v
		}
	}

	rt.Keys.GatewayKey = rt.Keys.DirectKeys["gateway"]
	rt.Keys.GatewayURL = rt.Keys.BaseURLs["gateway"]
	delete(rt.Keys.DirectKeys, "gateway")
	delete(rt.Keys.BaseURLs, "gateway")

	rt.Keys.BedrockRegion = envOr("AWS_REGION", envOr("BEDROCK_REGION", ""))

	if v := os.Getenv("LLMROUTER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			rt.Port = p
		}
	}
	rt.Disabled = envBool("LLMROUTER_DISABLED")

	rt.CostControl = CostControlConfig{
		Enabled:    envBool("LLMROUTER_COST_CONTROL_ENABLED"),
		SessionCap: envFloat("LLMROUTER_SESSION_CAP", 0),
		GlobalCap:  envFloat("LLMROUTER_GLOBAL_CAP", 0),
	}
	if err := rt.CostControl.Validate(); err != nil {
		return rt, err
	}

	return rt, nil
}

// loadPersistedConfig reads ~/.llmrouter/llmrouter/config.json if present.
// Returns (nil, nil) when the file doesn't exist.
func loadPersistedConfig() (*ApiKeysConfig, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil
	}
	path := filepath.Join(home, ".llmrouter", "llmrouter", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg ApiKeysConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes"
}

func envFloat(key string, fallback float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
