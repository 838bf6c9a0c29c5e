// Package monitoring - types.go defines shared types.
//
// DESIGN: These types are used by both proxy/ and monitoring/ packages.
// Defined here ONCE to avoid duplication and circular imports.
package monitoring

import "time"

// UsageRecord captures one completed (or failed) proxied request - the
// COMPLETE state of internal/proxy's routing state machine. It's the unit
// recorded to the JSONL telemetry log (Tracker), the in-memory running
// counters (MetricsCollector), and the sqlite stats store (Store).
type UsageRecord struct {
	RequestID     string    `json:"request_id"`
	Timestamp     time.Time `json:"timestamp"`
	Model         string    `json:"model"`
	Tier          string    `json:"tier"`
	InputTokens   int       `json:"input_tokens"`
	OutputTokens  int       `json:"output_tokens"`
	CostEstimate  float64   `json:"cost_estimate_usd"`
	BaselineCost  float64   `json:"baseline_cost_usd"`
	Savings       float64   `json:"savings_ratio"`
	LatencyMs     int64     `json:"latency_ms"`
	StatusCode    int       `json:"status_code"`
	FallbackCount int       `json:"fallback_count"`
}

// TelemetryConfig contains telemetry configuration.
type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	LogPath     string `yaml:"log_path"`
	LogToStdout bool   `yaml:"log_to_stdout"`
}

// LoggerConfig contains logging configuration.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
	Output string `yaml:"output"` // stdout, stderr, or file path
}

// AlertConfig contains alert thresholds.
type AlertConfig struct {
	HighLatencyThreshold time.Duration `yaml:"high_latency_threshold"`
}
