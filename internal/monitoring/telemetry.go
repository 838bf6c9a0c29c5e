// Package monitoring - telemetry.go records usage events to a JSONL file.
//
// Events are appended immediately after each completed request, mirroring
// the teacher's original append-on-every-event discipline (one JSON object
// per line, file created empty at startup so tailing tools never hit ENOENT).
package monitoring

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// Tracker handles usage event recording to a JSONL file and, optionally,
// stdout. It also accumulates the same events into an embedded
// MetricsCollector for live in-memory counters.
type Tracker struct {
	config       TelemetryConfig
	requestLogPath string
	requestCount int
	mu           sync.Mutex

	Metrics *MetricsCollector
}

// NewTracker creates a new telemetry tracker. Disabled trackers still
// collect in-memory metrics; they just skip the JSONL file.
func NewTracker(cfg TelemetryConfig) (*Tracker, error) {
	t := &Tracker{config: cfg, Metrics: NewMetricsCollector()}

	if !cfg.Enabled || cfg.LogPath == "" {
		return t, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0750); err != nil {
		return nil, err
	}
	t.requestLogPath = cfg.LogPath
	if _, err := os.Stat(cfg.LogPath); os.IsNotExist(err) {
		if f, err := os.Create(cfg.LogPath); err == nil {
			_ = f.Close()
		}
	}
	return t, nil
}

// appendJSONL appends a single JSON object as a line to the file.
func appendJSONL(path string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = f.Write(data)
	return err
}

// RecordUsage records a completed request: into the live MetricsCollector
// always, and to the JSONL log when telemetry is enabled.
func (t *Tracker) RecordUsage(event UsageRecord) {
	t.Metrics.RecordUsage(event)

	if !t.config.Enabled {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.config.LogToStdout {
		reqID := event.RequestID
		if len(reqID) > 12 {
			reqID = reqID[:12]
		}
		log.Info().
			Str("request_id", reqID).
			Str("model", event.Model).
			Str("tier", event.Tier).
			Float64("cost_usd", event.CostEstimate).
			Int("status", event.StatusCode).
			Msg("telemetry")
	}

	if t.requestLogPath != "" {
		if err := appendJSONL(t.requestLogPath, event); err != nil {
			log.Error().Err(err).Str("path", t.requestLogPath).Msg("telemetry: failed to write usage event")
		} else {
			t.requestCount++
		}
	}
}

// Close is kept for interface compatibility with the teacher's shutdown path.
func (t *Tracker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.requestLogPath != "" && t.requestCount > 0 {
		log.Info().
			Str("path", t.requestLogPath).
			Int("events", t.requestCount).
			Msg("telemetry: session complete")
	}
	return nil
}
