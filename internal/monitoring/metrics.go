// Package monitoring - metrics.go provides simple in-memory counters.
//
// DESIGN: Lightweight running totals for the /health and live-stats
// surfaces, cheap enough to update on every request without touching disk.
// Historical day-bucketed stats live in Store (sqlite) instead.
//
// For production, export these to Prometheus or similar.
package monitoring

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// MetricsCollector collects operational metrics in memory.
type MetricsCollector struct {
	startedAt time.Time

	requests  atomic.Int64
	successes atomic.Int64
	fallbacks atomic.Int64

	totalInputTokens  atomic.Int64
	totalOutputTokens atomic.Int64

	totalCostUSD     atomic.Uint64 // float64 bits, via math.Float64bits
	totalBaselineUSD atomic.Uint64

	tierCounts sync.Map // registry.Tier (string) -> *atomic.Int64
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{startedAt: time.Now()}
}

// RecordUsage folds one completed request into the running totals.
func (mc *MetricsCollector) RecordUsage(event UsageRecord) {
	mc.requests.Add(1)
	if event.StatusCode >= 200 && event.StatusCode < 400 {
		mc.successes.Add(1)
	}
	if event.FallbackCount > 0 {
		mc.fallbacks.Add(1)
	}
	mc.totalInputTokens.Add(int64(event.InputTokens))
	mc.totalOutputTokens.Add(int64(event.OutputTokens))
	addFloat64(&mc.totalCostUSD, event.CostEstimate)
	addFloat64(&mc.totalBaselineUSD, event.BaselineCost)

	counterAny, _ := mc.tierCounts.LoadOrStore(event.Tier, new(atomic.Int64))
	counterAny.(*atomic.Int64).Add(1)
}

// StartedAt returns when the metrics collector was created.
func (mc *MetricsCollector) StartedAt() time.Time { return mc.startedAt }

// FullStats returns all metrics in a structured format for a live-stats
// surface (distinct from Store.Summary's historical day buckets).
func (mc *MetricsCollector) FullStats() StatsResponse {
	uptime := time.Since(mc.startedAt)
	requests := mc.requests.Load()
	successes := mc.successes.Load()
	cost := loadFloat64(&mc.totalCostUSD)
	baseline := loadFloat64(&mc.totalBaselineUSD)

	var savingsPct float64
	if baseline > 0 {
		savingsPct = (baseline - cost) / baseline * 100
	}

	tiers := map[string]int64{}
	mc.tierCounts.Range(func(k, v any) bool {
		tiers[k.(string)] = v.(*atomic.Int64).Load()
		return true
	})

	return StatsResponse{
		Uptime:        formatDuration(uptime),
		UptimeSeconds: int64(uptime.Seconds()),
		StartedAt:     mc.startedAt.Format(time.RFC3339),
		Requests: RequestStats{
			Total:      requests,
			Successful: successes,
			Failed:     requests - successes,
			Fallbacks:  mc.fallbacks.Load(),
		},
		Tokens: TokenStatsData{
			InputTokens:  mc.totalInputTokens.Load(),
			OutputTokens: mc.totalOutputTokens.Load(),
		},
		Cost: CostStats{
			TotalUSD:      cost,
			BaselineUSD:   baseline,
			SavingsUSD:    baseline - cost,
			SavingsPctAvg: savingsPct,
		},
		RequestsByTier: tiers,
	}
}

// StatsResponse is the structured response for the live-stats surface.
type StatsResponse struct {
	Uptime         string           `json:"uptime"`
	UptimeSeconds  int64            `json:"uptime_seconds"`
	StartedAt      string           `json:"started_at"`
	Requests       RequestStats     `json:"requests"`
	Tokens         TokenStatsData   `json:"tokens"`
	Cost           CostStats        `json:"cost"`
	RequestsByTier map[string]int64 `json:"requests_by_tier"`
}

// RequestStats holds request count metrics.
type RequestStats struct {
	Total      int64 `json:"total"`
	Successful int64 `json:"successful"`
	Failed     int64 `json:"failed"`
	Fallbacks  int64 `json:"fallbacks"`
}

// TokenStatsData holds token usage metrics.
type TokenStatsData struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// CostStats holds cost and savings metrics.
type CostStats struct {
	TotalUSD      float64 `json:"total_usd"`
	BaselineUSD   float64 `json:"baseline_usd"`
	SavingsUSD    float64 `json:"savings_usd"`
	SavingsPctAvg float64 `json:"savings_pct_avg"`
}

// formatDuration formats a duration as a human-readable string.
func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// Stop is a no-op, kept for interface compatibility with the teacher's
// shutdown path.
func (mc *MetricsCollector) Stop() {}

// addFloat64 atomically adds delta to the float64 bit-packed into bits, via
// a compare-and-swap retry loop (sync/atomic has no native float64 add).
func addFloat64(bits *atomic.Uint64, delta float64) {
	for {
		old := bits.Load()
		newV := math.Float64bits(math.Float64frombits(old) + delta)
		if bits.CompareAndSwap(old, newV) {
			return
		}
	}
}

func loadFloat64(bits *atomic.Uint64) float64 {
	return math.Float64frombits(bits.Load())
}
