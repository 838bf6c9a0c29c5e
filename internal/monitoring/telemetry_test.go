package monitoring

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrackerDisabledSkipsFile(t *testing.T) {
	tr, err := NewTracker(TelemetryConfig{Enabled: false})
	require.NoError(t, err)
	assert.Empty(t, tr.requestLogPath)
	assert.NotNil(t, tr.Metrics)
}

func TestNewTrackerEnabledCreatesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "usage.jsonl")

	tr, err := NewTracker(TelemetryConfig{Enabled: true, LogPath: path})
	require.NoError(t, err)
	assert.Equal(t, path, tr.requestLogPath)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestTrackerRecordUsageAppendsJSONL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "usage.jsonl")

	tr, err := NewTracker(TelemetryConfig{Enabled: true, LogPath: path})
	require.NoError(t, err)

	tr.RecordUsage(UsageRecord{RequestID: "req_1", Model: "gpt-4o-mini", Tier: "simple", StatusCode: 200})
	tr.RecordUsage(UsageRecord{RequestID: "req_2", Model: "claude-sonnet", Tier: "medium", StatusCode: 200})

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines++
	}
	assert.Equal(t, 2, lines)

	// Metrics are folded in regardless of JSONL logging.
	assert.Equal(t, int64(2), tr.Metrics.FullStats().Requests.Total)
}

func TestTrackerRecordUsageAlwaysUpdatesMetricsWhenDisabled(t *testing.T) {
	tr, err := NewTracker(TelemetryConfig{Enabled: false})
	require.NoError(t, err)

	tr.RecordUsage(UsageRecord{RequestID: "req_1", Model: "m", Tier: "t", StatusCode: 200})

	assert.Equal(t, int64(1), tr.Metrics.FullStats().Requests.Total)
}

func TestTrackerCloseIsIdempotent(t *testing.T) {
	tr, err := NewTracker(TelemetryConfig{Enabled: false})
	require.NoError(t, err)
	assert.NoError(t, tr.Close())
	assert.NoError(t, tr.Close())
}
