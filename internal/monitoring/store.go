// Package monitoring - store.go persists usage records to sqlite for
// historical, day-bucketed /stats queries.
//
// Grounded on the teacher's costcontrol.Tracker (mutex-guarded accumulator)
// for the write path, and ttzrs-urp-cli's opencode/storage.storage.go for
// the sql.Open/driver/schema-migration shape - here pointed at
// modernc.org/sqlite's pure-Go driver instead of a cgo sqlite3 binding, so
// the binary stays cross-compile friendly.
package monitoring

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a sqlite-backed append log of UsageRecords, queried by the
// /stats?days=N endpoint for day-bucketed aggregates.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if necessary) a sqlite database at path and
// ensures its schema exists. path may be ":memory:" for ephemeral/test use.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("monitoring: open store: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite: one writer at a time, avoid SQLITE_BUSY

	if _, err := db.Exec(schemaDDL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("monitoring: migrate store: %w", err)
	}
	return &Store{db: db}, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS usage_records (
	request_id     TEXT PRIMARY KEY,
	timestamp      TEXT NOT NULL,
	model          TEXT NOT NULL,
	tier           TEXT NOT NULL,
	input_tokens   INTEGER NOT NULL,
	output_tokens  INTEGER NOT NULL,
	cost_usd       REAL NOT NULL,
	baseline_usd   REAL NOT NULL,
	savings_ratio  REAL NOT NULL,
	latency_ms     INTEGER NOT NULL,
	status_code    INTEGER NOT NULL,
	fallback_count INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_usage_records_timestamp ON usage_records(timestamp);
`

// Insert records one completed request.
func (s *Store) Insert(event UsageRecord) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO usage_records
			(request_id, timestamp, model, tier, input_tokens, output_tokens,
			 cost_usd, baseline_usd, savings_ratio, latency_ms, status_code, fallback_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.RequestID, event.Timestamp.UTC().Format(time.RFC3339Nano), event.Model, event.Tier,
		event.InputTokens, event.OutputTokens, event.CostEstimate, event.BaselineCost,
		event.Savings, event.LatencyMs, event.StatusCode, event.FallbackCount,
	)
	return err
}

// Summary aggregates usage over the last `days` days, broken down by model.
type Summary struct {
	Days        int            `json:"days"`
	TotalCount  int64          `json:"total_count"`
	TotalCostUSD float64       `json:"total_cost_usd"`
	TotalSavedUSD float64      `json:"total_saved_usd"`
	ByModel     []ModelSummary `json:"by_model"`
}

// ModelSummary is one model's row within a Summary.
type ModelSummary struct {
	Model        string  `json:"model"`
	Tier         string  `json:"tier"`
	Count        int64   `json:"count"`
	InputTokens  int64   `json:"input_tokens"`
	OutputTokens int64   `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	BaselineUSD  float64 `json:"baseline_usd"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// Summary returns the aggregated usage for the last `days` days.
func (s *Store) Summary(days int) (Summary, error) {
	if days <= 0 {
		days = 7
	}
	since := time.Now().Add(-time.Duration(days) * 24 * time.Hour).UTC().Format(time.RFC3339Nano)

	rows, err := s.db.Query(
		`SELECT model, tier, COUNT(*), SUM(input_tokens), SUM(output_tokens),
		        SUM(cost_usd), SUM(baseline_usd), AVG(latency_ms)
		 FROM usage_records
		 WHERE timestamp >= ?
		 GROUP BY model, tier
		 ORDER BY SUM(cost_usd) DESC`,
		since,
	)
	if err != nil {
		return Summary{}, fmt.Errorf("monitoring: summary query: %w", err)
	}
	defer rows.Close()

	summary := Summary{Days: days}
	for rows.Next() {
		var m ModelSummary
		if err := rows.Scan(&m.Model, &m.Tier, &m.Count, &m.InputTokens, &m.OutputTokens,
			&m.CostUSD, &m.BaselineUSD, &m.AvgLatencyMs); err != nil {
			return Summary{}, fmt.Errorf("monitoring: summary scan: %w", err)
		}
		summary.ByModel = append(summary.ByModel, m)
		summary.TotalCount += m.Count
		summary.TotalCostUSD += m.CostUSD
		summary.TotalSavedUSD += m.BaselineUSD - m.CostUSD
	}
	return summary, rows.Err()
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
