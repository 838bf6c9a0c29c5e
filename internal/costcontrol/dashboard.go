package costcontrol

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// HandleDashboard renders a read-only HTML view of every tracked session's
// spend, mounted at /v1/admin/costs.
func (t *Tracker) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	sessions := t.AllSessions()
	cfg := t.Config()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].LastUpdated.After(sessions[j].LastUpdated)
	})

	var totalCost float64
	var totalRequests int
	for _, s := range sessions {
		totalCost += s.Cost
		totalRequests += s.RequestCount
	}

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta http-equiv="refresh" content="5">
<title>llmrouter · costs</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body { font-family: 'SF Mono', 'Fira Code', 'Cascadia Code', monospace; background: #0b0f14; color: #c9d1d9; padding: 24px; }
  h1 { color: #6ea8fe; font-size: 16px; margin-bottom: 16px; font-weight: 600; }
  .summary { display: flex; gap: 20px; margin-bottom: 20px; padding: 14px 16px; background: #11161d; border: 1px solid #232b35; border-radius: 6px; }
  .stat-label { font-size: 10px; color: #78828c; text-transform: uppercase; letter-spacing: 1px; }
  .stat-value { font-size: 22px; font-weight: 600; color: #edf1f5; }
  .stat-value.cost { color: #e9a23b; }
  table { width: 100%; border-collapse: collapse; background: #11161d; border: 1px solid #232b35; border-radius: 6px; overflow: hidden; }
  th { text-align: left; padding: 9px 12px; font-size: 10px; color: #78828c; text-transform: uppercase; letter-spacing: 1px; background: #0b0f14; border-bottom: 1px solid #232b35; }
  td { padding: 9px 12px; font-size: 13px; border-bottom: 1px solid #1a2027; }
  tr:last-child td { border-bottom: none; }
  .session-id { color: #6ea8fe; }
  .model { color: #c792ea; }
  .cost { color: #e9a23b; font-weight: 600; }
  .bar-track { width: 90px; height: 7px; background: #1a2027; border-radius: 4px; overflow: hidden; display: inline-block; vertical-align: middle; margin-right: 8px; }
  .bar-fill { height: 100%; border-radius: 4px; }
  .bar-fill.ok { background: #3fb950; }
  .bar-fill.warn { background: #d29922; }
  .bar-fill.over { background: #f85149; }
  .empty { text-align: center; padding: 36px; color: #78828c; }
  .footer { margin-top: 14px; font-size: 10px; color: #454d56; }
</style>
</head>
<body>
<h1>llmrouter cost dashboard</h1>
<div class="summary">
`)
	writeStat(&b, "spend", fmt.Sprintf("$%.4f", totalCost), "cost")
	writeStat(&b, "sessions", fmt.Sprintf("%d", len(sessions)), "")
	writeStat(&b, "requests", fmt.Sprintf("%d", totalRequests), "")
	writeStat(&b, "cap", capSummary(cfg), "")
	b.WriteString("</div>\n")

	if len(sessions) == 0 {
		b.WriteString(`<div class="empty">no sessions recorded yet</div>`)
	} else {
		writeSessionTable(&b, sessions, cfg)
	}

	b.WriteString(`
<div class="footer">refreshes every 5s</div>
</body>
</html>`)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(b.String()))
}

func writeStat(b *strings.Builder, label, value, extraClass string) {
	fmt.Fprintf(b, `<div class="stat"><div class="stat-label">%s</div><div class="stat-value %s">%s</div></div>`, label, extraClass, value)
}

func capSummary(cfg CostControlConfig) string {
	if !cfg.Enabled || (cfg.SessionCap <= 0 && cfg.GlobalCap <= 0) {
		return "unlimited"
	}
	var parts []string
	if cfg.SessionCap > 0 {
		parts = append(parts, fmt.Sprintf("$%s/session", formatCost(cfg.SessionCap)))
	}
	if cfg.GlobalCap > 0 {
		parts = append(parts, fmt.Sprintf("$%s total", formatCost(cfg.GlobalCap)))
	}
	return strings.Join(parts, ", ")
}

func writeSessionTable(b *strings.Builder, sessions []CostSessionSnapshot, cfg CostControlConfig) {
	showBudget := cfg.Enabled && cfg.SessionCap > 0
	b.WriteString("<table><tr><th>session</th><th>model</th><th>requests</th><th>cost</th>")
	if showBudget {
		b.WriteString("<th>budget</th>")
	}
	b.WriteString("<th>last seen</th></tr>\n")

	for _, s := range sessions {
		id := s.ID
		if len(id) > 12 {
			id = id[:12] + "..."
		}
		fmt.Fprintf(b, `<tr><td class="session-id">%s</td><td class="model">%s</td><td>%d</td><td class="cost">$%.4f</td>`,
			id, s.Model, s.RequestCount, s.Cost)
		if showBudget {
			b.WriteString(budgetBarCell(s.Cost, cfg.SessionCap))
		}
		fmt.Fprintf(b, `<td>%s</td></tr>`+"\n", sinceLabel(s.LastUpdated))
	}
	b.WriteString("</table>")
}

func budgetBarCell(cost, cap float64) string {
	pct := cost / cap * 100
	if pct > 100 {
		pct = 100
	}
	fill := "ok"
	switch {
	case pct > 80:
		fill = "over"
	case pct > 50:
		fill = "warn"
	}
	return fmt.Sprintf(`<td><div class="bar-track"><div class="bar-fill %s" style="width:%.0f%%"></div></div>%.0f%%</td>`, fill, pct, pct)
}

func sinceLabel(t time.Time) string {
	ago := time.Since(t)
	switch {
	case ago < time.Minute:
		return fmt.Sprintf("%ds ago", int(ago.Seconds()))
	case ago < time.Hour:
		return fmt.Sprintf("%dm ago", int(ago.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(ago.Hours()))
	}
}

// formatCost uses more decimal places for sub-dollar caps, where 2 places
// would round a meaningful cap (e.g. $0.01) down to "$0.00".
func formatCost(v float64) string {
	if v >= 1.0 {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.4f", v)
}
