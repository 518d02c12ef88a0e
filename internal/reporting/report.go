// Package reporting renders benchmark results and CI verdicts for terminals,
// JSON consumers, and GitHub pull-request comments.
package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/benchgate/benchgate/internal/gate"
	"github.com/benchgate/benchgate/internal/models"
	"github.com/benchgate/benchgate/internal/statistics"
)

// usdPrinter formats dollar amounts with English grouping.
var usdPrinter = message.NewPrinter(language.English)

// padRight pads s with spaces so its terminal display width reaches width.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}

// row is one rendered line of the stats table.
type row struct {
	provider, task, scorer string
	stats                  statistics.ScorerStats
}

// sortedRows flattens a stats map into deterministic display order.
func sortedRows(stats map[string]statistics.ScorerStats) []row {
	rows := make([]row, 0, len(stats))
	for key, st := range stats {
		provider, task, scorer, err := statistics.SplitKey(key)
		if err != nil {
			continue
		}
		rows = append(rows, row{provider: provider, task: task, scorer: scorer, stats: st})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].task != rows[j].task {
			return rows[i].task < rows[j].task
		}
		if rows[i].provider != rows[j].provider {
			return rows[i].provider < rows[j].provider
		}
		return rows[i].scorer < rows[j].scorer
	})
	return rows
}

// StatsTable renders per-group statistics as an aligned text table.
func StatsTable(stats map[string]statistics.ScorerStats) string {
	rows := sortedRows(stats)
	if len(rows) == 0 {
		return "no scored results\n"
	}

	headers := []string{"TASK", "PROVIDER", "SCORER", "MEAN", "95% CI", "CV", "N"}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}

	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		line := []string{
			r.task,
			r.provider,
			r.scorer,
			fmt.Sprintf("%.3f", r.stats.Mean),
			fmt.Sprintf("[%.3f, %.3f]", r.stats.CI95Lower, r.stats.CI95Upper),
			fmt.Sprintf("%.2f", r.stats.CV),
			fmt.Sprintf("%d", r.stats.N),
		}
		for i, cell := range line {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
		cells = append(cells, line)
	}

	var b strings.Builder
	for i, h := range headers {
		b.WriteString(padRight(h, widths[i]+2))
	}
	b.WriteString("\n")
	for _, line := range cells {
		for i, cell := range line {
			b.WriteString(padRight(cell, widths[i]+2))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ErrorSummary lists failed cells, one line each. Returns "" when every cell
// succeeded.
func ErrorSummary(results []models.BenchmarkResult) string {
	var b strings.Builder
	for _, r := range results {
		if !r.Failed() {
			continue
		}
		fmt.Fprintf(&b, "  %s × %s (run %d): %s\n", r.ProviderID, r.TaskName, r.Run, r.Error)
	}
	return b.String()
}

// Verdict renders the CI gate outcome: one line per failure reason, the
// flaky warnings, the cost line, and a final pass/fail line.
func Verdict(report *gate.Report) string {
	var b strings.Builder

	for _, reason := range report.Reasons {
		fmt.Fprintf(&b, "FAIL: %s\n", reason)
	}

	for _, f := range report.Flaky {
		fmt.Fprintf(&b, "WARN: %s × %s: %s is flaky (cv=%.2f over %d runs)\n",
			f.ProviderID, f.TaskName, f.ScorerName, f.Current.CV, f.Current.N)
	}

	b.WriteString(costLine(report.Cost))

	if report.Failed {
		b.WriteString("Verdict: FAIL\n")
	} else {
		b.WriteString("Verdict: PASS\n")
	}
	return b.String()
}

func costLine(cost gate.CostSummary) string {
	if cost.BudgetUSD != nil {
		return usdPrinter.Sprintf("Total cost: $%.4f (budget $%.4f)\n", cost.TotalUSD, *cost.BudgetUSD)
	}
	return usdPrinter.Sprintf("Total cost: $%.4f\n", cost.TotalUSD)
}

// GitHubComment renders the gate report as a Markdown comment body for a
// pull request.
func GitHubComment(report *gate.Report) string {
	var b strings.Builder

	b.WriteString("## Benchmark Gate Results\n\n")

	status := "✅ Passed"
	if report.Failed {
		status = "❌ Failed"
	}
	b.WriteString(usdPrinter.Sprintf("**Status:** %s | **Cost:** $%.4f\n\n", status, report.Cost.TotalUSD))

	if len(report.Reasons) > 0 {
		b.WriteString("### Failures\n\n")
		for _, reason := range report.Reasons {
			fmt.Fprintf(&b, "- %s\n", reason)
		}
		b.WriteString("\n")
	}

	if len(report.Comparisons) > 0 {
		b.WriteString("### Comparisons\n\n")
		b.WriteString("| Task | Provider | Scorer | Baseline | Current | Delta | Status |\n")
		b.WriteString("|------|----------|--------|----------|---------|-------|--------|\n")
		for _, c := range report.Comparisons {
			baseline := "–"
			delta := "–"
			if c.Baseline != nil {
				baseline = fmt.Sprintf("%.3f", c.Baseline.Mean)
			}
			if c.Delta != nil {
				delta = fmt.Sprintf("%+.3f", *c.Delta)
			}
			status := ""
			switch {
			case c.Regressed:
				status = "❌ regressed"
			case c.Improved:
				status = "✅ improved"
			case c.Flaky:
				status = "⚠️ flaky"
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %.3f | %s | %s |\n",
				c.TaskName, c.ProviderID, c.ScorerName, baseline, c.Current.Mean, delta, status)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// WriteJSON saves any report shape as indented JSON.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
