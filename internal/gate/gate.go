// Package gate classifies current benchmark statistics against a persisted
// baseline and enforces the cost budget. Comparison is a pure function over
// two stats snapshots; the only mutable state is the report it builds.
package gate

import (
	"fmt"
	"sort"

	"github.com/benchgate/benchgate/internal/models"
	"github.com/benchgate/benchgate/internal/scorers"
	"github.com/benchgate/benchgate/internal/statistics"
)

// FlakyCVThreshold is the coefficient-of-variation cutoff above which a
// multi-sample group's mean is not trustworthy evidence of change.
const FlakyCVThreshold = 0.30

// Comparison is the verdict for one (provider, task, scorer) group. A nil
// Baseline means this is the group's first observation: it establishes a
// baseline point and cannot regress against nothing, so Delta is nil and
// both flags are false.
type Comparison struct {
	ProviderID string                  `json:"provider_id"`
	TaskName   string                  `json:"task_name"`
	ScorerName string                  `json:"scorer_name"`
	Baseline   *statistics.ScorerStats `json:"baseline,omitempty"`
	Current    statistics.ScorerStats  `json:"current"`
	Delta      *float64                `json:"delta,omitempty"`
	Regressed  bool                    `json:"regressed"`
	Improved   bool                    `json:"improved"`
	Flaky      bool                    `json:"flaky"`
}

// CostSummary totals realized spend across the run.
type CostSummary struct {
	TotalUSD    float64            `json:"total_usd"`
	PerProvider map[string]float64 `json:"per_provider"`
	BudgetUSD   *float64           `json:"budget_usd,omitempty"`
	OverBudget  bool               `json:"over_budget"`
}

// Report is the complete CI verdict, constructed once per invocation and
// never mutated afterward.
type Report struct {
	Comparisons []Comparison `json:"comparisons"`
	Cost        CostSummary  `json:"cost"`
	Failed      bool         `json:"failed"`
	Flaky       []Comparison `json:"flaky,omitempty"`
	Reasons     []string     `json:"reasons,omitempty"`
}

// Compare classifies every group in current against the baseline stats and
// checks total spend against the budget. baselineStats may be nil on a first
// run. thresholds maps scorer name to the margin a change must clear before
// it gates; scorers with no entry are never checked.
func Compare(
	baselineStats map[string]statistics.ScorerStats,
	currentStats map[string]statistics.ScorerStats,
	thresholds map[string]float64,
	budgetUSD *float64,
	currentResults []models.BenchmarkResult,
) *Report {
	report := &Report{}

	keys := make([]string, 0, len(currentStats))
	for key := range currentStats {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		current := currentStats[key]

		providerID, taskName, scorerName, err := statistics.SplitKey(key)
		if err != nil {
			// Keys are produced by statistics.Key; a malformed one can only
			// come from a corrupted baseline file. Skip it.
			continue
		}

		cmp := Comparison{
			ProviderID: providerID,
			TaskName:   taskName,
			ScorerName: scorerName,
			Current:    current,
			Flaky:      current.N > 1 && current.CV > FlakyCVThreshold,
		}

		if baselineStats != nil {
			if base, ok := baselineStats[key]; ok {
				cmp.Baseline = &base
				delta := current.Mean - base.Mean
				cmp.Delta = &delta

				if threshold, gated := thresholds[scorerName]; gated {
					classify(&cmp, base, current, threshold)
				}
			}
		}

		if cmp.Regressed {
			report.Reasons = append(report.Reasons, fmt.Sprintf(
				"%s × %s: %s regressed by %+.4f",
				providerID, taskName, scorerName, *cmp.Delta))
		}
		if cmp.Flaky {
			report.Flaky = append(report.Flaky, cmp)
		}

		report.Comparisons = append(report.Comparisons, cmp)
	}

	report.Cost = summarizeCost(currentResults, budgetUSD)
	if report.Cost.OverBudget {
		report.Reasons = append(report.Reasons, fmt.Sprintf(
			"total cost $%.4f exceeds budget $%.4f",
			report.Cost.TotalUSD, *budgetUSD))
	}

	report.Failed = report.Cost.OverBudget || len(report.Reasons) > 0

	return report
}

// classify applies the direction-aware regression/improvement rules for one
// gated group.
func classify(cmp *Comparison, base, current statistics.ScorerStats, threshold float64) {
	lowerBetter := scorers.LowerIsBetter(cmp.ScorerName)

	if base.N == 1 && current.N == 1 {
		// Plain delta when neither side has interval evidence.
		delta := *cmp.Delta
		if lowerBetter {
			cmp.Regressed = delta > threshold
			cmp.Improved = delta < -threshold
		} else {
			cmp.Regressed = delta < -threshold
			cmp.Improved = delta > threshold
		}
		return
	}

	// Multi-sample: require the intervals themselves to separate by more
	// than the margin, so noise-wide groups cannot trip the gate.
	if lowerBetter {
		cmp.Regressed = current.CI95Lower-base.CI95Upper > threshold
		cmp.Improved = base.CI95Lower-current.CI95Upper > threshold
	} else {
		// The mean-ordering guard keeps wide intervals alone from flagging a
		// regression when the point estimate did not actually drop.
		cmp.Regressed = base.CI95Upper-current.CI95Lower > threshold && current.Mean < base.Mean
		cmp.Improved = current.CI95Lower-base.CI95Upper > threshold
	}
}

// summarizeCost totals the realized cost estimates over successful results.
// Only cells whose cost score is applicable and carries a "usd" detail
// contribute.
func summarizeCost(results []models.BenchmarkResult, budgetUSD *float64) CostSummary {
	summary := CostSummary{
		PerProvider: make(map[string]float64),
		BudgetUSD:   budgetUSD,
	}

	for _, r := range results {
		if r.Failed() {
			continue
		}
		for _, s := range r.Scores {
			if !s.Applicable() || !scorers.LowerIsBetter(s.Name) {
				continue
			}
			usd, ok := realizedUSD(s)
			if !ok {
				continue
			}
			summary.TotalUSD += usd
			summary.PerProvider[r.ProviderID] += usd
		}
	}

	summary.OverBudget = budgetUSD != nil && summary.TotalUSD > *budgetUSD
	return summary
}

// realizedUSD extracts the dollar estimate a cost scorer attached to its
// score. Baseline round-trips decode JSON numbers as float64.
func realizedUSD(s models.ScoreResult) (float64, bool) {
	raw, ok := s.Details["usd"]
	if !ok {
		return 0, false
	}
	usd, ok := raw.(float64)
	if !ok || usd < 0 {
		return 0, false
	}
	return usd, true
}
