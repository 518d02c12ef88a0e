package statistics

import (
	"fmt"
	"math"
	"strings"

	"github.com/benchgate/benchgate/internal/models"
)

// ScorerStats describes the repeated-run samples of one
// (provider, task, scorer) group. For n=1 the interval collapses to the
// single value; for n=0 every field is zero.
type ScorerStats struct {
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"stddev"`
	CV        float64 `json:"cv"`
	N         int     `json:"n"`
	CI95Lower float64 `json:"ci95_lower"`
	CI95Upper float64 `json:"ci95_upper"`
}

// Key builds the group key used by Compute and the regression gate.
func Key(providerID, taskName, scorerName string) string {
	return providerID + "::" + taskName + "::" + scorerName
}

// SplitKey is the inverse of Key.
func SplitKey(key string) (providerID, taskName, scorerName string, err error) {
	parts := strings.SplitN(key, "::", 3)
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("malformed group key %q", key)
	}
	return parts[0], parts[1], parts[2], nil
}

// Compute reduces a result set into per-group statistics. Errored results and
// sentinel scores (value < 0) are excluded before grouping.
func Compute(results []models.BenchmarkResult) map[string]ScorerStats {
	samples := make(map[string][]float64)
	for _, r := range results {
		if r.Failed() {
			continue
		}
		for _, s := range r.Scores {
			if !s.Applicable() {
				continue
			}
			key := Key(r.ProviderID, r.TaskName, s.Name)
			samples[key] = append(samples[key], s.Value)
		}
	}

	stats := make(map[string]ScorerStats, len(samples))
	for key, values := range samples {
		stats[key] = ComputeScorerStats(values)
	}
	return stats
}

// ComputeScorerStats reduces one group's samples. The 95% interval uses the
// two-tailed Student's t critical value from a fixed table; repeated LLM
// calls are noisy enough that a single-sample delta comparison produces false
// positives, so the gate works on intervals rather than point estimates.
func ComputeScorerStats(values []float64) ScorerStats {
	n := len(values)
	if n == 0 {
		return ScorerStats{}
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	if n == 1 {
		// No spread is claimable from one sample.
		return ScorerStats{
			Mean:      mean,
			N:         1,
			CI95Lower: mean,
			CI95Upper: mean,
		}
	}

	sumSq := 0.0
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	// Unbiased sample standard deviation (Bessel's correction).
	stddev := math.Sqrt(sumSq / float64(n-1))

	cv := 0.0
	if mean != 0 {
		cv = stddev / math.Abs(mean)
	}

	se := stddev / math.Sqrt(float64(n))
	margin := tCritical95(n-1) * se

	return ScorerStats{
		Mean:      mean,
		StdDev:    stddev,
		CV:        cv,
		N:         n,
		CI95Lower: mean - margin,
		CI95Upper: mean + margin,
	}
}

// tTable holds two-tailed 95% critical values of the t distribution at the
// tabulated degrees of freedom. Intermediate df are linearly interpolated;
// this deliberately reproduces the table-plus-interpolation approximation
// rather than an exact t quantile.
var tTable = []struct {
	df   int
	crit float64
}{
	{1, 12.706},
	{2, 4.303},
	{3, 3.182},
	{4, 2.776},
	{5, 2.571},
	{6, 2.447},
	{7, 2.365},
	{8, 2.306},
	{9, 2.262},
	{10, 2.228},
	{12, 2.179},
	{15, 2.131},
	{20, 2.086},
	{25, 2.060},
	{30, 2.042},
}

// normalCritical95 is the z fallback for df outside the table's range.
const normalCritical95 = 1.96

// tCritical95 looks up the critical value for the given degrees of freedom,
// interpolating between the nearest tabulated entries.
func tCritical95(df int) float64 {
	if df <= 0 || df > 30 {
		return normalCritical95
	}

	for i, entry := range tTable {
		if df == entry.df {
			return entry.crit
		}
		if df < entry.df {
			prev := tTable[i-1]
			frac := float64(df-prev.df) / float64(entry.df-prev.df)
			return prev.crit + frac*(entry.crit-prev.crit)
		}
	}
	return normalCritical95
}
