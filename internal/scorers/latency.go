package scorers

import (
	"context"

	"github.com/benchgate/benchgate/internal/models"
)

// defaultLatencyCeilingMs normalizes latency scores: an invocation at or
// above the ceiling scores 1.0 (worst), instant scores 0.0 (best).
const defaultLatencyCeilingMs = 60_000

// LatencyParams configures a latency scorer.
type LatencyParams struct {
	// CeilingMs is the latency mapped to the worst score. Defaults to 60000.
	CeilingMs int64 `mapstructure:"ceiling_ms"`
}

// latencyScorer normalizes observed latency into [0,1]. Lower is better.
type latencyScorer struct {
	name      string
	ceilingMs int64
}

// NewLatencyScorer creates a [latencyScorer].
func NewLatencyScorer(name string, params LatencyParams) Scorer {
	ceiling := params.CeilingMs
	if ceiling <= 0 {
		ceiling = defaultLatencyCeilingMs
	}
	return &latencyScorer{name: name, ceilingMs: ceiling}
}

func (s *latencyScorer) Name() string { return s.name }
func (s *latencyScorer) Kind() Kind   { return KindLatency }

func (s *latencyScorer) Score(ctx context.Context, sc *Context, providerID string) (*models.ScoreResult, error) {
	return &models.ScoreResult{
		Name:  s.name,
		Value: clamp01(float64(sc.Result.LatencyMs) / float64(s.ceilingMs)),
		Details: map[string]any{
			"latency_ms": sc.Result.LatencyMs,
			"ceiling_ms": s.ceilingMs,
		},
	}, nil
}
