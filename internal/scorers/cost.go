package scorers

import (
	"context"

	"github.com/benchgate/benchgate/internal/models"
	"github.com/benchgate/benchgate/internal/pricing"
)

// defaultCostCapUSD normalizes cost scores: an invocation costing the cap or
// more scores 1.0 (worst).
const defaultCostCapUSD = 0.10

// CostParams configures a cost scorer.
type CostParams struct {
	// CapUSD is the per-invocation cost mapped to the worst score. Defaults
	// to 0.10.
	CapUSD float64 `mapstructure:"cap_usd"`
}

// costScorer estimates USD spend from reported token usage and the pricing
// registry. Lower is better. The realized estimate is carried in details
// under "usd" for the budget gate.
type costScorer struct {
	name    string
	pricing *pricing.Registry
	capUSD  float64
}

// NewCostScorer creates a [costScorer] backed by the given registry.
func NewCostScorer(name string, reg *pricing.Registry, params CostParams) Scorer {
	cap := params.CapUSD
	if cap <= 0 {
		cap = defaultCostCapUSD
	}
	return &costScorer{name: name, pricing: reg, capUSD: cap}
}

func (s *costScorer) Name() string { return s.name }
func (s *costScorer) Kind() Kind   { return KindCost }

func (s *costScorer) Score(ctx context.Context, sc *Context, providerID string) (*models.ScoreResult, error) {
	if sc.Result.TokenUsage == nil {
		return models.Unavailable(s.name, "provider reported no token usage"), nil
	}

	usd, ok := s.pricing.EstimateUSD(providerID, *sc.Result.TokenUsage)
	if !ok {
		return models.Unavailable(s.name, "no pricing data for provider "+providerID), nil
	}

	return &models.ScoreResult{
		Name:  s.name,
		Value: clamp01(usd / s.capUSD),
		Details: map[string]any{
			"usd":     usd,
			"cap_usd": s.capUSD,
		},
	}, nil
}
