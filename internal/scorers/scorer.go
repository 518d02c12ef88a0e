// Package scorers turns a (task, result) pair into named, normalized scores.
// Scorers are independent and side-effect-free; a scorer that cannot apply
// returns the sentinel score rather than an error, so only genuine failures
// surface to the engine.
package scorers

import (
	"context"
	"fmt"

	"github.com/go-viper/mapstructure/v2"

	"github.com/benchgate/benchgate/internal/models"
	"github.com/benchgate/benchgate/internal/pricing"
	"github.com/benchgate/benchgate/internal/providers"
)

// Kind identifies a scorer implementation.
type Kind string

const (
	KindExactMatch Kind = "exact_match"
	KindKeyword    Kind = "keyword"
	KindJSONSchema Kind = "json_schema"
	KindLatency    Kind = "latency"
	KindCost       Kind = "cost"
	KindJudge      Kind = "judge"
)

// Scorer is the contract every scorer in the pipeline satisfies.
type Scorer interface {
	// Name returns the score name emitted into results.
	Name() string

	// Kind returns the scorer implementation kind.
	Kind() Kind

	// Score judges one cell's result. An error return is treated like a
	// provider failure for that cell; inapplicability is signaled with the
	// sentinel score instead.
	Score(ctx context.Context, sc *Context, providerID string) (*models.ScoreResult, error)
}

// Context carries the material a scorer judges.
type Context struct {
	Task   *models.Task
	Result *models.TaskResult
}

// lowerIsBetter fixes the polarity of scores by name. Unknown names default
// to higher-is-better.
var lowerIsBetter = map[string]bool{
	string(KindCost):    true,
	string(KindLatency): true,
}

// LowerIsBetter reports whether smaller values of the named score are better.
func LowerIsBetter(scoreName string) bool {
	return lowerIsBetter[scoreName]
}

// Deps holds the collaborators some scorers need: the pricing registry for
// cost, and a judge provider for LLM-judged scoring.
type Deps struct {
	Pricing *pricing.Registry
	Judge   providers.Provider
}

// Create builds one scorer from its spec entry, decoding parameters with
// mapstructure.
func Create(cfg models.ScorerConfig, deps Deps) (Scorer, error) {
	name := cfg.EffectiveName()

	switch Kind(cfg.Kind) {
	case KindExactMatch:
		return NewExactMatchScorer(name), nil
	case KindKeyword:
		var params KeywordParams
		if err := mapstructure.Decode(cfg.Parameters, &params); err != nil {
			return nil, fmt.Errorf("keyword scorer %q: %w", name, err)
		}
		return NewKeywordScorer(name, params), nil
	case KindJSONSchema:
		return NewJSONSchemaScorer(name), nil
	case KindLatency:
		var params LatencyParams
		if err := mapstructure.Decode(cfg.Parameters, &params); err != nil {
			return nil, fmt.Errorf("latency scorer %q: %w", name, err)
		}
		return NewLatencyScorer(name, params), nil
	case KindCost:
		if deps.Pricing == nil {
			return nil, fmt.Errorf("cost scorer %q requires a pricing registry", name)
		}
		var params CostParams
		if err := mapstructure.Decode(cfg.Parameters, &params); err != nil {
			return nil, fmt.Errorf("cost scorer %q: %w", name, err)
		}
		return NewCostScorer(name, deps.Pricing, params), nil
	case KindJudge:
		if deps.Judge == nil {
			return nil, fmt.Errorf("judge scorer %q requires a judge provider (set config.judge)", name)
		}
		var params JudgeParams
		if err := mapstructure.Decode(cfg.Parameters, &params); err != nil {
			return nil, fmt.Errorf("judge scorer %q: %w", name, err)
		}
		return NewJudgeScorer(name, deps.Judge, params), nil
	default:
		return nil, fmt.Errorf("%q is not a valid scorer kind", cfg.Kind)
	}
}

// CreateAll builds the full pipeline in configured order.
func CreateAll(cfgs []models.ScorerConfig, deps Deps) ([]Scorer, error) {
	pipeline := make([]Scorer, 0, len(cfgs))
	for _, cfg := range cfgs {
		s, err := Create(cfg, deps)
		if err != nil {
			return nil, err
		}
		pipeline = append(pipeline, s)
	}
	return pipeline, nil
}

// clamp01 clamps v into the normalized score range.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
