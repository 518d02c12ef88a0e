package scorers

import (
	"context"

	"github.com/benchgate/benchgate/internal/models"
)

// exactMatchScorer scores 1.0 when the output equals the task's expected
// value, 0.0 otherwise. Tasks without an expected value are not applicable.
type exactMatchScorer struct {
	name string
}

// NewExactMatchScorer creates an [exactMatchScorer].
func NewExactMatchScorer(name string) Scorer {
	return &exactMatchScorer{name: name}
}

func (s *exactMatchScorer) Name() string { return s.name }
func (s *exactMatchScorer) Kind() Kind   { return KindExactMatch }

func (s *exactMatchScorer) Score(ctx context.Context, sc *Context, providerID string) (*models.ScoreResult, error) {
	if sc.Task.Expected == nil {
		return models.Unavailable(s.name, "task has no expected value"), nil
	}

	expected := *sc.Task.Expected
	output := sc.Result.Output

	// A structured expectation against string output compares after parsing
	// the output as JSON, so providers that answer JSON-as-text still match.
	if expected.IsStructured && !output.IsStructured {
		if parsed, ok := output.AsStructured(); ok {
			output = models.StructuredValue(parsed)
		}
	}

	value := 0.0
	if expected.Equal(output) {
		value = 1.0
	}

	return &models.ScoreResult{
		Name:  s.name,
		Value: value,
		Details: map[string]any{
			"expected": expected.Text(),
			"actual":   sc.Result.Output.Text(),
		},
	}, nil
}
