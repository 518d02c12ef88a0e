package scorers

import (
	"context"
	"fmt"
	"strings"

	"github.com/benchgate/benchgate/internal/models"
)

// KeywordParams configures a keyword scorer.
type KeywordParams struct {
	// MustContain lists keywords that must appear in the output (case-insensitive).
	MustContain []string `mapstructure:"must_contain"`
	// MustNotContain lists keywords that must NOT appear in the output (case-insensitive).
	MustNotContain []string `mapstructure:"must_not_contain"`
}

// keywordScorer scores the fraction of keyword checks the output satisfies.
type keywordScorer struct {
	name   string
	params KeywordParams
}

// NewKeywordScorer creates a [keywordScorer] using case-insensitive matching.
func NewKeywordScorer(name string, params KeywordParams) Scorer {
	return &keywordScorer{name: name, params: params}
}

func (s *keywordScorer) Name() string { return s.name }
func (s *keywordScorer) Kind() Kind   { return KindKeyword }

func (s *keywordScorer) Score(ctx context.Context, sc *Context, providerID string) (*models.ScoreResult, error) {
	totalChecks := len(s.params.MustContain) + len(s.params.MustNotContain)
	if totalChecks == 0 {
		return models.Unavailable(s.name, "no keyword checks configured"), nil
	}

	var failures []string
	outputLower := strings.ToLower(sc.Result.Output.Text())

	for _, keyword := range s.params.MustContain {
		if !strings.Contains(outputLower, strings.ToLower(keyword)) {
			failures = append(failures, fmt.Sprintf("missing expected keyword: %s", keyword))
		}
	}

	for _, keyword := range s.params.MustNotContain {
		if strings.Contains(outputLower, strings.ToLower(keyword)) {
			failures = append(failures, fmt.Sprintf("found forbidden keyword: %s", keyword))
		}
	}

	passedChecks := totalChecks - len(failures)

	return &models.ScoreResult{
		Name:  s.name,
		Value: float64(passedChecks) / float64(totalChecks),
		Details: map[string]any{
			"failures": failures,
		},
	}, nil
}
