package scorers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/benchgate/benchgate/internal/models"
	"github.com/benchgate/benchgate/internal/providers"
)

const defaultRubric = "Judge whether the answer correctly and completely addresses the question."

// JudgeParams configures a judge scorer.
type JudgeParams struct {
	// Rubric is the quality instruction given to the judge model.
	Rubric string `mapstructure:"rubric"`
}

// judgeScorer asks a judge provider to grade the output on a 0-1 scale.
// A judge call failure or an unparseable verdict yields the sentinel score,
// never a cell error, matching the contract that inapplicability does not
// abort a cell.
type judgeScorer struct {
	name   string
	judge  providers.Provider
	rubric string
}

// NewJudgeScorer creates a [judgeScorer] backed by the given judge provider.
func NewJudgeScorer(name string, judge providers.Provider, params JudgeParams) Scorer {
	rubric := params.Rubric
	if rubric == "" {
		rubric = defaultRubric
	}
	return &judgeScorer{name: name, judge: judge, rubric: rubric}
}

func (s *judgeScorer) Name() string { return s.name }
func (s *judgeScorer) Kind() Kind   { return KindJudge }

func (s *judgeScorer) Score(ctx context.Context, sc *Context, providerID string) (*models.ScoreResult, error) {
	prompt := s.buildPrompt(sc)

	res, err := s.judge.Invoke(ctx, &providers.InvokeRequest{Prompt: prompt})
	if err != nil {
		slog.Debug("judge call failed", "scorer", s.name, "provider", providerID, "error", err)
		return models.Unavailable(s.name, fmt.Sprintf("judge call failed: %v", err)), nil
	}

	value, ok := parseVerdict(res.Output.Text())
	if !ok {
		return models.Unavailable(s.name, "judge returned an unparseable verdict"), nil
	}

	return &models.ScoreResult{
		Name:  s.name,
		Value: clamp01(value),
		Details: map[string]any{
			"judge":   s.judge.ID(),
			"verdict": res.Output.Text(),
		},
	}, nil
}

func (s *judgeScorer) buildPrompt(sc *Context) string {
	var b strings.Builder
	b.WriteString("You are grading a model's answer.\n\n")
	b.WriteString("Rubric: " + s.rubric + "\n\n")
	b.WriteString("Question:\n" + sc.Task.Prompt + "\n\n")
	if sc.Task.Expected != nil {
		b.WriteString("Reference answer:\n" + sc.Task.Expected.Text() + "\n\n")
	}
	b.WriteString("Answer to grade:\n" + sc.Result.Output.Text() + "\n\n")
	b.WriteString(`Respond with JSON: {"score": <number between 0 and 1>}`)
	return b.String()
}

var numberPattern = regexp.MustCompile(`\d*\.?\d+`)

// parseVerdict extracts a 0-1 score from the judge's response, accepting
// either the requested JSON shape or a bare number in prose.
func parseVerdict(text string) (float64, bool) {
	var verdict struct {
		Score *float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &verdict); err == nil && verdict.Score != nil {
		return *verdict.Score, true
	}

	match := numberPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
