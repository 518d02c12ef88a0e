package models

import "time"

// TokenUsage counts the tokens a provider reported for one invocation.
type TokenUsage struct {
	Prompt     int `json:"prompt"`
	Completion int `json:"completion"`
}

// ToolCall records one tool invocation a provider made while answering.
type ToolCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"`
}

// TaskResult is the raw output of one successful provider invocation.
type TaskResult struct {
	Output     Value       `json:"output"`
	TokenUsage *TokenUsage `json:"token_usage,omitempty"`
	LatencyMs  int64       `json:"latency_ms"`
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`
}

// ScoreUnavailable is the sentinel value scorers return when they cannot
// apply: no expected value configured, no pricing data, judge call failed.
// Sentinel scores are excluded from aggregation and ranking.
const ScoreUnavailable = -1.0

// ScoreResult is one named, normalized judgment of a task result. Applicable
// scores are in [0,1]; whether higher or lower is better is a fixed property
// of the scorer name, not of the value.
type ScoreResult struct {
	Name    string         `json:"name"`
	Value   float64        `json:"value"`
	Details map[string]any `json:"details,omitempty"`
}

// Unavailable builds the sentinel ScoreResult with a reason in details.
func Unavailable(name, reason string) *ScoreResult {
	return &ScoreResult{
		Name:    name,
		Value:   ScoreUnavailable,
		Details: map[string]any{"reason": reason},
	}
}

// Applicable reports whether the score carries a usable value.
func (s ScoreResult) Applicable() bool {
	return s.Value >= 0
}

// BenchmarkResult is one executed cell of the task × provider × run matrix.
// Either Error is set and Scores is empty, or Error is empty and Scores holds
// one entry per configured scorer. Records are immutable once emitted.
type BenchmarkResult struct {
	ProviderID string        `json:"provider_id"`
	TaskName   string        `json:"task_name"`
	Run        int           `json:"run"`
	Scores     []ScoreResult `json:"scores"`
	Error      string        `json:"error,omitempty"`
	Raw        RawResult     `json:"raw"`
}

// RawResult carries the unjudged provider output alongside the scores.
type RawResult struct {
	Output     Value       `json:"output"`
	LatencyMs  int64       `json:"latency_ms"`
	TokenUsage *TokenUsage `json:"token_usage,omitempty"`
	ToolCalls  []ToolCall  `json:"tool_calls,omitempty"`
}

// Failed reports whether the cell errored (provider failure, scorer failure,
// or timeout).
func (r BenchmarkResult) Failed() bool {
	return r.Error != ""
}

// Score returns the named score and whether it was present.
func (r BenchmarkResult) Score(name string) (ScoreResult, bool) {
	for _, s := range r.Scores {
		if s.Name == name {
			return s, true
		}
	}
	return ScoreResult{}, false
}

// BaselineData is the unit persisted to and loaded from the baseline store.
type BaselineData struct {
	Timestamp string            `json:"timestamp"`
	Results   []BenchmarkResult `json:"results"`
}

// NewBaselineData stamps a result set with the current time.
func NewBaselineData(results []BenchmarkResult) *BaselineData {
	return &BaselineData{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Results:   results,
	}
}
