package baseline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/benchgate/benchgate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() []models.BenchmarkResult {
	return []models.BenchmarkResult{
		{
			ProviderID: "openai/gpt-4o-mini",
			TaskName:   "capital-of-france",
			Run:        1,
			Scores: []models.ScoreResult{
				{Name: "correctness", Value: 1.0},
				{Name: "cost", Value: 0.01, Details: map[string]any{"usd": 0.0004}},
			},
			Raw: models.RawResult{
				Output:     models.StringValue("Paris"),
				LatencyMs:  812,
				TokenUsage: &models.TokenUsage{Prompt: 21, Completion: 2},
			},
		},
		{
			ProviderID: "openai/gpt-4o-mini",
			TaskName:   "capital-of-france",
			Run:        2,
			Error:      "Request timed out after 30000ms",
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "baseline.json")

	original := sampleResults()
	require.NoError(t, Save(path, original))

	loaded := Load(path)
	require.NotNil(t, loaded)
	assert.NotEmpty(t, loaded.Timestamp)

	// Deep equality survives the JSON round trip, float details included.
	wantJSON, err := json.Marshal(original)
	require.NoError(t, err)
	gotJSON, err := json.Marshal(loaded.Results)
	require.NoError(t, err)
	assert.JSONEq(t, string(wantJSON), string(gotJSON))
}

func TestLoad_MissingFile(t *testing.T) {
	assert.Nil(t, Load(filepath.Join(t.TempDir(), "does-not-exist.json")))
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	assert.Nil(t, Load(path))
}

func TestLoad_UnrelatedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"foo": 1}`), 0o644))
	assert.Nil(t, Load(path))
}

func TestLoad_LegacyBareArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "baseline.json")

	data, err := json.Marshal(sampleResults())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	loaded := Load(path)
	require.NotNil(t, loaded)
	assert.Empty(t, loaded.Timestamp)
	assert.Len(t, loaded.Results, 2)
}
