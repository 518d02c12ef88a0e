package pricing

import (
	"testing"

	"github.com/benchgate/benchgate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateUSD(t *testing.T) {
	reg := NewRegistry()
	reg.Register("acme/fast-1", Rates{PromptPer1K: 0.001, CompletionPer1K: 0.002})

	usd, ok := reg.EstimateUSD("acme/fast-1", models.TokenUsage{Prompt: 1000, Completion: 500})
	require.True(t, ok)
	assert.InDelta(t, 0.002, usd, 1e-9)
}

func TestEstimateUSD_UnknownProvider(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.EstimateUSD("nobody/unknown", models.TokenUsage{Prompt: 10})
	assert.False(t, ok)
}

func TestFromSpec_OverridesDefaults(t *testing.T) {
	reg := FromSpec([]models.PricingConfig{
		{ProviderID: "openai/gpt-4o-mini", PromptPer1K: 0.5, CompletionPer1K: 1.0},
	})

	rates, ok := reg.Lookup("openai/gpt-4o-mini")
	require.True(t, ok)
	assert.InDelta(t, 0.5, rates.PromptPer1K, 1e-9)

	// Defaults remain for providers the spec does not mention.
	_, ok = reg.Lookup("openai/gpt-4o")
	assert.True(t, ok)
}
