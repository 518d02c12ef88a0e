// Package pricing maps provider identities to per-token USD prices. The
// registry is built once at startup from the benchmark spec and handed to the
// cost scorer; there is no process-global price table.
package pricing

import "github.com/benchgate/benchgate/internal/models"

// Rates holds USD prices per 1K tokens for one provider.
type Rates struct {
	PromptPer1K     float64
	CompletionPer1K float64
}

// Registry resolves a provider id to its token prices.
type Registry struct {
	rates map[string]Rates
}

// defaultRates seeds the registry with prices for well-known hosted models,
// keyed by the conventional "vendor/model" provider id.
var defaultRates = map[string]Rates{
	"openai/gpt-4o":               {PromptPer1K: 0.0025, CompletionPer1K: 0.01},
	"openai/gpt-4o-mini":          {PromptPer1K: 0.00015, CompletionPer1K: 0.0006},
	"openai/gpt-4.1":              {PromptPer1K: 0.002, CompletionPer1K: 0.008},
	"openai/gpt-4.1-mini":         {PromptPer1K: 0.0004, CompletionPer1K: 0.0016},
	"anthropic/claude-3-5-haiku":  {PromptPer1K: 0.0008, CompletionPer1K: 0.004},
	"anthropic/claude-3-7-sonnet": {PromptPer1K: 0.003, CompletionPer1K: 0.015},
}

// NewRegistry builds a registry pre-populated with the default price table.
func NewRegistry() *Registry {
	rates := make(map[string]Rates, len(defaultRates))
	for id, r := range defaultRates {
		rates[id] = r
	}
	return &Registry{rates: rates}
}

// FromSpec builds a registry from the defaults plus the spec's pricing
// entries; spec entries override defaults for the same provider id.
func FromSpec(entries []models.PricingConfig) *Registry {
	reg := NewRegistry()
	for _, e := range entries {
		reg.Register(e.ProviderID, Rates{
			PromptPer1K:     e.PromptPer1K,
			CompletionPer1K: e.CompletionPer1K,
		})
	}
	return reg
}

// Register adds or overrides the rates for a provider id.
func (r *Registry) Register(providerID string, rates Rates) {
	r.rates[providerID] = rates
}

// Lookup returns the rates for a provider id.
func (r *Registry) Lookup(providerID string) (Rates, bool) {
	rates, ok := r.rates[providerID]
	return rates, ok
}

// EstimateUSD computes the realized cost of one invocation. The second
// return is false when no pricing is registered for the provider.
func (r *Registry) EstimateUSD(providerID string, usage models.TokenUsage) (float64, bool) {
	rates, ok := r.rates[providerID]
	if !ok {
		return 0, false
	}
	usd := float64(usage.Prompt)/1000.0*rates.PromptPer1K +
		float64(usage.Completion)/1000.0*rates.CompletionPer1K
	return usd, true
}
