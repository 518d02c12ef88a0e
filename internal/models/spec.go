package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProviderKind identifies the adapter used to reach a provider endpoint.
type ProviderKind string

const (
	ProviderKindOpenAI ProviderKind = "openai"
	ProviderKindMock   ProviderKind = "mock"
)

// BenchmarkSpec is the complete benchmark configuration loaded from YAML.
type BenchmarkSpec struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description,omitempty"`
	Config      Config           `yaml:"config"`
	Providers   []ProviderConfig `yaml:"providers"`
	Scorers     []ScorerConfig   `yaml:"scorers"`
	Tasks       []string         `yaml:"tasks"`
	Gate        GateConfig       `yaml:"gate,omitempty"`
	Pricing     []PricingConfig  `yaml:"pricing,omitempty"`
}

// Config controls execution behavior.
type Config struct {
	RunsPerCell int    `yaml:"runs_per_cell"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	JudgeID     string `yaml:"judge,omitempty"`
}

// ProviderConfig declares one endpoint to benchmark. ID is the stable
// identity results are grouped by, conventionally "vendor/model".
type ProviderConfig struct {
	ID        string       `yaml:"id"`
	Kind      ProviderKind `yaml:"kind"`
	BaseURL   string       `yaml:"base_url,omitempty"`
	Model     string       `yaml:"model,omitempty"`
	APIKeyEnv string       `yaml:"api_key_env,omitempty"`
	// Responses scripts the mock provider: exact prompt to canned output,
	// with the empty key acting as the fallback.
	Responses map[string]string `yaml:"responses,omitempty"`
}

// ScorerConfig declares one scorer in the pipeline.
type ScorerConfig struct {
	Kind       string         `yaml:"kind"`
	Name       string         `yaml:"name,omitempty"`
	Parameters map[string]any `yaml:"params,omitempty"`
}

// EffectiveName returns the configured name, defaulting to the kind.
func (s ScorerConfig) EffectiveName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Kind
}

// GateConfig configures the CI regression gate. Thresholds map scorer name to
// the margin a change must clear before it gates; scorers with no entry never
// gate. BudgetUSD, when set, makes total spend a hard failure condition.
type GateConfig struct {
	Thresholds map[string]float64 `yaml:"thresholds,omitempty"`
	BudgetUSD  *float64           `yaml:"budget_usd,omitempty"`
}

// PricingConfig supplies per-1K-token USD prices for one provider.
type PricingConfig struct {
	ProviderID      string  `yaml:"provider_id"`
	PromptPer1K     float64 `yaml:"prompt_per_1k"`
	CompletionPer1K float64 `yaml:"completion_per_1k"`
}

// LoadBenchmarkSpec loads and validates a spec from a YAML file.
func LoadBenchmarkSpec(path string) (*BenchmarkSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var spec BenchmarkSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing spec %s: %w", path, err)
	}

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	return &spec, nil
}

// Validate checks that the spec is executable.
func (s *BenchmarkSpec) Validate() error {
	if len(s.Providers) == 0 {
		return fmt.Errorf("spec declares no providers")
	}
	if len(s.Tasks) == 0 {
		return fmt.Errorf("spec declares no task patterns")
	}
	if s.Config.RunsPerCell < 1 {
		return fmt.Errorf("runs_per_cell must be at least 1, got %d", s.Config.RunsPerCell)
	}
	if s.Config.TimeoutMs < 1 {
		return fmt.Errorf("timeout_ms must be at least 1, got %d", s.Config.TimeoutMs)
	}

	seen := make(map[string]bool, len(s.Providers))
	for _, p := range s.Providers {
		if p.ID == "" {
			return fmt.Errorf("provider is missing an id")
		}
		if seen[p.ID] {
			return fmt.Errorf("duplicate provider id %q", p.ID)
		}
		seen[p.ID] = true
		switch p.Kind {
		case ProviderKindOpenAI, ProviderKindMock:
		default:
			return fmt.Errorf("provider %q has unknown kind %q", p.ID, p.Kind)
		}
	}

	for name, margin := range s.Gate.Thresholds {
		if margin < 0 {
			return fmt.Errorf("threshold for scorer %q must be non-negative, got %g", name, margin)
		}
	}
	if s.Gate.BudgetUSD != nil && *s.Gate.BudgetUSD < 0 {
		return fmt.Errorf("budget_usd must be non-negative, got %g", *s.Gate.BudgetUSD)
	}

	return nil
}
