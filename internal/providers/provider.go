package providers

import (
	"context"
	"fmt"

	"github.com/benchgate/benchgate/internal/models"
)

// Provider is the capability each model-serving endpoint adapter satisfies.
// The engine never inspects adapter internals: it hands over a request and a
// cancellable context, and gets back a TaskResult or an error. Adapters must
// honor context cancellation best-effort; retries are the adapter's own
// concern.
type Provider interface {
	// ID returns the stable identity results are grouped by, e.g. "vendor/model".
	ID() string

	// Invoke sends the prompt and produces exactly one result per successful call.
	Invoke(ctx context.Context, req *InvokeRequest) (*models.TaskResult, error)
}

// InvokeRequest carries the prompt and the task's answer constraints.
type InvokeRequest struct {
	Prompt string
	// Schema, when set, asks the provider for output conforming to this
	// JSON schema.
	Schema map[string]any
	Tools  []models.ToolSpec
}

// Build constructs the provider adapter for one spec entry.
func Build(cfg models.ProviderConfig) (Provider, error) {
	switch cfg.Kind {
	case models.ProviderKindOpenAI:
		return NewOpenAIProvider(cfg)
	case models.ProviderKindMock:
		return NewMockProvider(cfg.ID, WithResponses(cfg.Responses)), nil
	default:
		return nil, fmt.Errorf("provider %q has unknown kind %q", cfg.ID, cfg.Kind)
	}
}

// BuildAll constructs every provider declared in the spec, in declaration order.
func BuildAll(cfgs []models.ProviderConfig) ([]Provider, error) {
	built := make([]Provider, 0, len(cfgs))
	for _, cfg := range cfgs {
		p, err := Build(cfg)
		if err != nil {
			return nil, err
		}
		built = append(built, p)
	}
	return built, nil
}
