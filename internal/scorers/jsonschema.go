package scorers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/benchgate/benchgate/internal/models"
)

// jsonSchemaScorer validates the provider output against the task's output
// schema. Tasks without a schema are not applicable; output that is not
// valid JSON scores 0.
type jsonSchemaScorer struct {
	name string
}

// NewJSONSchemaScorer creates a [jsonSchemaScorer].
func NewJSONSchemaScorer(name string) Scorer {
	return &jsonSchemaScorer{name: name}
}

func (s *jsonSchemaScorer) Name() string { return s.name }
func (s *jsonSchemaScorer) Kind() Kind   { return KindJSONSchema }

func (s *jsonSchemaScorer) Score(ctx context.Context, sc *Context, providerID string) (*models.ScoreResult, error) {
	if sc.Task.OutputSchema == nil {
		return models.Unavailable(s.name, "task has no output schema"), nil
	}

	outputValue, ok := sc.Result.Output.AsStructured()
	if !ok {
		return &models.ScoreResult{
			Name:  s.name,
			Value: 0.0,
			Details: map[string]any{
				"failure": "output is not valid JSON",
			},
		}, nil
	}

	failure, err := validateAgainstSchema(outputValue, sc.Task.OutputSchema)
	if err != nil {
		return nil, fmt.Errorf("json_schema scorer %q: %w", s.name, err)
	}

	if failure != "" {
		return &models.ScoreResult{
			Name:  s.name,
			Value: 0.0,
			Details: map[string]any{
				"failure": failure,
			},
		}, nil
	}

	return &models.ScoreResult{Name: s.name, Value: 1.0}, nil
}

// validateAgainstSchema validates a value against a JSON schema map. A
// non-empty failure string means the value did not conform; an error means
// the schema itself is unusable.
func validateAgainstSchema(value any, schemaMap map[string]any) (string, error) {
	schemaJSON, err := json.Marshal(schemaMap)
	if err != nil {
		return "", fmt.Errorf("serializing schema: %w", err)
	}

	var schemaValue any
	if err := json.Unmarshal(schemaJSON, &schemaValue); err != nil {
		return "", fmt.Errorf("parsing schema for validation: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", schemaValue); err != nil {
		return "", fmt.Errorf("adding schema resource: %w", err)
	}

	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return "", fmt.Errorf("compiling JSON schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return fmt.Sprintf("schema validation failed: %v", err), nil
	}

	return "", nil
}
