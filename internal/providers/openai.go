package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/benchgate/benchgate/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider adapts any OpenAI-compatible chat completion endpoint.
type OpenAIProvider struct {
	id     string
	model  string
	client *openai.Client
}

// NewOpenAIProvider builds an adapter from a spec entry. The API key is read
// from the configured environment variable; BaseURL overrides the default
// endpoint for compatible servers (Azure OpenAI front-ends, vLLM, Ollama).
func NewOpenAIProvider(cfg models.ProviderConfig) (*OpenAIProvider, error) {
	keyEnv := cfg.APIKeyEnv
	if keyEnv == "" {
		keyEnv = "OPENAI_API_KEY"
	}
	apiKey := os.Getenv(keyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("provider %q: environment variable %s is not set", cfg.ID, keyEnv)
	}

	model := cfg.Model
	if model == "" {
		return nil, fmt.Errorf("provider %q: model is required for openai providers", cfg.ID)
	}

	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	slog.Debug("initialized openai provider", "id", cfg.ID, "model", model, "base_url", cfg.BaseURL)

	return &OpenAIProvider{
		id:     cfg.ID,
		model:  model,
		client: openai.NewClientWithConfig(clientCfg),
	}, nil
}

func (p *OpenAIProvider) ID() string { return p.id }

// Invoke sends one chat completion request. Latency covers the full round
// trip as observed from this process.
func (p *OpenAIProvider) Invoke(ctx context.Context, req *InvokeRequest) (*models.TaskResult, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
	}

	if req.Schema != nil {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	for _, tool := range req.Tools {
		chatReq.Tools = append(chatReq.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("provider returned no choices")
	}

	choice := resp.Choices[0]

	var toolCalls []models.ToolCall
	for _, tc := range choice.Message.ToolCalls {
		toolCalls = append(toolCalls, models.ToolCall{
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	output := models.StringValue(choice.Message.Content)
	if req.Schema != nil {
		var structured any
		if err := json.Unmarshal([]byte(choice.Message.Content), &structured); err == nil {
			output = models.StructuredValue(structured)
		}
	}

	return &models.TaskResult{
		Output:    output,
		LatencyMs: latency,
		TokenUsage: &models.TokenUsage{
			Prompt:     resp.Usage.PromptTokens,
			Completion: resp.Usage.CompletionTokens,
		},
		ToolCalls: toolCalls,
	}, nil
}
