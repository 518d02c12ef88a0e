package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/benchgate/benchgate/internal/models"
)

// MockProvider is a scripted in-process provider for offline runs and tests.
type MockProvider struct {
	id        string
	responses map[string]string
	delay     time.Duration
	failWith  error
	usage     *models.TokenUsage

	// InvokeFn, when set, replaces the scripted behavior entirely.
	InvokeFn func(ctx context.Context, req *InvokeRequest) (*models.TaskResult, error)
}

// MockOption configures a MockProvider.
type MockOption func(*MockProvider)

// WithResponses scripts per-prompt canned outputs. Keys match against the
// exact prompt; the empty key is the fallback response.
func WithResponses(responses map[string]string) MockOption {
	return func(m *MockProvider) {
		m.responses = responses
	}
}

// WithDelay makes every invocation take at least d, observing cancellation.
func WithDelay(d time.Duration) MockOption {
	return func(m *MockProvider) {
		m.delay = d
	}
}

// WithFailure makes every invocation fail with err.
func WithFailure(err error) MockOption {
	return func(m *MockProvider) {
		m.failWith = err
	}
}

// WithUsage attaches token usage to every successful result.
func WithUsage(usage models.TokenUsage) MockOption {
	return func(m *MockProvider) {
		m.usage = &usage
	}
}

// NewMockProvider builds a mock provider with the given id.
func NewMockProvider(id string, opts ...MockOption) *MockProvider {
	m := &MockProvider{id: id}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *MockProvider) ID() string { return m.id }

func (m *MockProvider) Invoke(ctx context.Context, req *InvokeRequest) (*models.TaskResult, error) {
	if m.InvokeFn != nil {
		return m.InvokeFn(ctx, req)
	}

	start := time.Now()

	if m.delay > 0 {
		timer := time.NewTimer(m.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if m.failWith != nil {
		return nil, m.failWith
	}

	output := fmt.Sprintf("mock response for: %s", req.Prompt)
	if m.responses != nil {
		if scripted, ok := m.responses[req.Prompt]; ok {
			output = scripted
		} else if fallback, ok := m.responses[""]; ok {
			output = fallback
		}
	}

	return &models.TaskResult{
		Output:     models.StringValue(output),
		LatencyMs:  time.Since(start).Milliseconds(),
		TokenUsage: m.usage,
	}, nil
}
