// Package llmtest provides a scripted chat model for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// MockChatModel implements model.BaseChatModel for testing.
// It records every prompt it receives.
type MockChatModel struct {
	Response *schema.Message
	Err      error

	mu     sync.Mutex
	inputs [][]*schema.Message
}

// Reply returns a mock that answers every call with content.
func Reply(content string) *MockChatModel {
	return &MockChatModel{Response: &schema.Message{Role: schema.Assistant, Content: content}}
}

// Fail returns a mock whose calls all fail with err.
func Fail(err error) *MockChatModel {
	return &MockChatModel{Err: err}
}

func (m *MockChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	m.inputs = append(m.inputs, input)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Response, nil
}

func (m *MockChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, nil
}

// Calls reports how many times Generate was invoked.
func (m *MockChatModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

// LastInput returns the messages of the most recent call.
func (m *MockChatModel) LastInput() []*schema.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.inputs) == 0 {
		return nil
	}
	return m.inputs[len(m.inputs)-1]
}
