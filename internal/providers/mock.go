package providers

import (
	"context"
	"sync"

	"resync/internal/models"
)

// MockProvider is a deterministic stand-in for the real provider. It records
// every message list it receives, which tests use to inspect the exact
// prompt sent.
type MockProvider struct {
	Reply string
	Err   error

	mu    sync.Mutex
	calls [][]models.ChatMessage
}

func NewMockProvider() *MockProvider {
	return &MockProvider{Reply: "Mock response."}
}

func (m *MockProvider) Complete(ctx context.Context, messages []models.ChatMessage) (string, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make([]models.ChatMessage, len(messages))
	copy(snapshot, messages)
	m.calls = append(m.calls, snapshot)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// Calls returns the message lists seen so far, oldest first.
func (m *MockProvider) Calls() [][]models.ChatMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]models.ChatMessage, len(m.calls))
	copy(out, m.calls)
	return out
}
