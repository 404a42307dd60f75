package providers

import (
	"context"

	"resync/internal/models"
)

// CompletionParams are fixed per deployment; requests cannot tune them.
type CompletionParams struct {
	Model       string
	Temperature float32
	MaxTokens   int
	TopP        float32
}

// ChatProvider is the chat-completion boundary: an ordered message list in,
// a single text completion out.
type ChatProvider interface {
	Complete(ctx context.Context, messages []models.ChatMessage) (string, error)
}
