package output

import (
	"context"

	"voice-relay/internal/domain/entity"
)

type LLMPort interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type ChatRequest struct {
	Messages    []entity.Message
	MaxTokens   int
	Temperature float32
}

type ChatResponse struct {
	Message entity.Message
}
