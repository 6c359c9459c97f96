package ports

import (
	"context"

	"github.com/bnema/helpdesk-assistant/internal/domain"
)

type CompletionRequest struct {
	Model       string
	Messages    []domain.ChatTurn
	Temperature float32
	MaxTokens   int
	JSONObject  bool
}

type CompletionGateway interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
