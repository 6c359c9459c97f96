package ports

import (
	"context"

	"github.com/bnema/helpdesk-assistant/internal/domain"
)

// AssistantGateway is the conversational surface of the remote assistant
// service: threads, messages and asynchronous runs.
type AssistantGateway interface {
	CreateConversation(ctx context.Context) (domain.ConversationID, error)
	AppendUserMessage(ctx context.Context, conversation domain.ConversationID, text string) error
	CreateRun(ctx context.Context, conversation domain.ConversationID, assistantID string) (domain.Run, error)
	RetrieveRun(ctx context.Context, conversation domain.ConversationID, run domain.RunID) (domain.Run, error)
	CancelRun(ctx context.Context, conversation domain.ConversationID, run domain.RunID) error
	// ListMessages returns the newest messages first.
	ListMessages(ctx context.Context, conversation domain.ConversationID, limit int) ([]domain.Message, error)
}
