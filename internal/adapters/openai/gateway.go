package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bnema/helpdesk-assistant/internal/domain"
	"github.com/bnema/helpdesk-assistant/internal/ports"
	goopenai "github.com/sashabaranov/go-openai"
)

const messageContentText = "text"

var errNoChoices = errors.New("completion returned no choices")

// Gateway adapts the Assistants and Chat Completions endpoints to the
// application ports.
type Gateway struct {
	provider *Provider
}

var (
	_ ports.AssistantGateway  = (*Gateway)(nil)
	_ ports.CompletionGateway = (*Gateway)(nil)
)

func NewGateway(provider *Provider) *Gateway {
	return &Gateway{provider: provider}
}

func (g *Gateway) CreateConversation(ctx context.Context) (domain.ConversationID, error) {
	client, err := g.provider.Client(ctx)
	if err != nil {
		return "", err
	}

	thread, err := client.CreateThread(ctx, goopenai.ThreadRequest{})
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	return domain.ConversationID(thread.ID), nil
}

func (g *Gateway) AppendUserMessage(ctx context.Context, conversation domain.ConversationID, text string) error {
	client, err := g.provider.Client(ctx)
	if err != nil {
		return err
	}

	_, err = client.CreateMessage(ctx, string(conversation), goopenai.MessageRequest{
		Role:    goopenai.ChatMessageRoleUser,
		Content: text,
	})
	if err != nil {
		return conversationError("create message", err)
	}
	return nil
}

func (g *Gateway) CreateRun(ctx context.Context, conversation domain.ConversationID, assistantID string) (domain.Run, error) {
	client, err := g.provider.Client(ctx)
	if err != nil {
		return domain.Run{}, err
	}

	run, err := client.CreateRun(ctx, string(conversation), goopenai.RunRequest{AssistantID: assistantID})
	if err != nil {
		return domain.Run{}, conversationError("create run", err)
	}
	return toRun(run), nil
}

func (g *Gateway) RetrieveRun(ctx context.Context, conversation domain.ConversationID, run domain.RunID) (domain.Run, error) {
	client, err := g.provider.Client(ctx)
	if err != nil {
		return domain.Run{}, err
	}

	snapshot, err := client.RetrieveRun(ctx, string(conversation), string(run))
	if err != nil {
		return domain.Run{}, fmt.Errorf("retrieve run %s: %w", run, err)
	}
	return toRun(snapshot), nil
}

func (g *Gateway) CancelRun(ctx context.Context, conversation domain.ConversationID, run domain.RunID) error {
	client, err := g.provider.Client(ctx)
	if err != nil {
		return err
	}

	if _, err := client.CancelRun(ctx, string(conversation), string(run)); err != nil {
		return fmt.Errorf("cancel run %s: %w", run, err)
	}
	return nil
}

func (g *Gateway) ListMessages(ctx context.Context, conversation domain.ConversationID, limit int) ([]domain.Message, error) {
	client, err := g.provider.Client(ctx)
	if err != nil {
		return nil, err
	}

	order := "desc"
	list, err := client.ListMessage(ctx, string(conversation), &limit, &order, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list thread messages: %w", err)
	}

	messages := make([]domain.Message, 0, len(list.Messages))
	for _, message := range list.Messages {
		messages = append(messages, toMessage(message))
	}
	return messages, nil
}

func (g *Gateway) Complete(ctx context.Context, req ports.CompletionRequest) (string, error) {
	client, err := g.provider.Client(ctx)
	if err != nil {
		return "", err
	}

	messages := make([]goopenai.ChatCompletionMessage, 0, len(req.Messages))
	for _, turn := range req.Messages {
		messages = append(messages, goopenai.ChatCompletionMessage{Role: turn.Role, Content: turn.Content})
	}

	request := goopenai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONObject {
		request.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %w", domain.ErrRemoteCall, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: %w", domain.ErrRemoteCall, errNoChoices)
	}
	return resp.Choices[0].Message.Content, nil
}

func toRun(run goopenai.Run) domain.Run {
	return domain.Run{
		ID:        domain.RunID(run.ID),
		Status:    domain.RunStatus(run.Status),
		LastError: lastErrorDetail(run.LastError),
	}
}

func lastErrorDetail(lastErr *goopenai.RunLastError) string {
	if lastErr == nil {
		return ""
	}
	if lastErr.Code == "" {
		return lastErr.Message
	}
	return fmt.Sprintf("%s: %s", lastErr.Code, lastErr.Message)
}

func toMessage(message goopenai.Message) domain.Message {
	texts := make([]string, 0, len(message.Content))
	for _, content := range message.Content {
		if content.Type != messageContentText || content.Text == nil || content.Text.Value == "" {
			continue
		}
		texts = append(texts, content.Text.Value)
	}

	return domain.Message{ID: message.ID, Role: message.Role, Texts: texts}
}

// conversationError marks thread-scoped rejections (busy thread, unknown
// thread) so the orchestrator can retry on a fresh conversation.
func conversationError(op string, err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusBadRequest, http.StatusNotFound, http.StatusConflict:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrConversationRejected, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
