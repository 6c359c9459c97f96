package application

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bnema/helpdesk-assistant/internal/domain"
	"github.com/bnema/helpdesk-assistant/internal/ports"
	"github.com/rs/zerolog"
)

const recentMessagesLimit = 5

type AssistantService struct {
	gateway     ports.AssistantGateway
	cache       *ConversationCache
	awaiter     *RunAwaiter
	assistantID string
	logger      zerolog.Logger
}

func NewAssistantService(gateway ports.AssistantGateway, cache *ConversationCache, awaiter *RunAwaiter, assistantID string, logger zerolog.Logger) *AssistantService {
	if cache == nil {
		cache = NewConversationCache(DefaultConversationCacheCapacity, DefaultConversationEvictBatch)
	}
	if awaiter == nil {
		awaiter = NewRunAwaiter(gateway, WithAwaiterLogger(logger))
	}

	return &AssistantService{
		gateway:     gateway,
		cache:       cache,
		awaiter:     awaiter,
		assistantID: strings.TrimSpace(assistantID),
		logger:      logger,
	}
}

// Ask answers a user question. Greetings and help desk contact requests are
// answered locally; everything else goes through the remote assistant on
// the session's conversation, retrying once on a fresh conversation when
// the run fails or times out.
func (s *AssistantService) Ask(ctx context.Context, req AskRequest) (string, error) {
	if req.AllowGreeting && req.Image == "" && domain.IsPureGreeting(req.Question) {
		return domain.GreetingReply, nil
	}
	if domain.IsHelpdeskContactRequest(req.Question) {
		return domain.HelpdeskContact, nil
	}
	if s.assistantID == "" {
		return "", fmt.Errorf("%w: ASSISTANT_ID is not set", domain.ErrConfiguration)
	}

	logger := s.logger.With().Str("session_id", req.SessionID).Logger()

	conversation, err := s.openConversation(ctx, req.SessionID)
	if err != nil {
		return "", err
	}

	if req.Image != "" {
		logger.Warn().
			Int("image_bytes", len(req.Image)).
			Msg("image received but assistant threads do not support it, ignoring image")
	}

	question := req.Question
	if strings.TrimSpace(question) == "" {
		question = domain.DefaultQuestion
	}

	conversation, err = retryWithFreshResource(ctx, conversation,
		func(ctx context.Context, conversation domain.ConversationID) error {
			return s.exchange(ctx, conversation, question)
		},
		domain.IsRecoverable,
		func(ctx context.Context, failed domain.ConversationID, cause error) (domain.ConversationID, error) {
			logger.Warn().Err(cause).
				Str("conversation_id", string(failed)).
				Msg("conversation failed, retrying on a new conversation")
			return s.replaceConversation(ctx, req.SessionID, failed)
		},
	)
	if err != nil {
		return "", err
	}

	return s.readAnswer(ctx, conversation)
}

// ClearSession drops the cached conversation for sessionID. An empty
// sessionID clears every session.
func (s *AssistantService) ClearSession(sessionID string) {
	if sessionID == "" {
		s.cache.ClearAll()
		return
	}
	s.cache.Clear(sessionID)
}

func (s *AssistantService) ClearAllSessions() {
	s.cache.ClearAll()
}

func (s *AssistantService) openConversation(ctx context.Context, sessionID string) (domain.ConversationID, error) {
	if sessionID == "" {
		conversation, err := s.gateway.CreateConversation(ctx)
		if err != nil {
			return "", fmt.Errorf("create conversation: %w", err)
		}
		return conversation, nil
	}

	conversation, created, err := s.cache.GetOrCreate(ctx, sessionID, s.gateway.CreateConversation)
	if err != nil {
		return "", fmt.Errorf("create conversation for session %q: %w", sessionID, err)
	}
	s.logger.Debug().
		Str("session_id", sessionID).
		Str("conversation_id", string(conversation)).
		Bool("created", created).
		Msg("conversation resolved")

	return conversation, nil
}

func (s *AssistantService) replaceConversation(ctx context.Context, sessionID string, failed domain.ConversationID) (domain.ConversationID, error) {
	if sessionID == "" {
		conversation, err := s.gateway.CreateConversation(ctx)
		if err != nil {
			return "", fmt.Errorf("create conversation: %w", err)
		}
		return conversation, nil
	}

	conversation, created, err := s.cache.Replace(ctx, sessionID, failed, s.gateway.CreateConversation)
	if err != nil {
		return "", fmt.Errorf("replace conversation for session %q: %w", sessionID, err)
	}
	s.logger.Debug().
		Str("session_id", sessionID).
		Str("conversation_id", string(conversation)).
		Bool("created", created).
		Msg("conversation replaced")

	return conversation, nil
}

func (s *AssistantService) exchange(ctx context.Context, conversation domain.ConversationID, question string) error {
	if err := s.gateway.AppendUserMessage(ctx, conversation, question); err != nil {
		return fmt.Errorf("append message: %w", err)
	}

	run, err := s.gateway.CreateRun(ctx, conversation, s.assistantID)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}

	if err := s.awaiter.Await(ctx, conversation, run.ID); err != nil {
		return fmt.Errorf("await run %s: %w", run.ID, err)
	}

	return nil
}

func (s *AssistantService) readAnswer(ctx context.Context, conversation domain.ConversationID) (string, error) {
	messages, err := s.gateway.ListMessages(ctx, conversation, recentMessagesLimit)
	if err != nil {
		return "", fmt.Errorf("list messages: %w", err)
	}

	for _, message := range messages {
		if message.Role != domain.RoleAssistant {
			continue
		}

		answer := domain.StripCitations(strings.TrimSpace(strings.Join(message.Texts, "\n")))
		if utf8.RuneCountInString(answer) < domain.MinAnswerRunes {
			return domain.UselessAnswerReply, nil
		}
		return answer, nil
	}

	return domain.NoAnswerReply, nil
}
