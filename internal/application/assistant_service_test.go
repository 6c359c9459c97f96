package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bnema/helpdesk-assistant/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAssistant(gateway *fakeGateway) (*AssistantService, *ConversationCache) {
	cache := NewConversationCache(0, 0)
	awaiter := NewRunAwaiter(gateway, WithAwaiterClock(newFakeClock()), WithRunTimeout(3*time.Second))
	return NewAssistantService(gateway, cache, awaiter, "asst_123", zerolog.Nop()), cache
}

func assistantReply(texts ...string) []domain.Message {
	return []domain.Message{
		{ID: "msg_2", Role: domain.RoleAssistant, Texts: texts},
		{ID: "msg_1", Role: domain.RoleUser, Texts: []string{"pregunta"}},
	}
}

func TestAskGreetingMakesNoRemoteCall(t *testing.T) {
	t.Parallel()

	gateway := newFakeGateway()
	svc, _ := newTestAssistant(gateway)

	answer, err := svc.Ask(context.Background(), AskRequest{Question: "hola", AllowGreeting: true})
	require.NoError(t, err)
	assert.Equal(t, domain.GreetingReply, answer)
	assert.Zero(t, gateway.remoteCalls())
}

func TestAskHelpdeskContactMakesNoRemoteCall(t *testing.T) {
	t.Parallel()

	gateway := newFakeGateway()
	svc, _ := newTestAssistant(gateway)

	answer, err := svc.Ask(context.Background(), AskRequest{Question: "necesito el teléfono del helpdesk", SessionID: "s-1"})
	require.NoError(t, err)
	assert.Equal(t, domain.HelpdeskContact, answer)
	assert.Zero(t, gateway.remoteCalls())
}

func TestAskGreetingWithImageOrDisallowedGoesRemote(t *testing.T) {
	t.Parallel()

	for name, req := range map[string]AskRequest{
		"image attached":    {Question: "hola", AllowGreeting: true, Image: "data:image/png;base64,AAAA"},
		"greeting disabled": {Question: "hola", AllowGreeting: false},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			gateway := newFakeGateway()
			gateway.replies["thread_1"] = assistantReply("¿En qué te ayudo hoy?")
			svc, _ := newTestAssistant(gateway)

			answer, err := svc.Ask(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, "¿En qué te ayudo hoy?", answer)
			require.Len(t, gateway.appended, 1)
			assert.Equal(t, "hola", gateway.appended[0].text)
		})
	}
}

func TestAskReusesSessionConversation(t *testing.T) {
	t.Parallel()

	gateway := newFakeGateway()
	gateway.replies["thread_1"] = assistantReply("Reinicia el router [1].")
	svc, cache := newTestAssistant(gateway)

	for i := 0; i < 2; i++ {
		answer, err := svc.Ask(context.Background(), AskRequest{Question: "no tengo internet", SessionID: "s-1"})
		require.NoError(t, err)
		assert.Equal(t, "Reinicia el router.", answer)
	}

	assert.Equal(t, 1, gateway.conversations)
	conversation, ok := cache.Lookup("s-1")
	require.True(t, ok)
	assert.Equal(t, domain.ConversationID("thread_1"), conversation)
	assert.Len(t, gateway.appended, 2)
}

func TestAskWithoutSessionCreatesEphemeralConversation(t *testing.T) {
	t.Parallel()

	gateway := newFakeGateway()
	gateway.replies["thread_1"] = assistantReply("Primera respuesta")
	gateway.replies["thread_2"] = assistantReply("Segunda respuesta")
	svc, cache := newTestAssistant(gateway)

	first, err := svc.Ask(context.Background(), AskRequest{Question: "vpn caída"})
	require.NoError(t, err)
	second, err := svc.Ask(context.Background(), AskRequest{Question: "vpn caída"})
	require.NoError(t, err)

	assert.Equal(t, "Primera respuesta", first)
	assert.Equal(t, "Segunda respuesta", second)
	assert.Equal(t, 2, gateway.conversations)
	assert.Zero(t, cache.Len())
}

func TestAskRetriesOnceOnNewConversation(t *testing.T) {
	t.Parallel()

	gateway := newFakeGateway()
	gateway.statuses = [][]domain.RunStatus{
		{domain.RunStatusFailed},
		{domain.RunStatusInProgress, domain.RunStatusCompleted},
	}
	gateway.replies["thread_2"] = assistantReply("Respuesta tras reintento")
	svc, cache := newTestAssistant(gateway)

	answer, err := svc.Ask(context.Background(), AskRequest{Question: "outlook no abre", SessionID: "s-1"})
	require.NoError(t, err)
	assert.Equal(t, "Respuesta tras reintento", answer)

	conversation, ok := cache.Lookup("s-1")
	require.True(t, ok)
	assert.Equal(t, domain.ConversationID("thread_2"), conversation)
	require.Len(t, gateway.appended, 2)
	assert.Equal(t, domain.ConversationID("thread_1"), gateway.appended[0].conversation)
	assert.Equal(t, domain.ConversationID("thread_2"), gateway.appended[1].conversation)
	assert.Equal(t, "outlook no abre", gateway.appended[1].text)
}

func TestAskPropagatesSecondFailure(t *testing.T) {
	t.Parallel()

	gateway := newFakeGateway()
	gateway.statuses = [][]domain.RunStatus{
		{domain.RunStatusRequiresAction},
		{domain.RunStatusInProgress},
	}
	svc, _ := newTestAssistant(gateway)

	_, err := svc.Ask(context.Background(), AskRequest{Question: "instalar office", SessionID: "s-1"})
	require.ErrorIs(t, err, domain.ErrRunTimeout)
	assert.Len(t, gateway.runs, 2)
	assert.Len(t, gateway.cancels, 1)
	assert.Equal(t, 2, gateway.conversations)
}

func TestAskRetriesWhenConversationRejected(t *testing.T) {
	t.Parallel()

	gateway := newFakeGateway()
	gateway.appendErr = domain.ErrConversationRejected
	gateway.replies["thread_2"] = assistantReply("Conversación nueva")
	svc, _ := newTestAssistant(gateway)

	answer, err := svc.Ask(context.Background(), AskRequest{Question: "error en SAP", SessionID: "s-1"})
	require.NoError(t, err)
	assert.Equal(t, "Conversación nueva", answer)
}

func TestAskDoesNotRetryUnrecoverable(t *testing.T) {
	t.Parallel()

	gateway := newFakeGateway()
	transport := errors.New("dial tcp: connection refused")
	gateway.appendErr = transport
	svc, _ := newTestAssistant(gateway)

	_, err := svc.Ask(context.Background(), AskRequest{Question: "error en SAP", SessionID: "s-1"})
	require.ErrorIs(t, err, transport)
	assert.Equal(t, 1, gateway.conversations)
	assert.Empty(t, gateway.runs)
}

func TestAskRequiresAssistantID(t *testing.T) {
	t.Parallel()

	gateway := newFakeGateway()
	svc := NewAssistantService(gateway, nil, nil, "  ", zerolog.Nop())

	_, err := svc.Ask(context.Background(), AskRequest{Question: "mi laptop no enciende"})
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Zero(t, gateway.remoteCalls())
}

func TestAskEmptyQuestionSendsDefault(t *testing.T) {
	t.Parallel()

	gateway := newFakeGateway()
	gateway.replies["thread_1"] = assistantReply("Hola, ¿qué necesitas?")
	svc, _ := newTestAssistant(gateway)

	_, err := svc.Ask(context.Background(), AskRequest{Question: "", AllowGreeting: true})
	require.NoError(t, err)
	require.Len(t, gateway.appended, 1)
	assert.Equal(t, domain.DefaultQuestion, gateway.appended[0].text)
}

func TestAskFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		messages []domain.Message
		want     string
	}{
		{name: "no assistant message", messages: []domain.Message{{Role: domain.RoleUser, Texts: []string{"hola?"}}}, want: domain.NoAnswerReply},
		{name: "too short", messages: assistantReply("ok [1]"), want: domain.UselessAnswerReply},
		{name: "only citations", messages: assistantReply("【4:0†kb.pdf】"), want: domain.UselessAnswerReply},
		{name: "joins text segments", messages: assistantReply("Paso uno", "Paso dos"), want: "Paso uno\nPaso dos"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gateway := newFakeGateway()
			gateway.replies["thread_1"] = tt.messages
			svc, _ := newTestAssistant(gateway)

			answer, err := svc.Ask(context.Background(), AskRequest{Question: "problema con teams"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, answer)
		})
	}
}

func TestClearSession(t *testing.T) {
	t.Parallel()

	svc, cache := newTestAssistant(newFakeGateway())
	cache.Put("a", "thread-a")
	cache.Put("b", "thread-b")

	svc.ClearSession("a")
	assert.Equal(t, 1, cache.Len())

	svc.ClearSession("")
	assert.Zero(t, cache.Len())
}

func TestClearAllSessions(t *testing.T) {
	t.Parallel()

	svc, cache := newTestAssistant(newFakeGateway())
	cache.Put("a", "thread-a")
	cache.Put("b", "thread-b")

	svc.ClearAllSessions()
	assert.Zero(t, cache.Len())
}

func TestAskConcurrentRetryAndOpenShareOneConversation(t *testing.T) {
	t.Parallel()

	gateway := newFakeGateway()
	gateway.createDelay = 30 * time.Millisecond
	gateway.statuses = [][]domain.RunStatus{{domain.RunStatusFailed}}
	gateway.replies["thread_seed"] = assistantReply("Respuesta en la conversación original")
	gateway.replies["thread_1"] = assistantReply("Respuesta en la conversación nueva")

	svc, cache := newTestAssistant(gateway)
	cache.Put("s-1", "thread_seed")

	var wg sync.WaitGroup
	answers := make([]string, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		answer, err := svc.Ask(context.Background(), AskRequest{Question: "la vpn no conecta", SessionID: "s-1"})
		assert.NoError(t, err)
		answers[0] = answer
	}()

	require.Eventually(t, func() bool { return gateway.runCount() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	wg.Add(1)
	go func() {
		defer wg.Done()
		answer, err := svc.Ask(context.Background(), AskRequest{Question: "y el correo tampoco", SessionID: "s-1"})
		assert.NoError(t, err)
		answers[1] = answer
	}()
	wg.Wait()

	assert.Equal(t, 1, gateway.createdConversations())
	cached, ok := cache.Lookup("s-1")
	require.True(t, ok)
	assert.Equal(t, domain.ConversationID("thread_1"), cached)
	assert.Equal(t, "Respuesta en la conversación nueva", answers[0])
	assert.NotEmpty(t, answers[1])
}
