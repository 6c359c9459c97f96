package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/helpdesk-assistant/internal/domain"
	"github.com/bnema/helpdesk-assistant/internal/ports"
)

// fakeGateway scripts run statuses per run and records every remote call.
type fakeGateway struct {
	mu sync.Mutex

	// statuses is consumed per run in creation order; each run reports its
	// slice of statuses one per retrieve and then repeats the last one.
	statuses [][]domain.RunStatus
	lastErr  string
	replies  map[domain.ConversationID][]domain.Message

	createConversationErr error
	appendErr             error
	createDelay           time.Duration

	conversations int
	appended      []appendedMessage
	runs          []domain.Run
	retrieves     map[domain.RunID]int
	cancels       []domain.RunID
	listed        int
}

type appendedMessage struct {
	conversation domain.ConversationID
	text         string
}

var _ ports.AssistantGateway = (*fakeGateway)(nil)

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		replies:   map[domain.ConversationID][]domain.Message{},
		retrieves: map[domain.RunID]int{},
	}
}

func (g *fakeGateway) CreateConversation(_ context.Context) (domain.ConversationID, error) {
	if g.createDelay > 0 {
		time.Sleep(g.createDelay)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.createConversationErr != nil {
		return "", g.createConversationErr
	}
	g.conversations++
	return domain.ConversationID(fmt.Sprintf("thread_%d", g.conversations)), nil
}

func (g *fakeGateway) AppendUserMessage(_ context.Context, conversation domain.ConversationID, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.appendErr != nil {
		err := g.appendErr
		g.appendErr = nil
		return err
	}
	g.appended = append(g.appended, appendedMessage{conversation: conversation, text: text})
	return nil
}

func (g *fakeGateway) CreateRun(_ context.Context, conversation domain.ConversationID, _ string) (domain.Run, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	run := domain.Run{ID: domain.RunID(fmt.Sprintf("run_%d", len(g.runs)+1)), Status: domain.RunStatusQueued}
	g.runs = append(g.runs, run)
	return run, nil
}

func (g *fakeGateway) RetrieveRun(_ context.Context, _ domain.ConversationID, run domain.RunID) (domain.Run, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	index := -1
	for i, r := range g.runs {
		if r.ID == run {
			index = i
		}
	}
	if index < 0 {
		index = 0
	}

	statuses := []domain.RunStatus{domain.RunStatusCompleted}
	if index < len(g.statuses) {
		statuses = g.statuses[index]
	}

	poll := g.retrieves[run]
	g.retrieves[run] = poll + 1
	if poll >= len(statuses) {
		poll = len(statuses) - 1
	}

	return domain.Run{ID: run, Status: statuses[poll], LastError: g.lastErr}, nil
}

func (g *fakeGateway) CancelRun(_ context.Context, _ domain.ConversationID, run domain.RunID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.cancels = append(g.cancels, run)
	return fmt.Errorf("run %s already finished", run)
}

func (g *fakeGateway) ListMessages(_ context.Context, conversation domain.ConversationID, limit int) ([]domain.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.listed++
	messages := g.replies[conversation]
	if len(messages) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}

func (g *fakeGateway) remoteCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.conversations + len(g.appended) + len(g.runs) + len(g.cancels) + g.listed
}

func (g *fakeGateway) runCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.runs)
}

func (g *fakeGateway) createdConversations() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.conversations
}

// fakeClock advances instantly whenever the awaiter sleeps.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
	c.slept = append(c.slept, d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func (c *fakeClock) totalSlept() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total time.Duration
	for _, d := range c.slept {
		total += d
	}
	return total
}

type fakeCompletions struct {
	mu       sync.Mutex
	replies  []string
	err      error
	requests []ports.CompletionRequest
}

var _ ports.CompletionGateway = (*fakeCompletions)(nil)

func (f *fakeCompletions) Complete(_ context.Context, req ports.CompletionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	if len(f.replies) == 0 {
		return "", nil
	}
	reply := f.replies[0]
	f.replies = f.replies[1:]
	return reply, nil
}
