package application

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/bnema/helpdesk-assistant/internal/domain"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultConversationCacheCapacity = 100
	DefaultConversationEvictBatch    = 20

	createConversationTimeout = 30 * time.Second
)

type conversationEntry struct {
	sessionID    string
	conversation domain.ConversationID
}

// ConversationCache maps session ids to remote conversations. It is bounded
// by insertion order, not recency: once it grows past capacity the oldest
// inserted entries are dropped in one batch even if they were used recently.
type ConversationCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // oldest insert at front
	capacity   int
	evictBatch int

	creating singleflight.Group
}

func NewConversationCache(capacity, evictBatch int) *ConversationCache {
	if capacity <= 0 {
		capacity = DefaultConversationCacheCapacity
	}
	if evictBatch <= 0 {
		evictBatch = DefaultConversationEvictBatch
	}

	return &ConversationCache{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		capacity:   capacity,
		evictBatch: evictBatch,
	}
}

// GetOrCreate returns the conversation cached for sessionID, calling create
// when there is none. Concurrent callers for the same uncached session share
// a single create call, which runs detached from the first caller's
// cancellation so the callers waiting on it are not failed by it. The bool
// result reports whether this call created it.
func (c *ConversationCache) GetOrCreate(ctx context.Context, sessionID string, create func(context.Context) (domain.ConversationID, error)) (domain.ConversationID, bool, error) {
	if conversation, ok := c.Lookup(sessionID); ok {
		return conversation, false, nil
	}

	created := false
	value, err, _ := c.creating.Do(sessionID, func() (any, error) {
		if conversation, ok := c.Lookup(sessionID); ok {
			return conversation, nil
		}

		conversation, err := c.createDetached(ctx, create)
		if err != nil {
			return domain.ConversationID(""), err
		}
		c.Put(sessionID, conversation)
		created = true
		return conversation, nil
	})
	if err != nil {
		return "", false, err
	}

	return value.(domain.ConversationID), created, nil
}

// Replace swaps out failed for a new conversation. It shares the per-session
// flight with GetOrCreate, and it only creates when the session still maps to
// failed or to nothing. When another caller already replaced it, that
// conversation is returned and created is false.
func (c *ConversationCache) Replace(ctx context.Context, sessionID string, failed domain.ConversationID, create func(context.Context) (domain.ConversationID, error)) (domain.ConversationID, bool, error) {
	created := false
	value, err, _ := c.creating.Do(sessionID, func() (any, error) {
		if current, ok := c.Lookup(sessionID); ok && current != failed {
			return current, nil
		}
		c.Clear(sessionID)

		conversation, err := c.createDetached(ctx, create)
		if err != nil {
			return domain.ConversationID(""), err
		}
		c.Put(sessionID, conversation)
		created = true
		return conversation, nil
	})
	if err != nil {
		return "", false, err
	}

	return value.(domain.ConversationID), created, nil
}

func (c *ConversationCache) createDetached(ctx context.Context, create func(context.Context) (domain.ConversationID, error)) (domain.ConversationID, error) {
	createCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), createConversationTimeout)
	defer cancel()

	return create(createCtx)
}

func (c *ConversationCache) Lookup(sessionID string) (domain.ConversationID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[sessionID]
	if !ok {
		return "", false
	}
	return elem.Value.(*conversationEntry).conversation, true
}

// Put stores conversation under sessionID. Replacing an existing entry keeps
// its insertion position.
func (c *ConversationCache) Put(sessionID string, conversation domain.ConversationID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[sessionID]; ok {
		elem.Value.(*conversationEntry).conversation = conversation
		return
	}

	c.entries[sessionID] = c.order.PushBack(&conversationEntry{sessionID: sessionID, conversation: conversation})
	if c.order.Len() > c.capacity {
		c.evictOldestLocked(c.evictBatch)
	}
}

func (c *ConversationCache) Clear(sessionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[sessionID]
	if !ok {
		return
	}
	c.order.Remove(elem)
	delete(c.entries, sessionID)
}

func (c *ConversationCache) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*list.Element)
	c.order.Init()
}

func (c *ConversationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// evictOldestLocked must be called with mu held.
func (c *ConversationCache) evictOldestLocked(n int) {
	for i := 0; i < n; i++ {
		front := c.order.Front()
		if front == nil {
			return
		}
		c.order.Remove(front)
		delete(c.entries, front.Value.(*conversationEntry).sessionID)
	}
}
