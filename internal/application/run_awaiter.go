package application

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/helpdesk-assistant/internal/domain"
	"github.com/bnema/helpdesk-assistant/internal/ports"
	"github.com/rs/zerolog"
)

const (
	DefaultRunTimeout = 90 * time.Second
	cancelRunTimeout  = 10 * time.Second
)

// DefaultPollSchedule is the progressive polling schedule. The last
// interval repeats until the run finishes or the deadline passes.
var DefaultPollSchedule = []time.Duration{
	300 * time.Millisecond,
	500 * time.Millisecond,
	700 * time.Millisecond,
	time.Second,
}

type RunAwaiter struct {
	gateway  ports.AssistantGateway
	clock    ports.Clock
	timeout  time.Duration
	schedule []time.Duration
	logger   zerolog.Logger
}

type RunAwaiterOption func(*RunAwaiter)

func WithRunTimeout(timeout time.Duration) RunAwaiterOption {
	return func(a *RunAwaiter) {
		if timeout > 0 {
			a.timeout = timeout
		}
	}
}

func WithPollSchedule(schedule ...time.Duration) RunAwaiterOption {
	return func(a *RunAwaiter) {
		if len(schedule) > 0 {
			a.schedule = append([]time.Duration(nil), schedule...)
		}
	}
}

func WithAwaiterClock(clock ports.Clock) RunAwaiterOption {
	return func(a *RunAwaiter) {
		if clock != nil {
			a.clock = clock
		}
	}
}

func WithAwaiterLogger(logger zerolog.Logger) RunAwaiterOption {
	return func(a *RunAwaiter) {
		a.logger = logger
	}
}

func NewRunAwaiter(gateway ports.AssistantGateway, opts ...RunAwaiterOption) *RunAwaiter {
	a := &RunAwaiter{
		gateway:  gateway,
		clock:    ports.SystemClock{},
		timeout:  DefaultRunTimeout,
		schedule: DefaultPollSchedule,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *RunAwaiter) Timeout() time.Duration {
	return a.timeout
}

// Await polls the run until it completes, fails or exceeds the configured
// timeout.
func (a *RunAwaiter) Await(ctx context.Context, conversation domain.ConversationID, run domain.RunID) error {
	return a.AwaitWithTimeout(ctx, conversation, run, a.timeout)
}

func (a *RunAwaiter) AwaitWithTimeout(ctx context.Context, conversation domain.ConversationID, run domain.RunID, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = a.timeout
	}

	started := a.clock.Now()
	for attempt := 0; ; attempt++ {
		if elapsed := a.clock.Now().Sub(started); elapsed > timeout {
			a.cancel(ctx, conversation, run)
			return fmt.Errorf("%w: no terminal status after %s", domain.ErrRunTimeout, timeout)
		}

		snapshot, err := a.gateway.RetrieveRun(ctx, conversation, run)
		if err != nil {
			return fmt.Errorf("retrieve run: %w", err)
		}

		switch {
		case snapshot.Status == domain.RunStatusCompleted:
			return nil
		case snapshot.Status == domain.RunStatusRequiresAction:
			return domain.ErrUnsupportedAction
		case snapshot.Status.IsFailure():
			return &domain.RunFailedError{Status: snapshot.Status, Detail: snapshot.LastError}
		}

		select {
		case <-ctx.Done():
			a.cancel(ctx, conversation, run)
			return ctx.Err()
		case <-a.clock.After(a.interval(attempt)):
		}
	}
}

func (a *RunAwaiter) interval(attempt int) time.Duration {
	if attempt >= len(a.schedule) {
		return a.schedule[len(a.schedule)-1]
	}
	return a.schedule[attempt]
}

// cancel is best effort: the error from the cancellation itself is dropped.
func (a *RunAwaiter) cancel(ctx context.Context, conversation domain.ConversationID, run domain.RunID) {
	cancelCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), cancelRunTimeout)
	defer stop()

	if err := a.gateway.CancelRun(cancelCtx, conversation, run); err != nil {
		a.logger.Debug().Err(err).
			Str("conversation_id", string(conversation)).
			Str("run_id", string(run)).
			Msg("cancel run failed")
	}
}
