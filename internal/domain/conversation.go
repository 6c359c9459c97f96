package domain

type ConversationID string

type RunID string

type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCancelling     RunStatus = "cancelling"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusFailed         RunStatus = "failed"
	RunStatusExpired        RunStatus = "expired"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusIncomplete     RunStatus = "incomplete"
)

func (s RunStatus) IsFailure() bool {
	switch s {
	case RunStatusFailed, RunStatusExpired, RunStatusCancelled, RunStatusIncomplete:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether polling should stop at s. requires_action is
// terminal here because no tool handler exists.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusRequiresAction || s.IsFailure()
}

type Run struct {
	ID        RunID
	Status    RunStatus
	LastError string
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

type Message struct {
	ID    string
	Role  string
	Texts []string
}

type ChatTurn struct {
	Role    string `json:"role" toml:"role"`
	Content string `json:"content" toml:"content"`
}

// LastTurns returns at most n trailing turns of history.
func LastTurns(history []ChatTurn, n int) []ChatTurn {
	if n <= 0 {
		return nil
	}
	if len(history) > n {
		return history[len(history)-n:]
	}
	return history
}
