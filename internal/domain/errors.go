package domain

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration        = errors.New("configuration error")
	ErrRunFailed            = errors.New("assistant run failed")
	ErrUnsupportedAction    = errors.New("assistant run requires action but no tool handler is implemented")
	ErrRunTimeout           = errors.New("assistant run timed out")
	ErrConversationRejected = errors.New("conversation rejected by remote service")
	ErrRemoteCall           = errors.New("remote call failed")
	ErrSecretNotFound       = errors.New("secret not found")
)

// RunFailedError reports a run that ended in a failure terminal status.
type RunFailedError struct {
	Status RunStatus
	Detail string
}

func (e *RunFailedError) Error() string {
	detail := e.Detail
	if detail == "" {
		detail = "no details"
	}
	return fmt.Sprintf("assistant run %s: %s", e.Status, detail)
}

func (e *RunFailedError) Unwrap() error {
	return ErrRunFailed
}

// IsRecoverable reports whether err means the conversation is likely
// corrupted and a fresh one should be tried.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrRunFailed) ||
		errors.Is(err, ErrUnsupportedAction) ||
		errors.Is(err, ErrRunTimeout) ||
		errors.Is(err, ErrConversationRejected)
}
