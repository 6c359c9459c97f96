package application

import "github.com/bnema/helpdesk-assistant/internal/domain"

type AskRequest struct {
	Question string
	// History is accepted for callers that keep a local transcript. The
	// remote conversation already holds the context, so it is not sent.
	History       []domain.ChatTurn
	AllowGreeting bool
	SessionID     string
	// Image is a base64 data URI. Assistant threads cannot take it, so it
	// is logged and dropped.
	Image string
}
