package ports

import (
	"context"

	"github.com/bnema/helpdesk-assistant/internal/domain"
)

type TranscriptRepository interface {
	Load(ctx context.Context, path string) ([]domain.ChatTurn, error)
	Save(ctx context.Context, path string, turns []domain.ChatTurn) error
}
