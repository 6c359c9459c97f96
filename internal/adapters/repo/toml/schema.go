package toml

import (
	"fmt"
	"strings"

	"github.com/bnema/helpdesk-assistant/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version int          `toml:"version" json:"version,omitempty"`
	Turns   []turnSchema `toml:"turns" json:"turns"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported transcript schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type turnSchema struct {
	Role    string `toml:"role" json:"role"`
	Content string `toml:"content" json:"content"`
}

func toSchema(turns []domain.ChatTurn) fileSchema {
	file := fileSchema{Version: currentSchemaVersion, Turns: make([]turnSchema, 0, len(turns))}
	for _, turn := range turns {
		file.Turns = append(file.Turns, turnSchema{Role: turn.Role, Content: turn.Content})
	}
	return file
}

func fromSchema(file fileSchema) ([]domain.ChatTurn, error) {
	turns := make([]domain.ChatTurn, 0, len(file.Turns))
	for i, entry := range file.Turns {
		role := strings.ToLower(strings.TrimSpace(entry.Role))
		switch role {
		case domain.RoleUser, domain.RoleAssistant, domain.RoleSystem:
		default:
			return nil, fmt.Errorf("turn %d: unknown role %q", i, entry.Role)
		}
		turns = append(turns, domain.ChatTurn{Role: role, Content: entry.Content})
	}
	return turns, nil
}
