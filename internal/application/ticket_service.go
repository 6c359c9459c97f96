package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/bnema/helpdesk-assistant/internal/domain"
	"github.com/bnema/helpdesk-assistant/internal/ports"
	"github.com/rs/zerolog"
)

const (
	DefaultSummaryModel = "gpt-4o-mini"

	summaryHistoryTurns  = 10
	incidentHistoryTurns = 15

	summaryPrompt = "Resume en 2 líneas:\n" +
		"1) Título breve (max 100 chars)\n" +
		"2) Descripción del problema"

	incidentsPrompt = "Analiza y devuelve JSON con lista 'incidents'.\n" +
		"Cada item: {title: string, description: string}\n" +
		"Máximo 5 incidentes. Solo si ameritan ticket de soporte TI."
)

var (
	errEmptyCompletion = errors.New("empty completion")
	errNoIncidents     = errors.New("no usable incidents in reply")
)

// TicketService turns a chat transcript into ticket material with one-shot
// completions. None of its methods fail: remote errors degrade to a
// fallback summary.
type TicketService struct {
	completions ports.CompletionGateway
	model       string
	logger      zerolog.Logger
}

func NewTicketService(completions ports.CompletionGateway, model string, logger zerolog.Logger) *TicketService {
	if strings.TrimSpace(model) == "" {
		model = DefaultSummaryModel
	}

	return &TicketService{completions: completions, model: model, logger: logger}
}

func (s *TicketService) Summarize(ctx context.Context, history []domain.ChatTurn) domain.TicketSummary {
	text, err := s.completions.Complete(ctx, ports.CompletionRequest{
		Model:       s.model,
		Messages:    withSystemPrompt(summaryPrompt, domain.LastTurns(history, summaryHistoryTurns)),
		Temperature: 0.3,
		MaxTokens:   200,
	})
	if err == nil && strings.TrimSpace(text) == "" {
		err = errEmptyCompletion
	}
	if err != nil {
		s.logger.Warn().Err(err).Msg("ticket summary failed, using fallback")
		return domain.FallbackSummary(err)
	}

	return domain.ParseSummary(text)
}

func (s *TicketService) ExtractIncidents(ctx context.Context, history []domain.ChatTurn) []domain.Incident {
	recent := domain.LastTurns(history, incidentHistoryTurns)

	incidents, err := s.extract(ctx, recent)
	if err != nil {
		s.logger.Warn().Err(err).Msg("incident extraction failed, falling back to summary")
		return []domain.Incident{s.Summarize(ctx, recent).Incident()}
	}

	return incidents
}

func (s *TicketService) extract(ctx context.Context, history []domain.ChatTurn) ([]domain.Incident, error) {
	text, err := s.completions.Complete(ctx, ports.CompletionRequest{
		Model:       s.model,
		Messages:    withSystemPrompt(incidentsPrompt, history),
		Temperature: 0.2,
		MaxTokens:   500,
		JSONObject:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("request incidents: %w", err)
	}

	incidents, err := parseIncidents(text)
	if err != nil {
		return nil, err
	}
	if len(incidents) == 0 {
		return nil, errNoIncidents
	}

	return incidents, nil
}

type incidentsPayload struct {
	Incidents []json.RawMessage `json:"incidents"`
}

// parseIncidents keeps the first MaxIncidents items and then drops the ones
// without a title, so fewer than MaxIncidents may survive.
func parseIncidents(text string) ([]domain.Incident, error) {
	var payload incidentsPayload
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &payload); err != nil {
		return nil, fmt.Errorf("decode incidents: %w", err)
	}

	raw := payload.Incidents
	if len(raw) > domain.MaxIncidents {
		raw = raw[:domain.MaxIncidents]
	}

	incidents := make([]domain.Incident, 0, len(raw))
	for _, item := range raw {
		var fields map[string]any
		if err := json.Unmarshal(item, &fields); err != nil {
			continue
		}

		title := fieldString(fields["title"])
		if title == "" {
			continue
		}
		incidents = append(incidents, domain.Incident{
			Title:       domain.TruncateRunes(title, domain.MaxIncidentTitleRunes),
			Description: domain.TruncateRunes(fieldString(fields["description"]), domain.MaxIncidentDescRunes),
		})
	}

	return incidents, nil
}

func fieldString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func withSystemPrompt(prompt string, history []domain.ChatTurn) []domain.ChatTurn {
	messages := make([]domain.ChatTurn, 0, len(history)+1)
	messages = append(messages, domain.ChatTurn{Role: domain.RoleSystem, Content: prompt})
	return append(messages, history...)
}
