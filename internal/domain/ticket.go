package domain

import "strings"

const (
	MaxIncidents              = 5
	MaxIncidentTitleRunes     = 120
	MaxIncidentDescRunes      = 500
	MaxSummaryTitleRunes      = 100
	FallbackTicketTitle       = "Incidente reportado"
	fallbackDescriptionPrefix = "Error generando resumen: "
)

type Incident struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type TicketSummary struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s TicketSummary) Incident() Incident {
	return Incident{Title: s.Title, Description: s.Description}
}

func FallbackSummary(err error) TicketSummary {
	return TicketSummary{
		Title:       FallbackTicketTitle,
		Description: fallbackDescriptionPrefix + err.Error(),
	}
}

// TruncateRunes cuts s to at most n runes.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// ParseSummary splits a two-line completion into title and description.
func ParseSummary(text string) TicketSummary {
	text = strings.TrimSpace(text)
	title, rest, found := strings.Cut(text, "\n")
	if !found {
		return TicketSummary{
			Title:       strings.TrimSpace(TruncateRunes(text, MaxSummaryTitleRunes)),
			Description: text,
		}
	}
	return TicketSummary{
		Title:       TruncateRunes(strings.TrimSpace(title), MaxSummaryTitleRunes),
		Description: strings.TrimSpace(rest),
	}
}
