package ticket

import (
	"fmt"
	"strings"

	"github.com/bnema/helpdesk-assistant/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const defaultWidth = 80

type RenderOptions struct {
	// Width wraps descriptions; zero means 80 columns.
	Width int
}

func renderView(heading string, incidents []domain.Incident, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render(heading),
		s.header.Render(countLabel(len(incidents))),
	}

	if len(incidents) == 0 {
		lines = append(lines, s.empty.Render("No incidents found."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	width := opts.Width
	if width <= 0 {
		width = defaultWidth
	}

	for i, incident := range incidents {
		lines = append(lines, s.section.Render(renderIncident(i+1, incident, width, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderIncident(position int, incident domain.Incident, width int, s styles) string {
	title := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.index.Render(fmt.Sprintf("%d.", position)),
		" ",
		s.incident.Render(incident.Title),
	)

	description := strings.TrimSpace(incident.Description)
	if description == "" {
		return title
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		s.description.Width(width).Render(description),
	)
}

func countLabel(n int) string {
	if n == 1 {
		return "1 incident"
	}
	return fmt.Sprintf("%d incidents", n)
}
