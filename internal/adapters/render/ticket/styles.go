package ticket

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title       lipgloss.Style
	header      lipgloss.Style
	index       lipgloss.Style
	incident    lipgloss.Style
	description lipgloss.Style
	section     lipgloss.Style
	empty       lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:       lipgloss.NewStyle().Bold(true),
		header:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		index:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		incident:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		description: lipgloss.NewStyle().Foreground(lipgloss.Color("252")).PaddingLeft(3),
		section:     lipgloss.NewStyle().MarginTop(1),
		empty:       lipgloss.NewStyle().Faint(true),
	}
}
