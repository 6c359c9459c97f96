package ticket

import (
	"errors"
	"io"

	"github.com/bnema/helpdesk-assistant/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

type renderReadyMsg struct{}

type model struct {
	incidents []domain.Incident
	heading   string
	opts      RenderOptions
	styles    styles
	output    string
}

func newModel(heading string, incidents []domain.Incident, opts RenderOptions) model {
	return model{
		incidents: incidents,
		heading:   heading,
		opts:      opts,
		styles:    newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	return func() tea.Msg {
		return renderReadyMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg.(type) {
	case renderReadyMsg:
		m.output = renderView(m.heading, m.incidents, m.opts, m.styles)
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m model) View() string {
	return m.output
}

// RenderSummary draws a single ticket summary.
func RenderSummary(summary domain.TicketSummary, opts RenderOptions) (string, error) {
	return run(newModel("Ticket summary", []domain.Incident{summary.Incident()}, opts))
}

// RenderIncidents draws the extracted incident list.
func RenderIncidents(incidents []domain.Incident, opts RenderOptions) (string, error) {
	return run(newModel("Incidents", incidents, opts))
}

func run(m model) (string, error) {
	p := tea.NewProgram(
		m,
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	finalModel, err := p.Run()
	if err != nil {
		return "", err
	}

	rendered, ok := finalModel.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}

	return rendered.View(), nil
}
