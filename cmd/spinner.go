package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Runs usually finish within a few seconds; past this the view shows how
// long the assistant has been working.
const showElapsedAfter = 3 * time.Second

type workDoneMsg struct {
	err error
}

type waitCancelledMsg struct {
	err error
}

type waitSpinnerModel struct {
	spinner spinner.Model
	label   string
	work    tea.Cmd
	waitCtx tea.Cmd
	started time.Time
	now     func() time.Time
	err     error
	done    bool
}

func newWaitSpinnerModel(ctx context.Context, label string, work tea.Cmd, now func() time.Time) waitSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return waitSpinnerModel{
		spinner: s,
		label:   label,
		work:    work,
		waitCtx: func() tea.Msg {
			<-ctx.Done()
			return waitCancelledMsg{err: ctx.Err()}
		},
		started: now(),
		now:     now,
	}
}

func (m waitSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.work, m.waitCtx)
}

func (m waitSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.done {
		return m, nil
	}

	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case workDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case waitCancelledMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.done = true
			m.err = context.Canceled
			return m, tea.Quit
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m waitSpinnerModel) View() string {
	if m.done {
		return ""
	}

	elapsed := m.now().Sub(m.started)
	if elapsed < showElapsedAfter {
		return fmt.Sprintf("%s %s", m.spinner.View(), m.label)
	}
	return fmt.Sprintf("%s %s (%ds)", m.spinner.View(), m.label, int(elapsed.Seconds()))
}

// runWithSpinner shows label on output while work runs. Cancelling ctx ends
// the spinner at once with ctx's error; work is expected to observe the same
// ctx and return on its own.
func runWithSpinner(ctx context.Context, output io.Writer, label string, work func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workCmd := func() tea.Msg {
		return workDoneMsg{err: work(ctx)}
	}

	p := tea.NewProgram(
		newWaitSpinnerModel(ctx, label, workCmd, time.Now),
		tea.WithInput(nil),
		tea.WithOutput(output),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(waitSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
