package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/bnema/helpdesk-assistant/internal/adapters/render/ticket"
	"github.com/bnema/helpdesk-assistant/internal/application"
	"github.com/bnema/helpdesk-assistant/internal/domain"
	"github.com/spf13/cobra"
)

const chatHelp = `Commands:
  /reset           start a new conversation
  /ticket          summarize the conversation as a ticket
  /incidents       list the incidents mentioned so far
  /save FILE       write the transcript to FILE (TOML)
  /exit            quit`

type chatSession struct {
	app     *app
	cmd     *cobra.Command
	id      string
	plain   bool
	history []domain.ChatTurn
}

func newChatCmd(app *app) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive help desk conversation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session := &chatSession{app: app, cmd: cmd, id: app.newSessionID(), plain: plain}
			return session.run(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Disable the progress spinner")

	return cmd
}

func (s *chatSession) run(in io.Reader, out io.Writer) error {
	defer s.app.assistant.ClearSession(s.id)

	s.app.logger.Debug().Str("session_id", s.id).Msg("chat session started")
	_, _ = fmt.Fprintln(out, chatHelp)

	scanner := bufio.NewScanner(in)
	for {
		_, _ = fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			quit, err := s.handleCommand(line, out)
			if err != nil {
				_, _ = fmt.Fprintf(out, "error: %v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}

		answer, err := askAssistant(s.cmd, s.app, application.AskRequest{
			Question:      line,
			History:       s.history,
			AllowGreeting: true,
			SessionID:     s.id,
		}, s.plain)
		if err != nil {
			if ctxErr := s.cmd.Context().Err(); ctxErr != nil {
				return ctxErr
			}
			_, _ = fmt.Fprintf(out, "error: %v\n", err)
			continue
		}

		_, _ = fmt.Fprintln(out, answer)
		s.remember(domain.ChatTurn{Role: domain.RoleUser, Content: line}, domain.ChatTurn{Role: domain.RoleAssistant, Content: answer})
	}
}

func (s *chatSession) handleCommand(line string, out io.Writer) (bool, error) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/exit", "/quit":
		return true, nil
	case "/reset":
		s.app.assistant.ClearSession(s.id)
		s.history = nil
		_, _ = fmt.Fprintln(out, "Conversation reset.")
		return false, nil
	case "/ticket":
		rendered, err := s.app.renderSummary(s.app.tickets.Summarize(s.cmd.Context(), s.history), ticket.RenderOptions{})
		if err != nil {
			return false, err
		}
		_, _ = fmt.Fprintln(out, rendered)
		return false, nil
	case "/incidents":
		rendered, err := s.app.renderIncidents(s.app.tickets.ExtractIncidents(s.cmd.Context(), s.history), ticket.RenderOptions{})
		if err != nil {
			return false, err
		}
		_, _ = fmt.Fprintln(out, rendered)
		return false, nil
	case "/save":
		if arg == "" {
			return false, fmt.Errorf("usage: /save FILE")
		}
		if err := s.app.transcripts.Save(s.cmd.Context(), arg, s.history); err != nil {
			return false, err
		}
		_, _ = fmt.Fprintf(out, "Saved %d turns to %s\n", len(s.history), arg)
		return false, nil
	case "/help":
		_, _ = fmt.Fprintln(out, chatHelp)
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %q", name)
	}
}

func (s *chatSession) remember(turns ...domain.ChatTurn) {
	s.history = domain.LastTurns(append(s.history, turns...), s.app.cfg.MaxContextMessages)
}
