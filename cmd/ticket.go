package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnema/helpdesk-assistant/internal/adapters/render/ticket"
	"github.com/spf13/cobra"
)

var errHistoryRequired = errors.New("--history is required")

func newTicketCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ticket",
		Short: "Draft tickets from a conversation transcript",
	}

	cmd.AddCommand(
		newTicketSummaryCmd(app),
		newTicketIncidentsCmd(app),
	)

	return cmd
}

func newTicketSummaryCmd(app *app) *cobra.Command {
	var historyPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize a transcript into a ticket title and description",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if historyPath == "" {
				return errHistoryRequired
			}

			history, err := app.transcripts.Load(cmd.Context(), historyPath)
			if err != nil {
				return err
			}

			summary := app.tickets.Summarize(cmd.Context(), history)
			if asJSON {
				return writeJSON(cmd, summary)
			}

			rendered, err := app.renderSummary(summary, ticket.RenderOptions{})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().StringVar(&historyPath, "history", "", "Transcript file (JSON or TOML)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newTicketIncidentsCmd(app *app) *cobra.Command {
	var historyPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "incidents",
		Short: "Extract the incidents mentioned in a transcript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if historyPath == "" {
				return errHistoryRequired
			}

			history, err := app.transcripts.Load(cmd.Context(), historyPath)
			if err != nil {
				return err
			}

			incidents := app.tickets.ExtractIncidents(cmd.Context(), history)
			if asJSON {
				return writeJSON(cmd, incidents)
			}

			rendered, err := app.renderIncidents(incidents, ticket.RenderOptions{})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().StringVar(&historyPath, "history", "", "Transcript file (JSON or TOML)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func writeJSON(cmd *cobra.Command, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
