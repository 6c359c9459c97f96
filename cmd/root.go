package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "hd",
		Short:         "Help desk assistant (hd): ask questions and draft tickets",
		Long:          "hd talks to an OpenAI assistant configured with your help desk knowledge base, answers greetings and contact requests locally, and turns a conversation into a ticket summary or an incident list.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newAskCmd(app),
		newChatCmd(app),
		newTicketCmd(app),
		newCredentialCmd(app),
		newConfigCmd(app),
	)

	return rootCmd
}
