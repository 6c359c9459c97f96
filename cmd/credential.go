package cmd

import (
	"fmt"

	openaiadapter "github.com/bnema/helpdesk-assistant/internal/adapters/openai"
	"github.com/spf13/cobra"
)

func newCredentialCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage the stored OpenAI API key",
	}

	cmd.AddCommand(
		newCredentialSetCmd(app),
		newCredentialRemoveCmd(app),
	)

	return cmd
}

func newCredentialSetCmd(app *app) *cobra.Command {
	var value string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store the API key (pass first, file fallback)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.secretStore.Put(cmd.Context(), openaiadapter.CredentialSecretKey, value); err != nil {
				return fmt.Errorf("store api key: %w", err)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "API key stored.")
			return err
		},
	}

	cmd.Flags().StringVar(&value, "value", "", "API key value")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func newCredentialRemoveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Delete the stored API key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.secretStore.Delete(cmd.Context(), openaiadapter.CredentialSecretKey); err != nil {
				return fmt.Errorf("remove api key: %w", err)
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "API key removed.")
			return err
		},
	}
}
