package cmd

import (
	"fmt"

	"github.com/bnema/helpdesk-assistant/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := config.MarshalMaskedTOML(app.cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if app.cfg.ConfigFile != "" {
				_, _ = fmt.Fprintf(out, "# loaded from %s\n", app.cfg.ConfigFile)
			}
			_, err = out.Write(data)
			return err
		},
	})

	return cmd
}
