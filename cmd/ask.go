package cmd

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/bnema/helpdesk-assistant/internal/application"
	"github.com/spf13/cobra"
)

const thinkingLabel = "Consultando al asistente..."

func newAskCmd(app *app) *cobra.Command {
	var sessionID string
	var imagePath string
	var noGreeting bool
	var plain bool

	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Ask the help desk assistant a single question",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			image, err := loadImageDataURI(imagePath)
			if err != nil {
				return err
			}

			req := application.AskRequest{
				Question:      strings.Join(args, " "),
				AllowGreeting: !noGreeting,
				SessionID:     sessionID,
				Image:         image,
			}

			answer, err := askAssistant(cmd, app, req, plain)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), answer)
			return err
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID to continue (default: one-off conversation)")
	cmd.Flags().StringVar(&imagePath, "image", "", "Attach an image file")
	cmd.Flags().BoolVar(&noGreeting, "no-greeting", false, "Send greetings to the assistant instead of answering locally")
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable the progress spinner")

	return cmd
}

func askAssistant(cmd *cobra.Command, app *app, req application.AskRequest, plain bool) (string, error) {
	var answer string
	ask := func(ctx context.Context) error {
		var err error
		answer, err = app.assistant.Ask(ctx, req)
		return err
	}

	var err error
	if plain {
		err = ask(cmd.Context())
	} else {
		err = runWithSpinner(cmd.Context(), cmd.ErrOrStderr(), thinkingLabel, ask)
	}
	if err != nil {
		return "", err
	}

	return answer, nil
}

func loadImageDataURI(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", fmt.Errorf("%s is not an image (%s)", path, mimeType)
	}

	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
