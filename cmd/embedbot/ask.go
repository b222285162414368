package main

import (
	"fmt"
	"strings"

	"github.com/go-go-golems/embedbot/pkg/transport"
	"github.com/go-go-golems/embedbot/pkg/widget"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newAskCommand() *cobra.Command {
	var apiURL string
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send one message to the backend and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := widget.ResolveAPIBase(apiURL, defaultAPIURL)
			if err != nil {
				return err
			}
			client := transport.New(base, transport.WithLogger(log.Logger))
			reply, err := client.Send(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), reply)
			return err
		},
	}
	cmd.Flags().StringVar(&apiURL, "api-url", "", "Backend base URL (default: the URL baked in at build time)")
	return cmd
}
