package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-go-golems/embedbot/pkg/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// defaultAPIURL is baked in at build time:
//
//	go build -ldflags "-X main.defaultAPIURL=https://api.example.com" ./cmd/embedbot
var defaultAPIURL string

var (
	logSettings = logging.Settings{Level: "info"}
	logCloser   io.Closer
)

var rootCmd = &cobra.Command{
	Use:          "embedbot",
	Short:        "embedbot is an embeddable chat widget and its backend",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// reinitialize the logger now that --log-level and co are parsed
		return initLogging(logSettings)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeLogging()
	},
}

func initLogging(s logging.Settings) error {
	closeLogging()
	c, err := logging.Init(s)
	if err != nil {
		return err
	}
	logCloser = c
	return nil
}

func closeLogging() {
	if logCloser != nil {
		_ = logCloser.Close()
		logCloser = nil
	}
}

// applyConfigLogging lets a config file set logging options the command line
// left alone.
func applyConfigLogging(cmd *cobra.Command, fromConfig logging.Settings) error {
	s := logSettings
	changed := false
	if !cmd.Flags().Changed("log-level") && fromConfig.Level != "" {
		s.Level, changed = fromConfig.Level, true
	}
	if !cmd.Flags().Changed("log-format") && fromConfig.Format != "" {
		s.Format, changed = fromConfig.Format, true
	}
	if !cmd.Flags().Changed("log-file") && fromConfig.File != "" {
		s.File, changed = fromConfig.File, true
	}
	if !changed {
		return nil
	}
	logSettings = s
	return initLogging(s)
}

func main() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&logSettings.Level, "log-level", logSettings.Level, "Log level (trace, debug, info, warn, error)")
	pf.StringVar(&logSettings.Format, "log-format", "", "Log format (console, json); default depends on the terminal")
	pf.StringVar(&logSettings.File, "log-file", "", "Write logs to this file instead of stderr")

	rootCmd.AddCommand(newServeCommand(), newWidgetCommand(), newAskCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("embedbot failed")
		os.Exit(1)
	}
}
