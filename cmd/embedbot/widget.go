package main

import (
	"os"

	"github.com/go-go-golems/embedbot/pkg/config"
	"github.com/go-go-golems/embedbot/pkg/embed"
	"github.com/go-go-golems/embedbot/pkg/widget"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type widgetFlags struct {
	configPath string
	opts       widget.Options
}

func newWidgetCommand() *cobra.Command {
	f := &widgetFlags{}
	cmd := &cobra.Command{
		Use:   "widget",
		Short: "Mount the chat widget in this terminal",
		Long: `Mount the chat widget in this terminal.

ctrl+o opens and closes the chat, enter sends, ctrl+r starts a new chat,
ctrl+y copies the last reply and ctrl+c quits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWidget(cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "Path to a YAML config file with a widget section")
	fl.StringVar(&f.opts.APIURL, "api-url", "", "Backend base URL (default: the URL baked in at build time)")
	fl.StringVar(&f.opts.Title, "title", "", "Header title")
	fl.StringVar(&f.opts.WelcomeMessage, "welcome", "", "Message shown before the first exchange")
	fl.StringVar(&f.opts.Position, "position", "", "Corner: bottom-right, bottom-left, top-right or top-left")
	fl.StringVar(&f.opts.PrimaryColor, "color", "", "Primary color, e.g. #059669")
	fl.BoolVar(&f.opts.RenderMarkdown, "markdown", false, "Render replies as markdown")
	return cmd
}

// options merges the config file's widget section with flags set on the
// command line.
func (f *widgetFlags) options(cmd *cobra.Command) (widget.Options, error) {
	opts := widget.Options{}
	if f.configPath != "" {
		cfg, err := config.Load(f.configPath)
		if err != nil {
			return opts, err
		}
		if err := applyConfigLogging(cmd, cfg.Logging); err != nil {
			return opts, err
		}
		opts = cfg.Widget
	}
	changed := cmd.Flags().Changed
	if changed("api-url") {
		opts.APIURL = f.opts.APIURL
	}
	if changed("title") {
		opts.Title = f.opts.Title
	}
	if changed("welcome") {
		opts.WelcomeMessage = f.opts.WelcomeMessage
	}
	if changed("position") {
		opts.Position = f.opts.Position
	}
	if changed("color") {
		opts.PrimaryColor = f.opts.PrimaryColor
	}
	if changed("markdown") {
		opts.RenderMarkdown = f.opts.RenderMarkdown
	}
	return opts, nil
}

func runWidget(cmd *cobra.Command, f *widgetFlags) error {
	opts, err := f.options(cmd)
	if err != nil {
		return err
	}

	// The terminal belongs to the widget while it runs; logs only go to a file.
	runtimeLogger := zerolog.Nop()
	if logSettings.File != "" {
		runtimeLogger = log.Logger
	}
	if _, err := widget.ResolveAPIBase(opts.APIURL, defaultAPIURL); err != nil {
		log.Warn().Err(err).Msg("chat widget not initialized: pass --api-url or build with a default API URL")
		return err
	}

	in := &embed.Initializer{
		Page:        embed.NewPage(os.Stdin, os.Stdout),
		BuildAPIURL: defaultAPIURL,
		Logger:      runtimeLogger,
	}
	h := in.Init(cmd.Context(), opts)
	if h == nil {
		return errors.New("chat widget not initialized")
	}
	<-h.Done()
	h.Destroy()
	return h.Err()
}
