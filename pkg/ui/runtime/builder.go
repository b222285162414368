package runtime

import (
	"context"
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/embedbot/pkg/transport"
	"github.com/go-go-golems/embedbot/pkg/ui"
	"github.com/go-go-golems/embedbot/pkg/widget"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// WidgetBuilder constructs the widget model and a ready-to-run Bubble Tea
// program for the CLI and for embedding into a page container.
type WidgetBuilder struct {
	ctx            context.Context
	cfg            *widget.Config
	sender         transport.Sender
	httpClient     *http.Client
	logger         zerolog.Logger
	programOptions []tea.ProgramOption
	panelOptions   []ui.PanelOption
	width, height  int
}

// NewWidgetBuilder returns a new builder with defaults.
func NewWidgetBuilder() *WidgetBuilder {
	return &WidgetBuilder{
		ctx:    context.Background(),
		logger: zerolog.Nop(),
	}
}

func (b *WidgetBuilder) WithContext(ctx context.Context) *WidgetBuilder {
	if ctx != nil {
		b.ctx = ctx
	}
	return b
}

func (b *WidgetBuilder) WithConfig(cfg widget.Config) *WidgetBuilder {
	b.cfg = &cfg
	return b
}

// WithSender overrides the transport. By default a transport.Client for the
// configured API base is used.
func (b *WidgetBuilder) WithSender(s transport.Sender) *WidgetBuilder {
	b.sender = s
	return b
}

func (b *WidgetBuilder) WithHTTPClient(c *http.Client) *WidgetBuilder {
	b.httpClient = c
	return b
}

func (b *WidgetBuilder) WithLogger(l zerolog.Logger) *WidgetBuilder {
	b.logger = l
	return b
}

// WithSize sets the initial page size. Terminals report their own size; other
// outputs keep this one.
func (b *WidgetBuilder) WithSize(width, height int) *WidgetBuilder {
	b.width, b.height = width, height
	return b
}

func (b *WidgetBuilder) WithProgramOptions(opts ...tea.ProgramOption) *WidgetBuilder {
	b.programOptions = append(b.programOptions, opts...)
	return b
}

func (b *WidgetBuilder) WithPanelOptions(opts ...ui.PanelOption) *WidgetBuilder {
	b.panelOptions = append(b.panelOptions, opts...)
	return b
}

// BuildModel creates the transport, backend, panel and shell.
func (b *WidgetBuilder) BuildModel() (ui.ShellModel, error) {
	if b.cfg == nil {
		return ui.ShellModel{}, errors.New("widget config is required; use WithConfig")
	}
	cfg := *b.cfg
	if cfg.APIBase == "" {
		return ui.ShellModel{}, widget.ErrNoAPIBase
	}

	sender := b.sender
	if sender == nil {
		opts := []transport.Option{transport.WithLogger(b.logger)}
		if b.httpClient != nil {
			opts = append(opts, transport.WithHTTPClient(b.httpClient))
		}
		sender = transport.New(cfg.APIBase, opts...)
	}

	backend := ui.NewTransportBackend(b.ctx, sender, b.logger)
	panelOpts := append([]ui.PanelOption{ui.WithPanelLogger(b.logger)}, b.panelOptions...)
	panel := ui.NewPanelModel(cfg, backend, panelOpts...)
	shell := ui.NewShellModel(cfg, panel)
	if b.width > 0 && b.height > 0 {
		shell.SetSize(b.width, b.height)
	}
	return shell, nil
}

// BuildProgram creates the model and wraps it in a program bound to the
// builder's context.
func (b *WidgetBuilder) BuildProgram() (*tea.Program, error) {
	model, err := b.BuildModel()
	if err != nil {
		return nil, err
	}
	opts := append([]tea.ProgramOption{tea.WithContext(b.ctx)}, b.programOptions...)
	return tea.NewProgram(model, opts...), nil
}
