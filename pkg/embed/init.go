package embed

import (
	"context"
	"net/http"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-go-golems/embedbot/pkg/ui/runtime"
	"github.com/go-go-golems/embedbot/pkg/widget"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ContainerID is the mount point shared by every widget on a page.
const ContainerID = "embed-bot-root"

const quitTimeout = 2 * time.Second

// Initializer mounts widgets onto a page.
type Initializer struct {
	Page *Page
	// BuildAPIURL is the default API base baked in at build time.
	BuildAPIURL string
	Logger      zerolog.Logger
	HTTPClient  *http.Client
}

// Init resolves opts, mounts the widget into the page's container and starts
// it. When no API base can be resolved it logs a warning and returns nil
// without touching the page.
func (in *Initializer) Init(ctx context.Context, opts widget.Options) *Handle {
	if ctx == nil {
		ctx = context.Background()
	}
	log := in.Logger

	cfg, err := widget.Resolve(opts, in.BuildAPIURL)
	if err != nil {
		log.Warn().Err(err).Msg("chat widget not initialized: provide apiUrl or build with a default API URL")
		return nil
	}
	if opts.Position != "" {
		if _, err := widget.ParsePosition(opts.Position); err != nil {
			log.Warn().Err(err).Str("position", string(cfg.Position)).Msg("falling back to default position")
		}
	}
	if in.Page == nil {
		log.Warn().Msg("chat widget not initialized: no page")
		return nil
	}

	c, ok := in.Page.Lookup(ContainerID)
	created := !ok
	if created {
		c, err = in.Page.Create(ContainerID)
		if err != nil {
			log.Warn().Err(err).Msg("chat widget not initialized: could not create container")
			return nil
		}
	}

	runCtx, cancel := context.WithCancel(ctx)
	program, err := runtime.NewWidgetBuilder().
		WithContext(runCtx).
		WithConfig(cfg).
		WithHTTPClient(in.HTTPClient).
		WithLogger(log).
		WithSize(c.Width, c.Height).
		WithProgramOptions(
			tea.WithInput(c.In),
			tea.WithOutput(c.Out),
			tea.WithoutSignalHandler(),
		).
		BuildProgram()
	if err != nil {
		cancel()
		if created {
			in.Page.Remove(ContainerID)
		}
		log.Warn().Err(err).Msg("chat widget not initialized")
		return nil
	}

	h := &Handle{
		page:    in.Page,
		id:      c.ID,
		program: program,
		cancel:  cancel,
		done:    make(chan struct{}),
		logger:  log,
	}
	go h.run()

	log.Debug().Str("api_base", cfg.APIBase).Str("position", string(cfg.Position)).Msg("chat widget mounted")
	return h
}

// Handle controls a mounted widget.
type Handle struct {
	page    *Page
	id      string
	program *tea.Program
	cancel  context.CancelFunc
	logger  zerolog.Logger

	done chan struct{}
	err  error

	destroyOnce sync.Once
}

func (h *Handle) run() {
	defer close(h.done)
	_, err := h.program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		h.err = err
		h.logger.Error().Err(err).Msg("chat widget stopped with error")
	}
}

// Done is closed once the widget's program has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Err is the program's exit error, valid after Done is closed.
func (h *Handle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Destroy stops the widget, cancels any request in flight and removes the
// container from the page. Calling it again is a no-op.
func (h *Handle) Destroy() {
	if h == nil {
		return
	}
	h.destroyOnce.Do(func() {
		select {
		case <-h.done:
		default:
			go h.program.Quit()
			select {
			case <-h.done:
			case <-time.After(quitTimeout):
				h.logger.Warn().Msg("chat widget did not quit in time, killing it")
				h.program.Kill()
				<-h.done
			}
		}
		h.cancel()
		h.page.Remove(h.id)
	})
}
