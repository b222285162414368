package server

import (
	"context"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-go-golems/embedbot/pkg/chatservice"
	"github.com/go-go-golems/embedbot/pkg/events"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

type Settings struct {
	Addr      string  `yaml:"addr" env:"ADDR"`
	StaticDir string  `yaml:"static_dir" env:"STATIC_DIR"`
	RateLimit float64 `yaml:"rate_limit" env:"RATE_LIMIT"`
	RateBurst int     `yaml:"rate_burst" env:"RATE_BURST"`
	Title     string  `yaml:"title" env:"API_TITLE"`
	Version   string  `yaml:"version" env:"API_VERSION"`
	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Enable only behind a proxy that sets those headers.
	TrustProxy bool `yaml:"trust_proxy" env:"TRUST_PROXY"`
}

func DefaultSettings() Settings {
	return Settings{
		Addr:      ":8000",
		RateLimit: 1,
		RateBurst: 10,
		Title:     "EmbedBot API",
		Version:   "1.0.0",
	}
}

// ChatService is the request handling the HTTP layer needs.
type ChatService interface {
	Chat(ctx context.Context, req chatservice.Request) (string, error)
	ClearSession(ctx context.Context, id string) error
}

var _ ChatService = &chatservice.Service{}

// Server drives the event router and HTTP server lifecycle.
type Server struct {
	settings Settings
	chat     ChatService
	bus      *events.Bus
	logger   zerolog.Logger
	handler  http.Handler
}

type Option func(*Server)

// WithBus runs bus alongside the HTTP server and closes it on shutdown.
func WithBus(b *events.Bus) Option {
	return func(s *Server) { s.bus = b }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

func New(settings Settings, chat ChatService, opts ...Option) (*Server, error) {
	if chat == nil {
		return nil, errors.New("chat service is required")
	}
	s := &Server{settings: settings, chat: chat, logger: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	if s.settings.Title == "" {
		s.settings.Title = DefaultSettings().Title
	}
	if s.settings.StaticDir != "" {
		fi, err := os.Stat(s.settings.StaticDir)
		if err != nil || !fi.IsDir() {
			s.logger.Warn().Str("static_dir", s.settings.StaticDir).Msg("static dir not found; not serving frontend")
			s.settings.StaticDir = ""
		}
	}
	s.handler = s.routes()
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	if s.settings.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(RequestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Route("/chat", func(r chi.Router) {
		if s.settings.RateLimit > 0 {
			r.Use(NewRateLimiter(s.settings.RateLimit, s.settings.RateBurst, 0).Middleware)
		}
		r.Post("/", s.handleChat)
		r.Delete("/sessions/{sessionID}", s.handleClearSession)
	})

	// Registered last so API routes win.
	if s.settings.StaticDir != "" {
		r.NotFound(s.staticHandler(s.settings.StaticDir))
	} else {
		r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
			writeDetail(w, http.StatusNotFound, DetailNotFound)
		})
	}
	return r
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.settings.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.settings.Addr)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the event router and HTTP server on ln. When ctx is cancelled
// the server is shut down gracefully and the router closed.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if ctx == nil {
		return errors.New("ctx is nil")
	}
	httpSrv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	eg := errgroup.Group{}
	srvCtx, srvCancel := context.WithCancel(ctx)
	defer srvCancel()

	if s.bus != nil {
		eg.Go(func() error {
			if err := s.bus.Run(srvCtx); err != nil {
				s.logger.Error().Err(err).Msg("event router exited with error")
				srvCancel()
				return err
			}
			return nil
		})
	}

	eg.Go(func() error {
		<-srvCtx.Done()
		s.logger.Info().Msg("shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("server shutdown error")
			return err
		}
		if s.bus != nil {
			if err := s.bus.Close(); err != nil {
				s.logger.Error().Err(err).Msg("event bus close error")
			}
		}
		s.logger.Info().Msg("server shutdown complete")
		return nil
	})

	eg.Go(func() error {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("starting embedbot server")
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("server listen error")
			srvCancel()
			return err
		}
		return nil
	})

	return eg.Wait()
}
