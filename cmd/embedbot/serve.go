package main

import (
	"github.com/go-go-golems/embedbot/pkg/chatservice"
	"github.com/go-go-golems/embedbot/pkg/config"
	"github.com/go-go-golems/embedbot/pkg/events"
	"github.com/go-go-golems/embedbot/pkg/llm"
	"github.com/go-go-golems/embedbot/pkg/persistence/chatstore"
	"github.com/go-go-golems/embedbot/pkg/redisstream"
	"github.com/go-go-golems/embedbot/pkg/server"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type serveFlags struct {
	configPath   string
	addr         string
	provider     string
	model        string
	store        string
	sqlitePath   string
	staticDir    string
	redisEnabled bool
	redisAddr    string
}

func newServeCommand() *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "Path to a YAML config file")
	fl.StringVar(&f.addr, "addr", "", "Listen address (default :8000)")
	fl.StringVar(&f.provider, "provider", "", "LLM provider: openrouter, openai or echo")
	fl.StringVar(&f.model, "model", "", "Model name")
	fl.StringVar(&f.store, "store", "", "History store: memory, sqlite or redis")
	fl.StringVar(&f.sqlitePath, "sqlite-path", "", "SQLite database file for the sqlite store")
	fl.StringVar(&f.staticDir, "static-dir", "", "Serve a built frontend from this directory")
	fl.BoolVar(&f.redisEnabled, "redis-enabled", false, "Publish chat events on Redis Streams")
	fl.StringVar(&f.redisAddr, "redis-addr", "", "Redis address for the store and event streams")
	return cmd
}

func (f *serveFlags) apply(cmd *cobra.Command, s *config.Settings) {
	changed := cmd.Flags().Changed
	if changed("addr") {
		s.Server.Addr = f.addr
	}
	if changed("provider") {
		s.LLM.Provider = f.provider
	}
	if changed("model") {
		s.LLM.Model = f.model
	}
	if changed("store") {
		s.Store.Backend = f.store
	}
	if changed("sqlite-path") {
		s.Store.SQLitePath = f.sqlitePath
	}
	if changed("static-dir") {
		s.Server.StaticDir = f.staticDir
	}
	if changed("redis-enabled") {
		s.Events.Enabled = f.redisEnabled
	}
	if changed("redis-addr") {
		s.Events.Addr = f.redisAddr
		s.Store.RedisAddr = f.redisAddr
	}
}

func runServe(cmd *cobra.Command, f *serveFlags) error {
	ctx := cmd.Context()

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return err
	}
	f.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := applyConfigLogging(cmd, cfg.Logging); err != nil {
		return err
	}
	logger := log.Logger

	engine, err := llm.NewEngine(cfg.LLM)
	if err != nil {
		return errors.Wrap(err, "create llm engine")
	}

	store, err := chatstore.Open(ctx, cfg.Store)
	if err != nil {
		return errors.Wrap(err, "open history store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("history store close error")
		}
	}()

	if cfg.Events.Enabled {
		if err := redisstream.EnsureGroupAtTail(ctx, cfg.Events, events.TopicChat, logger); err != nil {
			return errors.Wrap(err, "prepare redis consumer group")
		}
	}
	bus, err := events.Build(cfg.Events, logger)
	if err != nil {
		return errors.Wrap(err, "build event bus")
	}
	bus.AddHandler("exchange-log", events.TopicChat, events.LogHandler(logger))

	svc := chatservice.New(engine,
		chatservice.WithStore(store),
		chatservice.WithPublisher(bus),
		chatservice.WithHistoryLimit(cfg.LLM.HistoryLimit),
		chatservice.WithLogger(logger),
	)

	srv, err := server.New(cfg.Server, svc, server.WithBus(bus), server.WithLogger(logger))
	if err != nil {
		return err
	}
	logger.Info().
		Str("provider", cfg.LLM.Provider).
		Str("model", cfg.LLM.Model).
		Str("store", cfg.Store.Backend).
		Bool("redis_events", cfg.Events.Enabled).
		Msg("embedbot backend configured")
	return srv.Run(ctx)
}
