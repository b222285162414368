package config

import (
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-go-golems/embedbot/pkg/llm"
	"github.com/go-go-golems/embedbot/pkg/logging"
	"github.com/go-go-golems/embedbot/pkg/persistence/chatstore"
	"github.com/go-go-golems/embedbot/pkg/redisstream"
	"github.com/go-go-golems/embedbot/pkg/server"
	"github.com/go-go-golems/embedbot/pkg/widget"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "EMBEDBOT_"

// Settings is the complete backend and widget configuration.
type Settings struct {
	Server  server.Settings      `yaml:"server" envPrefix:"SERVER_"`
	LLM     llm.Settings         `yaml:"llm"`
	Store   chatstore.Settings   `yaml:"store" envPrefix:"STORE_"`
	Events  redisstream.Settings `yaml:"events" envPrefix:"EVENTS_"`
	Logging logging.Settings     `yaml:"logging" envPrefix:"LOG_"`
	Widget  widget.Options       `yaml:"widget"`
}

func Default() *Settings {
	return &Settings{
		Server:  server.DefaultSettings(),
		LLM:     llm.DefaultSettings(),
		Store:   chatstore.DefaultSettings(),
		Events:  redisstream.DefaultSettings(),
		Logging: logging.Settings{Level: "info"},
	}
}

// Load layers configuration: defaults, then the YAML file at path (if path is
// non-empty), then .env files, then EMBEDBOT_* environment variables.
// Missing .env files are ignored; a missing config file is an error.
func Load(path string, envFiles ...string) (*Settings, error) {
	s := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(b, s); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "load %s", f)
		}
	}

	if err := env.ParseWithOptions(s, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}

	// Unprefixed provider keys, as commonly found in .env files.
	if s.LLM.APIKey == "" {
		s.LLM.APIKey = firstEnv("OPENROUTER_API_KEY", "OPENAI_API_KEY")
	}

	return s, s.Validate()
}

func (s *Settings) Validate() error {
	switch strings.ToLower(s.LLM.Provider) {
	case "", llm.ProviderOpenRouter, llm.ProviderOpenAI, llm.ProviderEcho:
	default:
		return errors.Errorf("unknown llm provider %q", s.LLM.Provider)
	}
	switch strings.ToLower(s.Store.Backend) {
	case "", chatstore.BackendMemory, chatstore.BackendSQLite, chatstore.BackendRedis:
	default:
		return errors.Errorf("unknown store backend %q", s.Store.Backend)
	}
	if s.Server.RateLimit < 0 {
		return errors.New("server.rate_limit must not be negative")
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}
