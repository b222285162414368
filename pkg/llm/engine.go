package llm

import (
	"context"
	"strings"
	"time"

	"github.com/go-go-golems/embedbot/pkg/persistence/chatstore"
	"github.com/pkg/errors"
)

// Engine produces a reply for message given the earlier exchanges of the
// session, oldest first.
type Engine interface {
	Reply(ctx context.Context, message string, history []chatstore.Exchange) (string, error)
}

const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderEcho       = "echo"

	OpenRouterBaseURL = "https://openrouter.ai/api/v1"
	OpenAIBaseURL     = "https://api.openai.com/v1"

	DefaultModel        = "mistralai/mistral-7b-instruct:free"
	DefaultTemperature  = 0.7
	DefaultTimeout      = 60 * time.Second
	DefaultMaxRetries   = 2
	DefaultHistoryLimit = 10
	DefaultSiteName     = "EmbedBot"

	DefaultSystemPrompt = `You are a helpful, friendly chatbot. Respond concisely and naturally.
Keep responses clear and appropriate for a website support context.`
)

type Settings struct {
	Provider     string        `yaml:"provider" env:"PROVIDER"`
	APIKey       string        `yaml:"api_key" env:"OPENROUTER_API_KEY"`
	BaseURL      string        `yaml:"base_url" env:"LLM_BASE_URL"`
	Model        string        `yaml:"model" env:"MODEL_NAME"`
	Temperature  float64       `yaml:"temperature" env:"TEMPERATURE"`
	Timeout      time.Duration `yaml:"timeout" env:"LLM_TIMEOUT"`
	MaxRetries   int           `yaml:"max_retries" env:"LLM_MAX_RETRIES"`
	SystemPrompt string        `yaml:"system_prompt" env:"SYSTEM_PROMPT"`
	HistoryLimit int           `yaml:"history_limit" env:"HISTORY_LIMIT"`
	// SiteURL and SiteName are sent to OpenRouter for app attribution.
	SiteURL  string `yaml:"site_url" env:"SITE_URL"`
	SiteName string `yaml:"site_name" env:"SITE_NAME"`
}

func DefaultSettings() Settings {
	return Settings{
		Provider:     ProviderOpenRouter,
		Model:        DefaultModel,
		Temperature:  DefaultTemperature,
		Timeout:      DefaultTimeout,
		MaxRetries:   DefaultMaxRetries,
		SystemPrompt: DefaultSystemPrompt,
		HistoryLimit: DefaultHistoryLimit,
		SiteName:     DefaultSiteName,
	}
}

// NewEngine builds the engine for s.Provider.
func NewEngine(s Settings) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(s.Provider)) {
	case "", ProviderOpenRouter:
		if s.BaseURL == "" {
			s.BaseURL = OpenRouterBaseURL
		}
		return NewOpenAIEngine(s)
	case ProviderOpenAI:
		if s.BaseURL == "" {
			s.BaseURL = OpenAIBaseURL
		}
		return NewOpenAIEngine(s)
	case ProviderEcho:
		return EchoEngine{}, nil
	default:
		return nil, errors.Errorf("unknown llm provider %q", s.Provider)
	}
}

// EchoEngine answers without a model. Useful for local development.
type EchoEngine struct{}

func (EchoEngine) Reply(_ context.Context, message string, _ []chatstore.Exchange) (string, error) {
	return "You said: " + message, nil
}
