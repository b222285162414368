package llm

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-go-golems/embedbot/pkg/persistence/chatstore"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/pkg/errors"
)

// OpenAIEngine talks to any OpenAI compatible chat completions API,
// OpenRouter by default.
type OpenAIEngine struct {
	client       openai.Client
	model        string
	temperature  float64
	systemPrompt string
	historyLimit int
}

var _ Engine = &OpenAIEngine{}

type OpenAIOption func(*[]option.RequestOption)

// WithHTTPClient routes requests through c.
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(opts *[]option.RequestOption) {
		*opts = append(*opts, option.WithHTTPClient(c))
	}
}

func NewOpenAIEngine(s Settings, extra ...OpenAIOption) (*OpenAIEngine, error) {
	if strings.TrimSpace(s.APIKey) == "" {
		return nil, errors.New("llm: api key is required")
	}
	d := DefaultSettings()
	if s.BaseURL == "" {
		s.BaseURL = OpenRouterBaseURL
	}
	if s.Model == "" {
		s.Model = d.Model
	}
	if s.Timeout <= 0 {
		s.Timeout = d.Timeout
	}
	if s.MaxRetries < 0 {
		s.MaxRetries = d.MaxRetries
	}
	if s.SystemPrompt == "" {
		s.SystemPrompt = d.SystemPrompt
	}
	if s.HistoryLimit <= 0 {
		s.HistoryLimit = d.HistoryLimit
	}

	opts := []option.RequestOption{
		option.WithAPIKey(s.APIKey),
		option.WithBaseURL(s.BaseURL),
		option.WithRequestTimeout(s.Timeout),
		option.WithMaxRetries(s.MaxRetries),
	}
	if s.SiteURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", s.SiteURL))
	}
	if s.SiteName != "" {
		opts = append(opts, option.WithHeader("X-Title", s.SiteName))
	}
	for _, o := range extra {
		o(&opts)
	}

	return &OpenAIEngine{
		client:       openai.NewClient(opts...),
		model:        s.Model,
		temperature:  s.Temperature,
		systemPrompt: s.SystemPrompt,
		historyLimit: s.HistoryLimit,
	}, nil
}

// Messages builds the prompt: system prompt, the most recent exchanges and
// the new message.
func (e *OpenAIEngine) Messages(message string, history []chatstore.Exchange) []openai.ChatCompletionMessageParamUnion {
	if len(history) > e.historyLimit {
		history = history[len(history)-e.historyLimit:]
	}
	msgs := make([]openai.ChatCompletionMessageParamUnion, 0, 2+2*len(history))
	msgs = append(msgs, openai.SystemMessage(e.systemPrompt))
	for _, ex := range history {
		msgs = append(msgs, openai.UserMessage(ex.Human), openai.AssistantMessage(ex.AI))
	}
	return append(msgs, openai.UserMessage(message))
}

func (e *OpenAIEngine) Reply(ctx context.Context, message string, history []chatstore.Exchange) (string, error) {
	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(e.model),
		Messages:    e.Messages(message, history),
		Temperature: openai.Float(e.temperature),
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
