package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ChatPath is appended to the base URL for every request.
const ChatPath = "/chat"

// Sender is the surface the chat panel depends on.
type Sender interface {
	Send(ctx context.Context, message string) (string, error)
}

// MaxResponseBytes caps how much of a response body is read. A longer body
// is cut off and fails to parse.
const MaxResponseBytes = 1 << 20

// ChatRequestBody is the wire request.
type ChatRequestBody struct {
	Message string `json:"message"`
}

// chatResponseBody covers both the success and the error shape. Reply is kept
// raw so non-string replies are passed through untouched.
type chatResponseBody struct {
	Reply  json.RawMessage `json:"reply,omitempty"`
	Detail json.RawMessage `json:"detail,omitempty"`
}

// Client posts chat messages to a single backend. It holds no mutable state
// and is safe for concurrent use.
type Client struct {
	base       string
	httpClient *http.Client
	logger     zerolog.Logger
}

var _ Sender = &Client{}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.httpClient = c
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// New builds a client for base. An empty base yields a relative "/chat" URL.
func New(base string, opts ...Option) *Client {
	c := &Client{
		base:       strings.TrimRight(strings.TrimSpace(base), "/"),
		httpClient: http.DefaultClient,
		logger:     zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// URL is the chat endpoint this client posts to.
func (c *Client) URL() string {
	if c.base == "" {
		return ChatPath
	}
	return c.base + ChatPath
}

// Send issues exactly one POST and returns the reply. Errors are
// *NetworkError, *ServerError or *ParseError.
func (c *Client) Send(ctx context.Context, message string) (string, error) {
	payload, err := json.Marshal(ChatRequestBody{Message: message})
	if err != nil {
		return "", errors.Wrap(err, "marshal chat request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(), bytes.NewReader(payload))
	if err != nil {
		return "", &NetworkError{Err: errors.Wrap(err, "build chat request")}
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	log := c.logger.With().Str("request_id", requestID).Str("url", c.URL()).Logger()
	log.Debug().Int("message_len", len(message)).Msg("sending chat request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Msg("chat request failed")
		return "", &NetworkError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return "", &NetworkError{Err: errors.Wrap(err, "read chat response")}
	}

	var body chatResponseBody
	parseErr := json.Unmarshal(raw, &body)
	if parseErr != nil {
		body = chatResponseBody{Detail: json.RawMessage(`"` + InvalidResponseDetail + `"`)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := &ServerError{Status: resp.StatusCode, Detail: jsonText(body.Detail)}
		log.Warn().Int("status", resp.StatusCode).Str("detail", se.Error()).Msg("chat request rejected")
		return "", se
	}
	if parseErr != nil {
		log.Warn().Err(parseErr).Int("status", resp.StatusCode).Msg("chat response is not JSON")
		return "", &ParseError{Status: resp.StatusCode, Err: parseErr}
	}

	reply := jsonText(body.Reply)
	log.Debug().Int("status", resp.StatusCode).Int("reply_len", len(reply)).Msg("chat reply received")
	return reply, nil
}

// jsonText unquotes a JSON string and renders anything else as raw JSON.
func jsonText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
