package chatservice

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-go-golems/embedbot/pkg/events"
	"github.com/go-go-golems/embedbot/pkg/llm"
	"github.com/go-go-golems/embedbot/pkg/persistence/chatstore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// MaxMessageLength is the longest accepted message, in characters.
const MaxMessageLength = 10000

// ErrInvalidMessage marks requests rejected before reaching the engine.
var ErrInvalidMessage = errors.New("invalid message")

// ErrEngine marks failures of the language model.
var ErrEngine = errors.New("chat engine failed")

type Request struct {
	Message   string
	SessionID string
	Reset     bool
}

type Service struct {
	engine       llm.Engine
	store        chatstore.Store
	publisher    events.Publisher
	historyLimit int
	logger       zerolog.Logger
}

type Option func(*Service)

func WithStore(s chatstore.Store) Option {
	return func(svc *Service) { svc.store = s }
}

func WithPublisher(p events.Publisher) Option {
	return func(svc *Service) { svc.publisher = p }
}

func WithHistoryLimit(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.historyLimit = n
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(svc *Service) { svc.logger = l }
}

func New(engine llm.Engine, opts ...Option) *Service {
	svc := &Service{
		engine:       engine,
		historyLimit: llm.DefaultHistoryLimit,
		logger:       zerolog.Nop(),
	}
	for _, o := range opts {
		o(svc)
	}
	return svc
}

// ValidationError explains why a message was rejected. It matches
// ErrInvalidMessage.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidMessage }

// EngineError carries the language model failure. It matches ErrEngine.
type EngineError struct {
	Err error
}

func (e *EngineError) Error() string { return ErrEngine.Error() + ": " + e.Err.Error() }

func (e *EngineError) Unwrap() error { return e.Err }

func (e *EngineError) Is(target error) bool { return target == ErrEngine }

// Validate rejects blank and over-long messages.
func Validate(message string) error {
	if strings.TrimSpace(message) == "" {
		return &ValidationError{Reason: "Message is required"}
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return &ValidationError{Reason: fmt.Sprintf("Message must be at most %d characters", MaxMessageLength)}
	}
	return nil
}

// Chat answers req.Message. Without a session ID or store the exchange is
// stateless. History write failures are logged and do not fail the reply.
func (s *Service) Chat(ctx context.Context, req Request) (reply string, err error) {
	start := time.Now()
	sessionID := strings.TrimSpace(req.SessionID)
	ev := events.ExchangeEvent{SessionID: sessionID, Message: req.Message, Reset: req.Reset}
	defer func() {
		ev.DurationMs = time.Since(start).Milliseconds()
		switch {
		case err == nil:
			ev.Status, ev.Reply = events.StatusOK, reply
		case errors.Is(err, ErrInvalidMessage):
			ev.Status, ev.Error = events.StatusInvalid, err.Error()
		default:
			ev.Status, ev.Error = events.StatusError, err.Error()
		}
		s.publish(ev)
	}()

	if err := Validate(req.Message); err != nil {
		return "", err
	}

	stateful := sessionID != "" && s.store != nil
	var history []chatstore.Exchange
	if stateful {
		if req.Reset {
			if err := s.store.Clear(ctx, sessionID); err != nil {
				s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("could not reset session")
			}
		}
		h, err := s.store.History(ctx, sessionID, s.historyLimit)
		if err != nil {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("could not load history, continuing without it")
		} else {
			history = h
		}
	}

	reply, err = s.engine.Reply(ctx, req.Message, history)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("chat invocation failed")
		return "", &EngineError{Err: err}
	}

	if stateful {
		if err := s.store.Append(ctx, sessionID, chatstore.Exchange{Human: req.Message, AI: reply}); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("could not save exchange")
		}
	}
	return reply, nil
}

// ClearSession forgets the history of id.
func (s *Service) ClearSession(ctx context.Context, id string) error {
	if s.store == nil {
		return nil
	}
	return s.store.Clear(ctx, id)
}

func (s *Service) publish(ev events.ExchangeEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExchange(ev); err != nil {
		s.logger.Warn().Err(err).Msg("could not publish exchange event")
	}
}
