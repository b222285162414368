package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/embedbot/pkg/redisstream"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// TopicChat carries one ExchangeEvent per handled chat request.
const TopicChat = "chat"

const (
	StatusOK      = "ok"
	StatusInvalid = "invalid"
	StatusError   = "error"
)

type ExchangeEvent struct {
	ID          string `json:"id"`
	SessionID   string `json:"session_id,omitempty"`
	Message     string `json:"message"`
	Reply       string `json:"reply,omitempty"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	Reset       bool   `json:"reset,omitempty"`
	DurationMs  int64  `json:"duration_ms"`
	CreatedAtMs int64  `json:"created_at_ms"`
}

// Publisher is what request handling needs from the bus.
type Publisher interface {
	PublishExchange(ev ExchangeEvent) error
}

// Bus wraps a Watermill router and the pub/sub it runs on.
type Bus struct {
	Router *message.Router

	pubsub *redisstream.PubSub
	logger zerolog.Logger
}

var _ Publisher = &Bus{}

func Build(s redisstream.Settings, logger zerolog.Logger) (*Bus, error) {
	wl := redisstream.NewWatermillLogger(logger)
	ps, err := redisstream.Build(s, wl)
	if err != nil {
		return nil, err
	}
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 5 * time.Second}, wl)
	if err != nil {
		_ = ps.Close()
		return nil, errors.Wrap(err, "create event router")
	}
	return &Bus{Router: router, pubsub: ps, logger: logger}, nil
}

func (b *Bus) Publisher() message.Publisher   { return b.pubsub.Publisher }
func (b *Bus) Subscriber() message.Subscriber { return b.pubsub.Subscriber }

// PublishExchange fills in ID and timestamp when missing and publishes ev on
// TopicChat.
func (b *Bus) PublishExchange(ev ExchangeEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAtMs == 0 {
		ev.CreatedAtMs = time.Now().UnixMilli()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal exchange event")
	}
	msg := message.NewMessage(ev.ID, payload)
	return errors.Wrap(b.pubsub.Publisher.Publish(TopicChat, msg), "publish exchange event")
}

// AddHandler subscribes h to topic. Handlers must be added before Run.
func (b *Bus) AddHandler(name, topic string, h message.NoPublishHandlerFunc) {
	b.Router.AddNoPublisherHandler(name, topic, b.pubsub.Subscriber, h)
}

// Run blocks until ctx is cancelled or the router stops.
func (b *Bus) Run(ctx context.Context) error {
	return b.Router.Run(ctx)
}

// Running is closed once handlers are subscribed.
func (b *Bus) Running() chan struct{} { return b.Router.Running() }

func (b *Bus) Close() error {
	rerr := b.Router.Close()
	perr := b.pubsub.Close()
	if rerr != nil {
		return errors.Wrap(rerr, "close event router")
	}
	return perr
}

// LogHandler logs every exchange event; failures at warn level.
func LogHandler(logger zerolog.Logger) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		var ev ExchangeEvent
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			logger.Warn().Err(err).Str("uuid", msg.UUID).Msg("dropping undecodable exchange event")
			return nil
		}
		e := logger.Info()
		if ev.Status != StatusOK {
			e = logger.Warn().Str("error", ev.Error)
		}
		e.Str("event_id", ev.ID).
			Str("session_id", ev.SessionID).
			Str("status", ev.Status).
			Int("message_len", len(ev.Message)).
			Int("reply_len", len(ev.Reply)).
			Int64("duration_ms", ev.DurationMs).
			Msg("chat exchange")
		return nil
	}
}
