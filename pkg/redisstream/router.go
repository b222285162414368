package redisstream

import (
	"context"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	rstream "github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// PubSub is the publisher/subscriber pair an event bus runs on.
type PubSub struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber

	client *redis.Client
}

// Close releases the publisher, the subscriber and the redis connection.
func (p *PubSub) Close() error {
	var errs []string
	if p.Publisher != nil {
		if err := p.Publisher.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if p.Subscriber != nil && any(p.Subscriber) != any(p.Publisher) {
		if err := p.Subscriber.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if p.client != nil {
		if err := p.client.Close(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return errors.Errorf("close pubsub: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Build constructs a Redis Streams publisher and subscriber when enabled.
// If s.Enabled is false, it returns an in-memory go channel.
func Build(s Settings, logger watermill.LoggerAdapter) (*PubSub, error) {
	if !s.Enabled {
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger)
		return &PubSub{Publisher: ch, Subscriber: ch}, nil
	}

	client := redis.NewClient(&redis.Options{Addr: s.Addr, Password: s.Password})
	marshaler := rstream.DefaultMarshallerUnmarshaller{}

	pub, err := rstream.NewPublisher(rstream.PublisherConfig{
		Client:     client,
		Marshaller: marshaler,
	}, logger)
	if err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis stream publisher")
	}

	sub, err := rstream.NewSubscriber(rstream.SubscriberConfig{
		Client:        client,
		Unmarshaller:  marshaler,
		ConsumerGroup: s.Group,
		Consumer:      s.Consumer,
	}, logger)
	if err != nil {
		_ = pub.Close()
		_ = client.Close()
		return nil, errors.Wrap(err, "redis stream subscriber")
	}

	return &PubSub{Publisher: pub, Subscriber: sub, client: client}, nil
}

// EnsureGroupAtTail creates the consumer group for a given stream at the tail ($) if it doesn't exist.
// This prevents full historical replay on first subscribe.
func EnsureGroupAtTail(ctx context.Context, s Settings, stream string, logger zerolog.Logger) error {
	client := redis.NewClient(&redis.Options{Addr: s.Addr, Password: s.Password})
	defer func() { _ = client.Close() }()
	err := client.XGroupCreateMkStream(ctx, stream, s.Group, "$").Err()
	if err != nil {
		// Ignore BUSYGROUP errors (group already exists)
		if strings.Contains(err.Error(), "BUSYGROUP") {
			return nil
		}
		return err
	}
	logger.Info().Str("stream", stream).Str("group", s.Group).Msg("created redis consumer group at $ (tail)")
	return nil
}
