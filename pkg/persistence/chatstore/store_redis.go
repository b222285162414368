package chatstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one list per session. Lists are trimmed to the newest
// maxExchanges entries and expire after ttl without writes.
type RedisStore struct {
	client       *redis.Client
	prefix       string
	maxExchanges int
	ttl          time.Duration
}

var _ Store = &RedisStore{}

func NewRedisStore(client *redis.Client, prefix string, maxExchanges int, ttl time.Duration) *RedisStore {
	if maxExchanges <= 0 {
		maxExchanges = DefaultMaxExchanges
	}
	return &RedisStore{
		client:       client,
		prefix:       prefix,
		maxExchanges: maxExchanges,
		ttl:          ttl,
	}
}

// OpenRedisStore connects using s and checks the connection.
func OpenRedisStore(ctx context.Context, s Settings) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     s.RedisAddr,
		Password: s.RedisPassword,
		DB:       s.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "redis chat store: ping %s", s.RedisAddr)
	}
	return NewRedisStore(client, s.RedisPrefix, s.MaxExchanges, s.TTL), nil
}

func (s *RedisStore) key(id string) string { return s.prefix + id }

func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *RedisStore) Append(ctx context.Context, sessionID string, ex Exchange) error {
	id, err := normalizeSessionID(sessionID)
	if err != nil {
		return err
	}
	b, err := json.Marshal(stamp(ex))
	if err != nil {
		return errors.Wrap(err, "redis chat store: marshal exchange")
	}

	key := s.key(id)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, b)
		pipe.LTrim(ctx, key, int64(-s.maxExchanges), -1)
		if s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
		return nil
	})
	return errors.Wrap(err, "redis chat store: append exchange")
}

func (s *RedisStore) History(ctx context.Context, sessionID string, limit int) ([]Exchange, error) {
	id, err := normalizeSessionID(sessionID)
	if err != nil {
		return nil, err
	}
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}
	vals, err := s.client.LRange(ctx, s.key(id), start, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "redis chat store: read history")
	}
	out := make([]Exchange, 0, len(vals))
	for _, v := range vals {
		var ex Exchange
		if err := json.Unmarshal([]byte(v), &ex); err != nil {
			return nil, errors.Wrap(err, "redis chat store: decode exchange")
		}
		out = append(out, ex)
	}
	return out, nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	id, err := normalizeSessionID(sessionID)
	if err != nil {
		return err
	}
	return errors.Wrap(s.client.Del(ctx, s.key(id)).Err(), "redis chat store: clear session")
}
