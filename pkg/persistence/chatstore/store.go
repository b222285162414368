package chatstore

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Exchange is one human message and the reply it received.
type Exchange struct {
	Human       string `json:"human"`
	AI          string `json:"ai"`
	CreatedAtMs int64  `json:"created_at_ms"`
}

// Store keeps per-session exchange history, oldest first.
//
// History returns at most limit of the most recent exchanges in chronological
// order; limit <= 0 returns everything kept. Unknown sessions have an empty
// history. Implementations are safe for concurrent use.
type Store interface {
	Append(ctx context.Context, sessionID string, ex Exchange) error
	History(ctx context.Context, sessionID string, limit int) ([]Exchange, error)
	Clear(ctx context.Context, sessionID string) error
	Close() error
}

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"

	DefaultMaxExchanges = 50
)

type Settings struct {
	Backend       string        `yaml:"backend" env:"BACKEND"`
	SQLitePath    string        `yaml:"sqlite_path" env:"SQLITE_PATH"`
	RedisAddr     string        `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" env:"REDIS_DB"`
	RedisPrefix   string        `yaml:"redis_prefix" env:"REDIS_PREFIX"`
	MaxExchanges  int           `yaml:"max_exchanges" env:"MAX_EXCHANGES"`
	TTL           time.Duration `yaml:"ttl" env:"TTL"`
}

func DefaultSettings() Settings {
	return Settings{
		Backend:      BackendMemory,
		SQLitePath:   "embedbot.db",
		RedisAddr:    "localhost:6379",
		RedisPrefix:  "embedbot:session:",
		MaxExchanges: DefaultMaxExchanges,
		TTL:          24 * time.Hour,
	}
}

// Open creates the store selected by s.Backend.
func Open(ctx context.Context, s Settings) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(s.Backend)) {
	case "", BackendMemory:
		return NewInMemoryStore(s.MaxExchanges), nil
	case BackendSQLite:
		dsn, err := SQLiteDSNForFile(s.SQLitePath)
		if err != nil {
			return nil, err
		}
		return NewSQLiteStore(dsn, s.MaxExchanges)
	case BackendRedis:
		return OpenRedisStore(ctx, s)
	default:
		return nil, errors.Errorf("chatstore: unknown backend %q", s.Backend)
	}
}

func normalizeSessionID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.New("chatstore: session id is empty")
	}
	return id, nil
}

func stamp(ex Exchange) Exchange {
	if ex.CreatedAtMs == 0 {
		ex.CreatedAtMs = time.Now().UnixMilli()
	}
	return ex
}

// tail returns the last limit entries of xs.
func tail(xs []Exchange, limit int) []Exchange {
	if limit > 0 && len(xs) > limit {
		xs = xs[len(xs)-limit:]
	}
	out := make([]Exchange, len(xs))
	copy(out, xs)
	return out
}
