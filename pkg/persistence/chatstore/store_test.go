package chatstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// exerciseStore checks the behavior every backend shares. maxExchanges must
// be 5.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	h, err := s.History(ctx, "unknown", 10)
	require.NoError(t, err)
	require.Empty(t, h)

	require.Error(t, s.Append(ctx, "  ", Exchange{Human: "x", AI: "y"}))

	for i := 1; i <= 3; i++ {
		require.NoError(t, s.Append(ctx, "s1", Exchange{Human: fmt.Sprintf("q%d", i), AI: fmt.Sprintf("a%d", i)}))
	}
	require.NoError(t, s.Append(ctx, "s2", Exchange{Human: "other", AI: "session"}))

	h, err = s.History(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, h, 3)
	require.Equal(t, "q1", h[0].Human)
	require.Equal(t, "a3", h[2].AI)
	require.NotZero(t, h[0].CreatedAtMs)

	h, err = s.History(ctx, "s1", 2)
	require.NoError(t, err)
	require.Len(t, h, 2)
	require.Equal(t, "q2", h[0].Human)
	require.Equal(t, "q3", h[1].Human)

	for i := 4; i <= 7; i++ {
		require.NoError(t, s.Append(ctx, "s1", Exchange{Human: fmt.Sprintf("q%d", i), AI: fmt.Sprintf("a%d", i)}))
	}
	h, err = s.History(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, h, 5)
	require.Equal(t, "q3", h[0].Human)
	require.Equal(t, "q7", h[4].Human)

	require.NoError(t, s.Clear(ctx, "s1"))
	h, err = s.History(ctx, "s1", 0)
	require.NoError(t, err)
	require.Empty(t, h)

	h, err = s.History(ctx, "s2", 0)
	require.NoError(t, err)
	require.Len(t, h, 1)

	// clearing an unknown session is fine
	require.NoError(t, s.Clear(ctx, "never-seen"))
}

func TestInMemoryStore(t *testing.T) {
	exerciseStore(t, NewInMemoryStore(5))
}

func TestSQLiteStore(t *testing.T) {
	dsn, err := SQLiteDSNForFile(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	s, err := NewSQLiteStore(dsn, 5)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	exerciseStore(t, s)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	dsn, err := SQLiteDSNForFile(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	ctx := context.Background()

	s, err := NewSQLiteStore(dsn, 5)
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, "s1", Exchange{Human: "hi", AI: "hello"}))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(dsn, 5)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	h, err := s.History(ctx, "s1", 10)
	require.NoError(t, err)
	require.Equal(t, []Exchange{{Human: "hi", AI: "hello", CreatedAtMs: h[0].CreatedAtMs}}, h)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("EMBEDBOT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("EMBEDBOT_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	prefix := "embedbot-test:" + uuid.NewString() + ":"
	s := NewRedisStore(client, prefix, 5, time.Minute)
	t.Cleanup(func() {
		ctx := context.Background()
		for _, id := range []string{"s1", "s2"} {
			_ = s.Clear(ctx, id)
		}
		_ = s.Close()
	})

	exerciseStore(t, s)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Settings{})
	require.NoError(t, err)
	require.IsType(t, &InMemoryStore{}, s)

	s, err = Open(ctx, Settings{Backend: "SQLite", SQLitePath: filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	require.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Settings{Backend: "sqlite"})
	require.Error(t, err)

	_, err = Open(ctx, Settings{Backend: "mongo"})
	require.Error(t, err)
}
