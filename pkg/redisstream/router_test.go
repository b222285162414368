package redisstream

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestBuild_DisabledUsesGoChannel(t *testing.T) {
	ps, err := Build(Settings{}, watermill.NopLogger{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ps.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	msgs, err := ps.Subscriber.Subscribe(ctx, "t")
	require.NoError(t, err)

	require.NoError(t, ps.Publisher.Publish("t", message.NewMessage("1", []byte("hello"))))

	select {
	case msg := <-msgs:
		require.Equal(t, "hello", string(msg.Payload))
		msg.Ack()
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}

func TestWatermillLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewWatermillLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	l.With(watermill.LogFields{"topic": "chat"}).Info("subscribed", nil)
	l.Error("failed", errors.New("boom"), watermill.LogFields{"n": 1})
	l.Trace("hidden", nil)

	out := buf.String()
	require.Contains(t, out, `"topic":"chat"`)
	require.Contains(t, out, `"component":"watermill"`)
	require.Contains(t, out, `"error":"boom"`)
	require.NotContains(t, out, "hidden")
}
