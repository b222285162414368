package events

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-go-golems/embedbot/pkg/redisstream"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func TestBus_PublishExchangeReachesHandler(t *testing.T) {
	bus, err := Build(redisstream.Settings{}, zerolog.Nop())
	require.NoError(t, err)

	got := make(chan ExchangeEvent, 1)
	bus.AddHandler("test", TopicChat, func(msg *message.Message) error {
		var raw map[string]any
		require.NoError(t, json.Unmarshal(msg.Payload, &raw))
		require.Contains(t, raw, "created_at_ms")
		var ev ExchangeEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &ev))
		got <- ev
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- bus.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-errCh
		_ = bus.Close()
	})

	select {
	case <-bus.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("router did not start")
	}

	require.NoError(t, bus.PublishExchange(ExchangeEvent{SessionID: "s1", Message: "hi", Reply: "hello", Status: StatusOK}))

	select {
	case ev := <-got:
		require.NotEmpty(t, ev.ID)
		require.NotZero(t, ev.CreatedAtMs)
		require.Equal(t, "s1", ev.SessionID)
		require.Equal(t, "hello", ev.Reply)
	case <-time.After(5 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestLogHandler(t *testing.T) {
	var buf syncBuffer
	h := LogHandler(zerolog.New(&buf))

	ok, _ := json.Marshal(ExchangeEvent{ID: "1", Status: StatusOK, Message: "hi"})
	require.NoError(t, h(message.NewMessage("1", ok)))
	failed, _ := json.Marshal(ExchangeEvent{ID: "2", Status: StatusError, Error: "upstream down"})
	require.NoError(t, h(message.NewMessage("2", failed)))
	require.NoError(t, h(message.NewMessage("3", []byte("not json"))))

	out := buf.String()
	require.Contains(t, out, `"level":"info"`)
	require.Contains(t, out, `"error":"upstream down"`)
	require.Contains(t, out, "dropping undecodable exchange event")
}
