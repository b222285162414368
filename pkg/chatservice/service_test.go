package chatservice

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/go-go-golems/embedbot/pkg/events"
	"github.com/go-go-golems/embedbot/pkg/persistence/chatstore"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type recordingEngine struct {
	reply     string
	err       error
	histories [][]chatstore.Exchange
}

func (e *recordingEngine) Reply(_ context.Context, message string, history []chatstore.Exchange) (string, error) {
	e.histories = append(e.histories, history)
	if e.err != nil {
		return "", e.err
	}
	if e.reply != "" {
		return e.reply, nil
	}
	return "re: " + message, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.ExchangeEvent
}

func (p *recordingPublisher) PublishExchange(ev events.ExchangeEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate("hi"))
	require.ErrorIs(t, Validate(""), ErrInvalidMessage)
	require.ErrorIs(t, Validate("   \n"), ErrInvalidMessage)
	require.NoError(t, Validate(strings.Repeat("é", MaxMessageLength)))
	require.ErrorIs(t, Validate(strings.Repeat("a", MaxMessageLength+1)), ErrInvalidMessage)
}

func TestChat_Stateless(t *testing.T) {
	eng := &recordingEngine{}
	store := chatstore.NewInMemoryStore(10)
	svc := New(eng, WithStore(store))

	reply, err := svc.Chat(context.Background(), Request{Message: "Hello"})
	require.NoError(t, err)
	require.Equal(t, "re: Hello", reply)
	require.Nil(t, eng.histories[0])
}

func TestChat_SessionHistoryIsPassedAndSaved(t *testing.T) {
	ctx := context.Background()
	eng := &recordingEngine{}
	store := chatstore.NewInMemoryStore(10)
	svc := New(eng, WithStore(store), WithHistoryLimit(2))

	for _, m := range []string{"one", "two", "three"} {
		_, err := svc.Chat(ctx, Request{Message: m, SessionID: "s1"})
		require.NoError(t, err)
	}
	require.Empty(t, eng.histories[0])
	require.Len(t, eng.histories[1], 1)
	require.Equal(t, "one", eng.histories[1][0].Human)
	require.Len(t, eng.histories[2], 2)

	h, err := store.History(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, h, 3)
	require.Equal(t, "re: three", h[2].AI)
}

func TestChat_ResetClearsHistoryFirst(t *testing.T) {
	ctx := context.Background()
	eng := &recordingEngine{}
	store := chatstore.NewInMemoryStore(10)
	svc := New(eng, WithStore(store))

	_, err := svc.Chat(ctx, Request{Message: "one", SessionID: "s1"})
	require.NoError(t, err)
	_, err = svc.Chat(ctx, Request{Message: "fresh", SessionID: "s1", Reset: true})
	require.NoError(t, err)

	require.Empty(t, eng.histories[1])
	h, err := store.History(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, h, 1)
	require.Equal(t, "fresh", h[0].Human)
}

func TestChat_EngineFailure(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	store := chatstore.NewInMemoryStore(10)
	svc := New(&recordingEngine{err: errors.New("upstream down")}, WithStore(store), WithPublisher(pub))

	_, err := svc.Chat(ctx, Request{Message: "Hello", SessionID: "s1"})
	require.ErrorIs(t, err, ErrEngine)
	require.NotErrorIs(t, err, ErrInvalidMessage)

	h, err := store.History(ctx, "s1", 0)
	require.NoError(t, err)
	require.Empty(t, h)

	require.Len(t, pub.events, 1)
	require.Equal(t, events.StatusError, pub.events[0].Status)
	require.Contains(t, pub.events[0].Error, "upstream down")
}

func TestChat_EngineFailureKeepsCause(t *testing.T) {
	svc := New(&recordingEngine{err: errors.Wrap(context.Canceled, "completion")})

	_, err := svc.Chat(context.Background(), Request{Message: "Hello"})
	require.ErrorIs(t, err, ErrEngine)
	require.ErrorIs(t, err, context.Canceled)

	var engineErr *EngineError
	require.ErrorAs(t, err, &engineErr)
	require.Contains(t, err.Error(), "completion")
}

func TestChat_PublishesEvents(t *testing.T) {
	pub := &recordingPublisher{}
	svc := New(&recordingEngine{reply: "Hi"}, WithPublisher(pub))

	_, err := svc.Chat(context.Background(), Request{Message: "Hello", SessionID: "s9"})
	require.NoError(t, err)
	_, err = svc.Chat(context.Background(), Request{Message: " "})
	require.ErrorIs(t, err, ErrInvalidMessage)

	require.Len(t, pub.events, 2)
	require.Equal(t, events.StatusOK, pub.events[0].Status)
	require.Equal(t, "Hi", pub.events[0].Reply)
	require.Equal(t, "s9", pub.events[0].SessionID)
	require.Equal(t, events.StatusInvalid, pub.events[1].Status)
}

func TestClearSession(t *testing.T) {
	ctx := context.Background()
	store := chatstore.NewInMemoryStore(10)
	svc := New(&recordingEngine{}, WithStore(store))
	_, err := svc.Chat(ctx, Request{Message: "one", SessionID: "s1"})
	require.NoError(t, err)

	require.NoError(t, svc.ClearSession(ctx, "s1"))
	h, err := store.History(ctx, "s1", 0)
	require.NoError(t, err)
	require.Empty(t, h)

	require.NoError(t, New(&recordingEngine{}).ClearSession(ctx, "s1"))
}
