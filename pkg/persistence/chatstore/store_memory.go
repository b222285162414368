package chatstore

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// InMemoryStore is a size-limited, in-memory Store. History is lost on
// restart.
type InMemoryStore struct {
	mu           sync.Mutex
	maxExchanges int
	sessions     map[string][]Exchange
}

var _ Store = &InMemoryStore{}

func NewInMemoryStore(maxExchanges int) *InMemoryStore {
	if maxExchanges <= 0 {
		maxExchanges = DefaultMaxExchanges
	}
	return &InMemoryStore{
		maxExchanges: maxExchanges,
		sessions:     map[string][]Exchange{},
	}
}

func (s *InMemoryStore) Close() error { return nil }

func (s *InMemoryStore) Append(_ context.Context, sessionID string, ex Exchange) error {
	if s == nil {
		return errors.New("in-memory chat store: nil store")
	}
	id, err := normalizeSessionID(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	xs := append(s.sessions[id], stamp(ex))
	if len(xs) > s.maxExchanges {
		xs = append([]Exchange(nil), xs[len(xs)-s.maxExchanges:]...)
	}
	s.sessions[id] = xs
	return nil
}

func (s *InMemoryStore) History(_ context.Context, sessionID string, limit int) ([]Exchange, error) {
	if s == nil {
		return nil, errors.New("in-memory chat store: nil store")
	}
	id, err := normalizeSessionID(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return tail(s.sessions[id], limit), nil
}

func (s *InMemoryStore) Clear(_ context.Context, sessionID string) error {
	if s == nil {
		return errors.New("in-memory chat store: nil store")
	}
	id, err := normalizeSessionID(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
