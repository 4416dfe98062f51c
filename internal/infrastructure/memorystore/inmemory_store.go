// Package memorystore holds the conversation log backends.
package memorystore

import (
	"context"
	"sync"

	"github.com/creditx/creditx-server/internal/domain/conversation"
)

// InMemoryStore keeps conversation logs in process memory.
type InMemoryStore struct {
	mu   sync.RWMutex
	logs map[string][]conversation.Turn
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{logs: map[string][]conversation.Turn{}}
}

// Load returns a copy of the request's turns.
func (s *InMemoryStore) Load(ctx context.Context, requestID string) ([]conversation.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.logs[requestID]
	out := make([]conversation.Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// Append adds turn to the end of the request's log.
func (s *InMemoryStore) Append(ctx context.Context, requestID string, turn conversation.Turn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[requestID] = append(s.logs[requestID], turn)
	return nil
}

var _ conversation.Store = (*InMemoryStore)(nil)
