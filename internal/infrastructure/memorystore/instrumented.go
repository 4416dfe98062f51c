package memorystore

import (
	"context"

	"github.com/creditx/creditx-server/internal/domain/conversation"
	"github.com/creditx/creditx-server/internal/metrics"
)

// Instrumented counts operations of the wrapped store by backend.
type Instrumented struct {
	next    conversation.Store
	backend string
}

// Instrument wraps store with operation counters.
func Instrument(store conversation.Store, backend string) *Instrumented {
	return &Instrumented{next: store, backend: backend}
}

// Load implements conversation.Store.
func (s *Instrumented) Load(ctx context.Context, requestID string) ([]conversation.Turn, error) {
	turns, err := s.next.Load(ctx, requestID)
	metrics.MemoryOpsTotal.WithLabelValues(s.backend, "load", metrics.Status(err)).Inc()
	return turns, err
}

// Append implements conversation.Store.
func (s *Instrumented) Append(ctx context.Context, requestID string, turn conversation.Turn) error {
	err := s.next.Append(ctx, requestID, turn)
	metrics.MemoryOpsTotal.WithLabelValues(s.backend, "append", metrics.Status(err)).Inc()
	return err
}
