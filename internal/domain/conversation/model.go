package conversation

import (
	"context"
	"time"
)

// Turn is one answered question. Turns are immutable once appended.
type Turn struct {
	UserQuery  string    `json:"user"`
	AIResponse string    `json:"ai"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store keeps the ordered turn log of each application request.
// Append must be atomic at the store level: concurrent appends for the same
// request both land and never overwrite each other.
type Store interface {
	// Load returns the turns in append order. An unknown request yields an empty log.
	Load(ctx context.Context, requestID string) ([]Turn, error)
	Append(ctx context.Context, requestID string, turn Turn) error
}

// Locker serialises chat turns per request id. Different ids never contend.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// NoopLocker relies on the store's atomic append alone.
type NoopLocker struct{}

// Lock implements Locker.
func (NoopLocker) Lock(context.Context, string) (func(), error) {
	return func() {}, nil
}
