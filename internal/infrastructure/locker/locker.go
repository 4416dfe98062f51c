// Package locker serialises chat turns that share a request id.
package locker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/rs/zerolog"

	"github.com/creditx/creditx-server/internal/domain/conversation"
	"github.com/creditx/creditx-server/internal/infrastructure/cache"
)

// Local is an in-process keyed mutex. Entries are dropped once no holder or waiter remains.
type Local struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

// NewLocal creates an empty keyed mutex.
func NewLocal() *Local {
	return &Local{locks: map[string]*entry{}}
}

// Lock blocks until key is free or ctx is done.
func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.release(key, e)
		})
	}, nil
}

func (l *Local) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

func (l *Local) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// Redis is a distributed lock over redsync, for several server replicas sharing one store.
type Redis struct {
	client     *cache.RedisClient
	prefix     string
	ttl        time.Duration
	retryDelay time.Duration
	log        zerolog.Logger
}

// NewRedis creates a distributed locker. ttl bounds how long a crashed holder blocks others;
// a live holder keeps extending its mutex until it unlocks.
func NewRedis(client *cache.RedisClient, prefix string, ttl time.Duration, log zerolog.Logger) *Redis {
	return &Redis{
		client:     client,
		prefix:     prefix,
		ttl:        ttl,
		retryDelay: 250 * time.Millisecond,
		log:        log.With().Str("component", "redis-locker").Logger(),
	}
}

// Lock waits for the mutex of key until ctx is done.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	mutex := r.client.NewMutex(r.prefix+key, r.ttl, redsync.WithRetryDelay(r.retryDelay))
	if err := mutex.LockContext(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("lock %s: %w", key, ctx.Err())
		}
		return nil, fmt.Errorf("lock %s: %w", key, err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go r.keepAlive(mutex, key, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			if _, err := mutex.Unlock(); err != nil {
				r.log.Error().Err(err).Str("key", key).Msg("failed to unlock mutex")
			}
		})
	}, nil
}

// keepAlive extends the mutex at half its ttl so a long model call never outlives it.
func (r *Redis) keepAlive(mutex *redsync.Mutex, key string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	interval := r.ttl / 2
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			ok, err := mutex.ExtendContext(ctx)
			cancel()
			if err != nil || !ok {
				r.log.Warn().Err(err).Str("key", key).Msg("failed to extend mutex")
			}
		}
	}
}

var (
	_ conversation.Locker = (*Local)(nil)
	_ conversation.Locker = (*Redis)(nil)
)
