package bureau

import (
	"context"
	"errors"
	"time"

	lru "github.com/hashicorp/golang-lru"

	domain "github.com/creditx/creditx-server/internal/domain/bureau"
	"github.com/creditx/creditx-server/internal/metrics"
)

// CachedProvider memoizes lookups, including misses, in an LRU with a TTL.
// The LRU does its own locking.
type CachedProvider struct {
	next  domain.Provider
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

type cacheEntry struct {
	record    domain.Record
	missing   bool
	expiresAt time.Time
}

// NewCachedProvider wraps next with a cache of maxSize entries.
func NewCachedProvider(next domain.Provider, maxSize int, ttl time.Duration) (*CachedProvider, error) {
	cache, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &CachedProvider{
		next:  next,
		cache: cache,
		ttl:   ttl,
		now:   time.Now,
	}, nil
}

// Lookup serves from cache when fresh. Errors other than ErrNotFound are never cached.
func (p *CachedProvider) Lookup(ctx context.Context, applicantID string) (domain.Record, error) {
	if entry, ok := p.get(applicantID); ok {
		metrics.BureauLookupsTotal.WithLabelValues("cache_hit").Inc()
		if entry.missing {
			return nil, domain.ErrNotFound
		}
		return entry.record, nil
	}

	record, err := p.next.Lookup(ctx, applicantID)
	switch {
	case err == nil:
		metrics.BureauLookupsTotal.WithLabelValues("found").Inc()
		p.set(applicantID, cacheEntry{record: record})
		return record, nil
	case errors.Is(err, domain.ErrNotFound):
		metrics.BureauLookupsTotal.WithLabelValues("not_found").Inc()
		p.set(applicantID, cacheEntry{missing: true})
		return nil, err
	default:
		metrics.BureauLookupsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
}

func (p *CachedProvider) get(key string) (cacheEntry, bool) {
	val, found := p.cache.Get(key)
	if !found {
		return cacheEntry{}, false
	}
	entry := val.(cacheEntry)
	if p.now().After(entry.expiresAt) {
		// only evict the entry we saw, not one a concurrent lookup just refreshed
		if cur, ok := p.cache.Peek(key); ok && cur.(cacheEntry).expiresAt.Equal(entry.expiresAt) {
			p.cache.Remove(key)
		}
		return cacheEntry{}, false
	}
	return entry, true
}

func (p *CachedProvider) set(key string, entry cacheEntry) {
	entry.expiresAt = p.now().Add(p.ttl)
	p.cache.Add(key, entry)
}

var _ domain.Provider = (*CachedProvider)(nil)
