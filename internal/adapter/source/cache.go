package source

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/cyclist-scatter/internal/domain"
	"github.com/couchcryptid/cyclist-scatter/internal/observability"
)

// Fetcher returns the raw dataset.
type Fetcher interface {
	Fetch(ctx context.Context) ([]domain.RawRecord, error)
}

// CachedSource wraps a Fetcher and reuses its last successful result until
// the TTL runs out. Concurrent callers share a single upstream fetch.
type CachedSource struct {
	inner   Fetcher
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics

	mu        sync.Mutex
	records   []domain.RawRecord
	fetchedAt time.Time
}

// NewCachedSource creates a cache decorator around a fetcher.
func NewCachedSource(inner Fetcher, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
	}
}

func (c *CachedSource) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.records != nil && c.clock.Since(c.fetchedAt) < c.ttl {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cloneRecords(c.records), nil
	}
	c.metrics.CacheLookups.WithLabelValues("miss").Inc()

	records, err := c.inner.Fetch(ctx)
	if err != nil {
		// Failures are not cached so the next call retries upstream.
		return nil, err
	}
	c.records = cloneRecords(records)
	c.fetchedAt = c.clock.Now()
	return records, nil
}

// Invalidate drops the cached dataset.
func (c *CachedSource) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = nil
}

func cloneRecords(in []domain.RawRecord) []domain.RawRecord {
	out := make([]domain.RawRecord, len(in))
	copy(out, in)
	return out
}
