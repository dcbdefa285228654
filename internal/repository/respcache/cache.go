// Package respcache is a content-addressed cache of generated responses
// with TTL and single-flight deduplication: at most one in-flight
// computation per key, all concurrent requesters sharing its outcome.
package respcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lumenlearn/lumen/internal/db"
	"github.com/lumenlearn/lumen/internal/domain"
)

const cacheKeyPrefix = domain.KeyPrefix + "resp:"

// store is the consumer interface for cached values.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// ComputeFunc produces the value for a cache miss.
type ComputeFunc func(ctx context.Context) ([]byte, error)

// flight is one in-progress computation. The baton channel (capacity 1)
// carries leadership: whoever receives from it runs the computation. When
// the leader's context is cancelled mid-compute, it returns the baton so
// a waiter can take over instead of leaving the key in-flight forever.
type flight struct {
	refs  int
	done  chan struct{}
	val   []byte
	err   error
	baton chan struct{}
}

// Cache implements get-or-compute with persistent TTL storage and
// process-wide single-flight deduplication.
type Cache struct {
	store      store
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger

	mu      sync.Mutex
	flights map[string]*flight
}

// New creates a response cache. cacheTotal is a counter vec with label
// "result" ("hit"/"miss"/"wait"), passed explicitly.
func New(s store, cacheTotal *prometheus.CounterVec, logger *zap.Logger) *Cache {
	return &Cache{
		store:      s,
		cacheTotal: cacheTotal,
		logger:     logger,
		flights:    map[string]*flight{},
	}
}

// Key derives a deterministic cache key from the semantic request parts.
// Identical logical requests hash identically regardless of prompt text.
func Key(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(h[:])
}

// GetOrCompute returns the cached value for key, or runs compute exactly
// once across all concurrent callers and caches its result for ttl.
// A compute failure propagates to every waiter and is never cached.
func (c *Cache) GetOrCompute(
	ctx context.Context, key string, ttl time.Duration, compute ComputeFunc,
) ([]byte, error) {
	storeKey := cacheKeyPrefix + key

	if data, err := c.store.Get(ctx, storeKey); err == nil {
		c.incCache("hit")
		return data, nil
	} else if !errors.Is(err, db.ErrKeyNotFound) {
		// Cache store trouble degrades to computing; dedup still holds.
		c.logger.Warn("Response cache read failed", zap.String("key", key), zap.Error(err))
	}

	c.mu.Lock()
	f, ok := c.flights[key]
	if !ok {
		f = &flight{
			done:  make(chan struct{}),
			baton: make(chan struct{}, 1),
		}
		f.baton <- struct{}{}
		c.flights[key] = f
		c.incCache("miss")
	} else {
		c.incCache("wait")
	}
	f.refs++
	c.mu.Unlock()

	defer c.release(key, f)

	for {
		select {
		case <-f.done:
			return f.val, f.err

		case <-ctx.Done():
			return nil, ctx.Err()

		case <-f.baton:
			val, err := compute(ctx)
			if err != nil && ctx.Err() != nil {
				// Cancelled mid-compute: hand leadership to the next waiter.
				f.baton <- struct{}{}
				return nil, ctx.Err()
			}

			if err == nil {
				if serr := c.store.SetWithTTL(ctx, storeKey, val, ttl); serr != nil {
					c.logger.Warn("Response cache write failed", zap.String("key", key), zap.Error(serr))
				}
			}

			c.mu.Lock()
			f.val, f.err = val, err
			delete(c.flights, key)
			c.mu.Unlock()
			close(f.done)

			return val, err
		}
	}
}

// release drops a participant's reference. When the last one leaves an
// unfinished flight (leader cancelled, no waiters), the in-flight marker
// is cleared so a later request can start fresh.
func (c *Cache) release(key string, f *flight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f.refs--
	if f.refs == 0 {
		if cur, ok := c.flights[key]; ok && cur == f {
			delete(c.flights, key)
		}
	}
}

func (c *Cache) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}
