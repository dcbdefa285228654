// Package ratelimit implements fixed-window request limits at user,
// origin and global scopes against the shared counter store.
//
// Fixed windows admit a burst of up to 2x the limit around a window
// boundary; accepted for simplicity over sliding windows.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lumenlearn/lumen/internal/domain"
)

const counterKeyPrefix = domain.KeyPrefix + "rate:"

// Window is the fixed rate-limit window length.
const Window = time.Hour

// store is the consumer interface for window counters.
type store interface {
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Limits holds the per-window request budgets. A zero limit disables the
// scope.
type Limits struct {
	UserPerWindow   int64
	OriginPerWindow int64
	GlobalPerWindow int64
}

// Limiter enforces fixed-window limits via atomic INCR against the shared
// store. Window keys embed the window start, so counters reset by key
// rollover; TTL only garbage-collects old windows.
type Limiter struct {
	store      store
	limits     Limits
	rejections *prometheus.CounterVec
	now        func() time.Time
}

// New creates a rate limiter. rejections is a counter vec with label
// "scope", passed explicitly.
func New(s store, limits Limits, rejections *prometheus.CounterVec) *Limiter {
	return &Limiter{
		store:      s,
		limits:     limits,
		rejections: rejections,
		now:        time.Now,
	}
}

// WithClock overrides the time source (tests).
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

type scopeCheck struct {
	name  string
	key   string
	limit int64
}

// Allow atomically checks and increments every applicable scope counter.
// It returns false without consuming budget when any scope is exhausted:
// already-incremented scopes are rolled back so a rejected request never
// counts against a window.
func (l *Limiter) Allow(ctx context.Context, userID, origin string) (bool, error) {
	windowStart := l.now().Truncate(Window).Unix()

	var scopes []scopeCheck
	if userID != "" && l.limits.UserPerWindow > 0 {
		scopes = append(scopes, scopeCheck{
			name:  "user",
			key:   fmt.Sprintf("%suser:%s:%d", counterKeyPrefix, userID, windowStart),
			limit: l.limits.UserPerWindow,
		})
	}
	if origin != "" && l.limits.OriginPerWindow > 0 {
		scopes = append(scopes, scopeCheck{
			name:  "origin",
			key:   fmt.Sprintf("%sorigin:%s:%d", counterKeyPrefix, origin, windowStart),
			limit: l.limits.OriginPerWindow,
		})
	}
	if l.limits.GlobalPerWindow > 0 {
		scopes = append(scopes, scopeCheck{
			name:  "global",
			key:   fmt.Sprintf("%sglobal:%d", counterKeyPrefix, windowStart),
			limit: l.limits.GlobalPerWindow,
		})
	}

	for i, sc := range scopes {
		n, err := l.store.IncrBy(ctx, sc.key, 1)
		if err != nil {
			l.rollback(ctx, scopes[:i])
			return false, fmt.Errorf("rate counter INCR %s: %w", sc.key, err)
		}

		// TTL only if the key is new in this window (NX - not reset on repeat).
		if err := l.store.Expire(ctx, sc.key, 2*Window, true); err != nil {
			l.rollback(ctx, scopes[:i+1])
			return false, fmt.Errorf("rate counter EXPIRE %s: %w", sc.key, err)
		}

		if n > sc.limit {
			l.rollback(ctx, scopes[:i+1])
			if l.rejections != nil {
				l.rejections.WithLabelValues(sc.name).Inc()
			}
			return false, nil
		}
	}

	return true, nil
}

// rollback undoes increments applied before a rejection or error.
func (l *Limiter) rollback(ctx context.Context, scopes []scopeCheck) {
	for _, sc := range scopes {
		_, _ = l.store.IncrBy(ctx, sc.key, -1)
	}
}
