// Package ratelimit provides a keyed token-bucket limiter.
// It supports both non-blocking (Allow) and blocking (Wait) operations.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Keyed manages one token bucket per key, e.g. per YouTube channel.
// Buckets idle for longer than the idle TTL are dropped by Sweep.
type Keyed struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   rate.Limit
	burst   int
	idleTTL time.Duration
	now     func() time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Option configures a Keyed limiter.
type Option func(*Keyed)

// WithClock replaces time.Now. Tests use it to step time deterministically.
func WithClock(now func() time.Time) Option {
	return func(k *Keyed) { k.now = now }
}

// WithIdleTTL sets how long an unused bucket survives a Sweep (default: 10m).
func WithIdleTTL(ttl time.Duration) Option {
	return func(k *Keyed) { k.idleTTL = ttl }
}

// New creates a keyed limiter allowing rps sustained requests per key with
// bursts of up to burst.
func New(rps float64, burst int, opts ...Option) *Keyed {
	k := &Keyed{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Allow reports whether a request for key may proceed now, consuming a token if so.
func (k *Keyed) Allow(key string) bool {
	now := k.now()
	return k.bucket(key, now).AllowN(now, 1)
}

// Wait blocks until a request for key is allowed or ctx is done.
func (k *Keyed) Wait(ctx context.Context, key string) error {
	return k.bucket(key, k.now()).Wait(ctx)
}

// Sweep drops buckets that have not been used within the idle TTL and
// returns how many were removed.
func (k *Keyed) Sweep() int {
	cutoff := k.now().Add(-k.idleTTL)

	k.mu.Lock()
	defer k.mu.Unlock()

	removed := 0
	for key, b := range k.buckets {
		if b.lastSeen.Before(cutoff) {
			delete(k.buckets, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live buckets.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.buckets)
}

func (k *Keyed) bucket(key string, now time.Time) *rate.Limiter {
	k.mu.Lock()
	defer k.mu.Unlock()

	b, ok := k.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}
