package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"savewise/pkg/errors"
)

// Limiter is a token bucket sized in requests per minute
type Limiter struct {
	limiter *rate.Limiter
	name    string
}

// NewLimiter creates a new rate limiter
// requestsPerMinute: maximum number of requests allowed per minute
func NewLimiter(name string, requestsPerMinute int) *Limiter {
	rps := float64(requestsPerMinute) / 60.0

	// Allow burst of 10% of per-minute limit
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}

	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    name,
	}
}

// Wait blocks until the rate limiter allows the request
func (l *Limiter) Wait(ctx context.Context) error {
	if err := l.limiter.Wait(ctx); err != nil {
		return errors.Wrapf(err, "rate limiter %s", l.name)
	}
	return nil
}

// Allow checks if a request is allowed without blocking
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

type entry struct {
	limiter  *Limiter
	lastSeen time.Time
}

// KeyedLimiter keeps one limiter per caller key (client address)
type KeyedLimiter struct {
	name      string
	perMinute int
	idleTTL   time.Duration

	mu       sync.Mutex
	limiters map[string]*entry
}

// NewKeyedLimiter creates a per-key limiter. Keys idle for longer than
// idleTTL are forgotten on the next Allow.
func NewKeyedLimiter(name string, requestsPerMinute int, idleTTL time.Duration) *KeyedLimiter {
	return &KeyedLimiter{
		name:      name,
		perMinute: requestsPerMinute,
		idleTTL:   idleTTL,
		limiters:  make(map[string]*entry),
	}
}

// Allow reports whether key may proceed now
func (k *KeyedLimiter) Allow(key string) bool {
	now := time.Now()

	k.mu.Lock()
	e, ok := k.limiters[key]
	if !ok {
		e = &entry{limiter: NewLimiter(k.name, k.perMinute)}
		k.limiters[key] = e
	}
	e.lastSeen = now
	k.evict(now)
	k.mu.Unlock()

	return e.limiter.Allow()
}

// Len returns the number of tracked keys
func (k *KeyedLimiter) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.limiters)
}

// evict must be called with mu held
func (k *KeyedLimiter) evict(now time.Time) {
	if k.idleTTL <= 0 {
		return
	}
	for key, e := range k.limiters {
		if now.Sub(e.lastSeen) > k.idleTTL {
			delete(k.limiters, key)
		}
	}
}
