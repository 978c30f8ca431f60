// Package ratelimiter applies per-key token buckets. The daemon uses it to
// throttle unwrap and share attempts per identity, so a failed unwrap stays
// a denial instead of becoming a guessing loop.
package ratelimiter

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// KeyLimiter applies one token bucket per key and evicts idle buckets on a
// periodic sweep.
type KeyLimiter struct {
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	mu        sync.Mutex
	byKey     map[string]*bucket
	nextSweep time.Time
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a key-based limiter; nil (allow-all) if args are invalid.
func New(rps float64, burst int, idleTTL time.Duration) *KeyLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &KeyLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		idleTTL: idleTTL,
		byKey:   make(map[string]*bucket),
	}
}

// Allow reports whether one token can be consumed for key at now.
func (l *KeyLimiter) Allow(key string, now time.Time) bool {
	if l == nil {
		return true
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.byKey[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byKey[key] = b
	}
	b.lastSeen = now

	if now.After(l.nextSweep) {
		cutoff := now.Add(-l.idleTTL)
		for k, v := range l.byKey {
			if v.lastSeen.Before(cutoff) {
				delete(l.byKey, k)
			}
		}
		l.nextSweep = now.Add(l.idleTTL / 2)
	}

	return b.limiter.AllowN(now, 1)
}
