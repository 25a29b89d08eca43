package vault

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// unlockLimiter applies a token bucket per vault ID to password unlock
// attempts. Buckets idle past ttl are evicted on the next use.
type unlockLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	ttl     time.Duration
	entries map[string]*limBucket
}

type limBucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newUnlockLimiter(limit rate.Limit, burst int, ttl time.Duration) *unlockLimiter {
	return &unlockLimiter{
		limit:   limit,
		burst:   burst,
		ttl:     ttl,
		entries: make(map[string]*limBucket),
	}
}

func (l *unlockLimiter) allow(vaultID string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	b := l.entries[vaultID]
	if b == nil {
		b = &limBucket{lim: rate.NewLimiter(l.limit, l.burst), lastSeen: now}
		l.entries[vaultID] = b
	}
	b.lastSeen = now

	for k, v := range l.entries {
		if now.Sub(v.lastSeen) > l.ttl {
			delete(l.entries, k)
		}
	}
	return b.lim.Allow()
}
