package limiter

import (
	"sync"
	"time"
)

// idleTimeout is how long an untouched bucket is kept
const idleTimeout = 5 * time.Minute

// bucket is a token bucket for one client.
// Tokens refill continuously at rate per second up to capacity.
type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// MemoryLimiter keeps one token bucket per client in process memory.
// It suits a single server; use RedisLimiter to share limits.
type MemoryLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*bucket
	rate        float64 // tokens per second
	capacity    float64 // burst size
	lastCleanup time.Time
	now         func() time.Time
}

// NewMemoryLimiter allows requests per window for each client, with bursts
// of up to requests
func NewMemoryLimiter(requests int, window time.Duration) *MemoryLimiter {
	if requests < 1 {
		requests = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &MemoryLimiter{
		buckets:     make(map[string]*bucket),
		rate:        float64(requests) / window.Seconds(),
		capacity:    float64(requests),
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

// Allow takes one token from the client's bucket
func (l *MemoryLimiter) Allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.cleanup(now)

	b, ok := l.buckets[client]
	if !ok {
		b = &bucket{tokens: l.capacity, lastSeen: now}
		l.buckets[client] = b
	} else {
		elapsed := now.Sub(b.lastSeen).Seconds()
		b.tokens = min(b.tokens+elapsed*l.rate, l.capacity)
		b.lastSeen = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// cleanup drops idle buckets, at most once per idleTimeout.
// Must be called with mu held.
func (l *MemoryLimiter) cleanup(now time.Time) {
	if now.Sub(l.lastCleanup) < idleTimeout {
		return
	}
	for client, b := range l.buckets {
		if now.Sub(b.lastSeen) >= idleTimeout {
			delete(l.buckets, client)
		}
	}
	l.lastCleanup = now
}

// Len returns the number of tracked clients
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

// Close is a no-op for the in-memory limiter
func (l *MemoryLimiter) Close() error {
	return nil
}
