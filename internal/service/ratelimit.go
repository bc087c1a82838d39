package service

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucket is a per-key rate limiter. It is safe for concurrent use.
// Stale keys are removed in the background until Close is called.
type TokenBucket struct {
	mu       sync.Mutex
	limiters map[string]*keyLimiter
	rate     rate.Limit
	capacity int
	done     chan struct{}
	once     sync.Once
}

type keyLimiter struct {
	limiter *rate.Limiter
	last    time.Time
}

// NewTokenBucket creates a rate limiter that allows bursts of capacity per
// key, refilling at ratePerSecond tokens per second.
func NewTokenBucket(ratePerSecond float64, capacity int) *TokenBucket {
	tb := &TokenBucket{
		limiters: make(map[string]*keyLimiter),
		rate:     rate.Limit(ratePerSecond),
		capacity: capacity,
		done:     make(chan struct{}),
	}
	go tb.cleanup(5*time.Minute, 10*time.Minute)
	return tb
}

// Allow reports whether key may proceed, consuming one token if so.
func (tb *TokenBucket) Allow(key string) bool {
	tb.mu.Lock()
	kl, ok := tb.limiters[key]
	if !ok {
		kl = &keyLimiter{limiter: rate.NewLimiter(tb.rate, tb.capacity)}
		tb.limiters[key] = kl
	}
	kl.last = time.Now()
	tb.mu.Unlock()

	return kl.limiter.Allow()
}

// Close stops the background cleanup.
func (tb *TokenBucket) Close() {
	tb.once.Do(func() { close(tb.done) })
}

func (tb *TokenBucket) cleanup(every, idle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-tb.done:
			return
		case <-ticker.C:
			tb.mu.Lock()
			cutoff := time.Now().Add(-idle)
			for key, kl := range tb.limiters {
				if kl.last.Before(cutoff) {
					delete(tb.limiters, key)
				}
			}
			tb.mu.Unlock()
		}
	}
}
