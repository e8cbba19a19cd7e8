package resilience

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig configures the keyed rate limiter.
type RateLimiterConfig struct {
	// PerMinute is the sustained number of operations allowed per key.
	// Default: 30
	PerMinute int

	// Burst is the bucket size per key.
	// Default: 10
	Burst int

	// EntryTTL is how long an idle key is remembered.
	// Default: 10 minutes
	EntryTTL time.Duration

	// Now overrides the clock. Default: time.Now
	Now func() time.Time
}

// KeyedRateLimiter keeps one token bucket per key (typically a client address).
type KeyedRateLimiter struct {
	config RateLimiterConfig
	every  rate.Limit

	mu        sync.Mutex
	entries   map[string]*limiterEntry
	lastPrune time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewKeyedRateLimiter creates a new keyed rate limiter.
func NewKeyedRateLimiter(config RateLimiterConfig) *KeyedRateLimiter {
	if config.PerMinute <= 0 {
		config.PerMinute = 30
	}
	if config.Burst <= 0 {
		config.Burst = 10
	}
	if config.EntryTTL <= 0 {
		config.EntryTTL = 10 * time.Minute
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &KeyedRateLimiter{
		config:  config,
		every:   rate.Every(time.Minute / time.Duration(config.PerMinute)),
		entries: make(map[string]*limiterEntry),
	}
}

// Allow reports whether key may proceed now. When it may not, the returned
// duration is how long the caller should wait before retrying.
func (l *KeyedRateLimiter) Allow(key string) (bool, time.Duration) {
	now := l.config.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastPrune) > l.config.EntryTTL {
		l.pruneLocked(now)
		l.lastPrune = now
	}

	entry, ok := l.entries[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.every, l.config.Burst)}
		l.entries[key] = entry
	}
	entry.lastSeen = now

	r := entry.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, time.Minute
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Len returns the number of tracked keys.
func (l *KeyedRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *KeyedRateLimiter) pruneLocked(now time.Time) {
	for k, v := range l.entries {
		if now.Sub(v.lastSeen) > l.config.EntryTTL {
			delete(l.entries, k)
		}
	}
}
