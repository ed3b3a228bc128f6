package httpapi

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// loginBurst attempts are allowed at once, refilled one per loginRefill.
	loginBurst  = 10
	loginRefill = 30 * time.Second

	limiterPruneSize = 1000
	limiterIdleAge   = 15 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// loginLimiter throttles credential attempts per key (client ip, login name).
type loginLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	entries map[string]*limiterEntry
}

func newLoginLimiter() *loginLimiter {
	return &loginLimiter{
		limit:   rate.Every(loginRefill),
		burst:   loginBurst,
		entries: make(map[string]*limiterEntry),
	}
}

func (l *loginLimiter) Allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) > limiterPruneSize {
		cutoff := now.Add(-limiterIdleAge)
		for k, e := range l.entries {
			if e.lastSeen.Before(cutoff) {
				delete(l.entries, k)
			}
		}
	}

	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}
