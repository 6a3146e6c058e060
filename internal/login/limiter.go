package login

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipLimiter allows a burst of attempts per address, refilled over window.
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*ipEntry
	attempts int
	every    rate.Limit
	window   time.Duration
}

type ipEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newIPLimiter(attempts int, window time.Duration) *ipLimiter {
	attempts = max(attempts, 1)
	return &ipLimiter{
		limiters: make(map[string]*ipEntry),
		attempts: attempts,
		every:    rate.Every(window / time.Duration(attempts)),
		window:   window,
	}
}

func (l *ipLimiter) Allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.limiters[ip]
	if !ok {
		e = &ipEntry{lim: rate.NewLimiter(l.every, l.attempts)}
		l.limiters[ip] = e
	}
	e.lastSeen = now
	return e.lim.AllowN(now, 1)
}

// Sweep forgets addresses idle for a full window.
func (l *ipLimiter) Sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for ip, e := range l.limiters {
		if now.Sub(e.lastSeen) >= l.window {
			delete(l.limiters, ip)
		}
	}
}

func (l *ipLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
