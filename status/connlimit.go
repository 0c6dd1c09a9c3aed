package status

import (
	"sync"
	"time"
)

// ConnectionRateLimiter tracks session attempts per IP.
type ConnectionRateLimiter struct {
	mu      sync.Mutex
	entries map[string][]time.Time
	limit   int
	window  time.Duration
	now     func() time.Time
}

func NewConnectionRateLimiter() *ConnectionRateLimiter {
	return &ConnectionRateLimiter{
		entries: make(map[string][]time.Time),
		limit:   5,
		window:  time.Minute,
		now:     time.Now,
	}
}

// CheckAndRecord returns true if the session should be allowed, false otherwise.
func (rl *ConnectionRateLimiter) CheckAndRecord(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	timestamps := rl.entries[ip]
	recent := make([]time.Time, 0, len(timestamps)+1)
	for _, ts := range timestamps {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= rl.limit {
		rl.entries[ip] = recent
		return false
	}

	rl.entries[ip] = append(recent, now)
	return true
}
