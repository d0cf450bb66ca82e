// Package ratelimit implements a sliding-window rate limiter keyed by an
// arbitrary string (client IP for auth endpoints, user ID for journal saves).
// State is in-memory and per-process; it resets on restart.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter tracks attempt timestamps per key.
type Limiter struct {
	mu       sync.RWMutex
	attempts map[string][]time.Time
	limit    int           // Max attempts allowed
	window   time.Duration // Time window for rate limiting
}

// New creates a limiter allowing limit attempts per window and starts the
// cleanup goroutine that prevents the attempt map from growing unbounded.
func New(limit int, window time.Duration) *Limiter {
	l := &Limiter{
		attempts: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
	}

	go l.cleanupLoop()

	return l
}

// Allow checks if an attempt for key should be allowed and records it if so.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-l.window)

	attempts := l.attempts[key]

	// Remove old attempts outside time window
	valid := attempts[:0]
	for _, t := range attempts {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= l.limit {
		l.attempts[key] = valid
		return false
	}

	valid = append(valid, now)
	l.attempts[key] = valid

	return true
}

// cleanupLoop periodically removes stale keys to prevent memory leak
func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.cleanup()
	}
}

// cleanup removes keys with no recent attempts
func (l *Limiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-l.window * 2) // Keep data for 2x window

	for key, attempts := range l.attempts {
		allOld := true
		for _, t := range attempts {
			if t.After(cutoff) {
				allOld = false
				break
			}
		}

		if allOld {
			delete(l.attempts, key)
		}
	}
}
