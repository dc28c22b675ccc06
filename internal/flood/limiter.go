// Package flood rate limits parse requests per client with a sliding one-minute window.
package flood

import (
	"sync"
	"time"
)

const (
	// windowDuration is the sliding window every limit is expressed in.
	windowDuration = 60 * time.Second
	// cleanupInterval is how often idle clients are dropped.
	cleanupInterval = 10 * time.Minute
	// idleTimeout is how long a client may stay silent before it is forgotten.
	idleTimeout = 10 * time.Minute
)

// Limiter allows at most limitPerMinute requests per client in any 60 second window.
type Limiter struct {
	limitPerMinute int
	clients        map[string]*clientEntry
	mutex          sync.RWMutex
	now            func() time.Time
	stopCleanup    chan struct{}
	stopOnce       sync.Once
}

type clientEntry struct {
	timestamps []time.Time // accepted requests inside the window, oldest first
	lastSeen   time.Time
}

// New creates a Limiter and starts its background cleanup.
func New(limitPerMinute int) *Limiter {
	l := newLimiter(limitPerMinute, time.Now)
	go l.cleanup()
	return l
}

func newLimiter(limitPerMinute int, now func() time.Time) *Limiter {
	return &Limiter{
		limitPerMinute: limitPerMinute,
		clients:        make(map[string]*clientEntry),
		now:            now,
		stopCleanup:    make(chan struct{}),
	}
}

// Stop ends the background cleanup. It is safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopCleanup)
	})
}

// Allow records a request from clientID. When the client is over its limit the request
// is rejected and retryAfter tells when the oldest request leaves the window.
func (l *Limiter) Allow(clientID string) (allowed bool, retryAfter time.Duration) {
	now := l.now()

	l.mutex.Lock()
	defer l.mutex.Unlock()

	entry, exists := l.clients[clientID]
	if !exists {
		entry = &clientEntry{
			timestamps: make([]time.Time, 0, l.limitPerMinute+1),
		}
		l.clients[clientID] = entry
	}
	entry.lastSeen = now

	windowStart := now.Add(-windowDuration)
	valid := entry.timestamps[:0]
	for _, ts := range entry.timestamps {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	entry.timestamps = valid

	if len(entry.timestamps) >= l.limitPerMinute {
		if len(entry.timestamps) == 0 {
			return false, windowDuration
		}
		return false, entry.timestamps[0].Sub(windowStart)
	}

	entry.timestamps = append(entry.timestamps, now)
	return true, 0
}

func (l *Limiter) cleanup() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.performCleanup()
		case <-l.stopCleanup:
			return
		}
	}
}

func (l *Limiter) performCleanup() {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	cutoff := l.now().Add(-idleTimeout)
	for key, entry := range l.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(l.clients, key)
		}
	}
}

// Stats returns a snapshot for the readiness endpoint.
func (l *Limiter) Stats() Stats {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return Stats{
		ActiveClients:  len(l.clients),
		LimitPerMinute: l.limitPerMinute,
		WindowSeconds:  int(windowDuration.Seconds()),
	}
}

type Stats struct {
	ActiveClients  int `json:"active_clients"`
	LimitPerMinute int `json:"limit_per_minute"`
	WindowSeconds  int `json:"window_seconds"`
}
