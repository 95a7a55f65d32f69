// Package limiter throttles sensitive account actions (signup, login,
// password reset) per client IP.
package limiter

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether one more attempt at an action is allowed for a
// client. Implementations must be safe for concurrent use.
type Limiter interface {
	// Allow records and permits the attempt when the client is under the
	// limit; over-limit attempts are rejected without being recorded.
	Allow(ctx context.Context, clientID, action string) bool
}

// Memory is a process-local sliding-window limiter: per (client, action)
// key it keeps the timestamps of recent attempts and admits a new one only
// while fewer than Max fall inside the trailing window. Stale keys are
// swept in the background so the map stays bounded.
type Memory struct {
	window time.Duration
	max    int
	now    func() time.Time

	mu      sync.Mutex
	buckets map[string][]time.Time
}

// NewMemory creates a Memory limiter and starts its sweeper, which stops
// when ctx is canceled.
func NewMemory(ctx context.Context, window time.Duration, maxAttempts int) *Memory {
	m := &Memory{
		window:  window,
		max:     maxAttempts,
		now:     time.Now,
		buckets: make(map[string][]time.Time),
	}

	go m.sweep(ctx)

	return m
}

func (m *Memory) Allow(_ context.Context, clientID, action string) bool {
	key := clientID + "|" + action
	now := m.now()
	cutoff := now.Add(-m.window)

	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.buckets[key][:0]
	for _, ts := range m.buckets[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= m.max {
		m.buckets[key] = kept
		return false
	}

	m.buckets[key] = append(kept, now)
	return true
}

func (m *Memory) sweep(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := m.now().Add(-m.window)
			m.mu.Lock()
			for key, times := range m.buckets {
				if len(times) == 0 || !times[len(times)-1].After(cutoff) {
					delete(m.buckets, key)
				}
			}
			m.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}
