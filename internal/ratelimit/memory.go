package ratelimit

import (
	"sync"
	"time"

	"github.com/evoleadai/evolead/internal/clock"
)

// memoryWindow is the single-instance fallback when redis is not
// configured. State resets on process restart.
type memoryWindow struct {
	mu        sync.Mutex
	entries   map[string][]time.Time
	clock     clock.Clock
	lastSweep time.Time
}

func newMemoryWindow(clk clock.Clock) *memoryWindow {
	return &memoryWindow{
		entries:   make(map[string][]time.Time),
		clock:     clk,
		lastSweep: clk.Now(),
	}
}

func (m *memoryWindow) Allow(key string, limit int, window time.Duration) *Result {
	now := m.clock.Now()
	cutoff := now.Add(-window)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweep(now, cutoff, window)

	recent := m.entries[key][:0]
	for _, ts := range m.entries[key] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	result := &Result{Limit: limit}
	if len(recent) < limit {
		result.Allowed = true
		recent = append(recent, now)
	} else {
		result.RetryAfter = recent[0].Add(window).Sub(now)
	}
	if len(recent) == 0 {
		delete(m.entries, key)
	} else {
		m.entries[key] = recent
	}

	result.Remaining = limit - len(recent)
	if result.Remaining < 0 {
		result.Remaining = 0
	}
	return result
}

// sweep drops keys whose timestamps have all aged out, so idle client
// keys do not accumulate. Runs at most once per window.
func (m *memoryWindow) sweep(now time.Time, cutoff time.Time, window time.Duration) {
	if now.Sub(m.lastSweep) < window {
		return
	}
	m.lastSweep = now
	for key, stamps := range m.entries {
		live := false
		for _, ts := range stamps {
			if ts.After(cutoff) {
				live = true
				break
			}
		}
		if !live {
			delete(m.entries, key)
		}
	}
}
