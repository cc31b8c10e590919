// Package ratelimit keeps the console from flooding the shared demo backend
// with sends.
package ratelimit

import (
	"sync"
	"time"

	"github.com/VoxDesk/voxdesk/pkg/types"
)

// DefaultWindow is the sliding window size
const DefaultWindow = time.Minute

// Limiter is a per-channel sliding window limiter over console sends.
type Limiter struct {
	limit   int // max sends per window per channel (0 = disabled)
	window  time.Duration
	history map[types.Channel][]time.Time
	now     func() time.Time
	mu      sync.Mutex
}

// New creates a limiter allowing limit sends per minute per channel.
// limit <= 0 disables limiting.
func New(limit int) *Limiter {
	return NewWithWindow(limit, DefaultWindow)
}

// NewWithWindow creates a limiter with a custom window (for testing).
func NewWithWindow(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		window:  window,
		history: make(map[types.Channel][]time.Time),
		now:     time.Now,
	}
}

// prune drops timestamps outside the window. Caller holds the lock.
func (l *Limiter) prune(channel types.Channel, now time.Time) []time.Time {
	cutoff := now.Add(-l.window)
	kept := l.history[channel][:0]
	for _, ts := range l.history[channel] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) == 0 {
		delete(l.history, channel)
		return nil
	}
	l.history[channel] = kept
	return kept
}

// AllowSend reports whether one more send on the channel fits in the
// window, recording it if so.
func (l *Limiter) AllowSend(channel types.Channel) bool {
	if l.limit <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	recent := l.prune(channel, now)
	if len(recent) >= l.limit {
		return false
	}
	l.history[channel] = append(recent, now)
	return true
}

// Remaining returns how many sends are left in the current window, or -1
// when limiting is disabled.
func (l *Limiter) Remaining(channel types.Channel) int {
	if l.limit <= 0 {
		return -1
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	remaining := l.limit - len(l.prune(channel, l.now()))
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RetryAfter returns how long until the next send would be allowed. Zero
// means a send is allowed now.
func (l *Limiter) RetryAfter(channel types.Channel) time.Duration {
	if l.limit <= 0 {
		return 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	recent := l.prune(channel, now)
	if len(recent) < l.limit {
		return 0
	}
	// The oldest timestamp leaving the window frees a slot
	wait := recent[0].Add(l.window).Sub(now)
	if wait < 0 {
		return 0
	}
	return wait
}

// Reset clears the window for one channel.
func (l *Limiter) Reset(channel types.Channel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.history, channel)
}

// ResetAll clears every window.
func (l *Limiter) ResetAll() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.history = make(map[types.Channel][]time.Time)
}
