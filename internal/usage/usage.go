// Package usage tracks what this console has sent to the backend during the
// current run: request counts, failures, escalations and latency per channel.
package usage

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/VoxDesk/voxdesk/internal/format"
	"github.com/VoxDesk/voxdesk/pkg/types"
)

// Stats holds send statistics for one channel
type Stats struct {
	Requests       int
	Failures       int
	Escalations    int
	TotalLatencyMS int64
	FirstRequest   time.Time
	LastRequest    time.Time
}

// MeanLatencyMS returns the average round-trip time of successful sends.
func (s *Stats) MeanLatencyMS() float64 {
	ok := s.Requests - s.Failures
	if ok <= 0 {
		return 0
	}
	return float64(s.TotalLatencyMS) / float64(ok)
}

// String returns a human-readable summary of the stats
func (s *Stats) String() string {
	if s.Requests == 0 {
		return "No requests recorded yet."
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Requests: %d", s.Requests))
	if s.Failures > 0 {
		sb.WriteString(fmt.Sprintf(" (%d failed)", s.Failures))
	}
	if s.Escalations > 0 {
		sb.WriteString(fmt.Sprintf(", escalated: %d", s.Escalations))
	}
	if mean := s.MeanLatencyMS(); mean > 0 {
		sb.WriteString(fmt.Sprintf(", avg latency: %s", format.FormatResponseTime(mean)))
	}
	return sb.String()
}

// Tracker manages per-channel send statistics
type Tracker struct {
	stats map[types.Channel]*Stats
	mu    sync.RWMutex
}

// NewTracker creates a new usage tracker
func NewTracker() *Tracker {
	return &Tracker{
		stats: make(map[types.Channel]*Stats),
	}
}

func (t *Tracker) get(channel types.Channel) *Stats {
	s, ok := t.stats[channel]
	if !ok {
		s = &Stats{}
		t.stats[channel] = s
	}
	return s
}

// Record tracks one successful send.
func (t *Tracker) Record(channel types.Channel, latencyMS int64, escalated bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.get(channel)
	now := time.Now()
	s.Requests++
	s.TotalLatencyMS += latencyMS
	if escalated {
		s.Escalations++
	}
	if s.FirstRequest.IsZero() {
		s.FirstRequest = now
	}
	s.LastRequest = now
}

// RecordFailure tracks one failed send.
func (t *Tracker) RecordFailure(channel types.Channel) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.get(channel)
	now := time.Now()
	s.Requests++
	s.Failures++
	if s.FirstRequest.IsZero() {
		s.FirstRequest = now
	}
	s.LastRequest = now
}

// Get returns a copy of the stats for one channel.
func (t *Tracker) Get(channel types.Channel) Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if s, ok := t.stats[channel]; ok {
		return *s
	}
	return Stats{}
}

// Global aggregates stats across all channels.
func (t *Tracker) Global() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var total Stats
	for _, s := range t.stats {
		total.Requests += s.Requests
		total.Failures += s.Failures
		total.Escalations += s.Escalations
		total.TotalLatencyMS += s.TotalLatencyMS
		if total.FirstRequest.IsZero() || (!s.FirstRequest.IsZero() && s.FirstRequest.Before(total.FirstRequest)) {
			total.FirstRequest = s.FirstRequest
		}
		if s.LastRequest.After(total.LastRequest) {
			total.LastRequest = s.LastRequest
		}
	}
	return total
}
