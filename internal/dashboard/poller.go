// Package dashboard keeps a statistics view eventually-consistent with the
// backend and hosts the demo actions derived from it (load test, scaling).
package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/VoxDesk/voxdesk/internal/logger"
	"github.com/VoxDesk/voxdesk/pkg/types"
)

// DefaultPollInterval is how often the poller refreshes the stats snapshot.
const DefaultPollInterval = 10 * time.Second

// Backend is the slice of the API client the dashboard needs.
type Backend interface {
	GetDashboardStats(ctx context.Context) (*types.DashboardStats, error)
	SendChatMessage(ctx context.Context, msg types.ChatMessage) (*types.MessageResponse, error)
	ScaleAgents(ctx context.Context, targetCount int) (*types.ScaleResponse, error)
}

// State says where the current snapshot came from.
type State int

const (
	// StateUninitialized means no fetch has completed yet.
	StateUninitialized State = iota
	// StateLive means the last fetch succeeded.
	StateLive
	// StateStale means a fetch failed but an earlier success is retained.
	StateStale
	// StatePlaceholder means every fetch so far failed and the fixed
	// synthetic snapshot is shown instead.
	StatePlaceholder
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateLive:
		return "live"
	case StateStale:
		return "stale"
	case StatePlaceholder:
		return "placeholder"
	default:
		return "uninitialized"
	}
}

// Snapshot is the stats view handed to consumers. Stats is nil only while
// Uninitialized.
type Snapshot struct {
	State       State
	Stats       *types.DashboardStats
	LastUpdated time.Time
}

// PlaceholderStats returns the fixed synthetic snapshot shown when no real
// data has ever been fetched.
func PlaceholderStats() *types.DashboardStats {
	return &types.DashboardStats{
		TotalAgents:            487,
		AgentStatus:            map[string]int{"idle": 245, "busy": 198, "error": 12, "offline": 32},
		TotalMessagesProcessed: 15847,
		TotalEscalations:       1267,
		ResolutionRate:         0.82,
		AverageResponseTimeMS:  2340,
		PendingMessages:        23,
		UptimeSeconds:          86400,
		MessagesPerMinute:      45.2,
	}
}

// Poller refreshes the stats snapshot on a fixed interval. The lifecycle is
// owned by the caller: Start begins polling, Stop cancels it, and no tick
// fires after Stop returns.
type Poller struct {
	backend  Backend
	interval time.Duration

	snapshot Snapshot
	onUpdate func(Snapshot)
	running  bool
	stopCh   chan struct{}
	mu       sync.RWMutex
}

// New creates a poller with the default interval.
func New(backend Backend) *Poller {
	return NewWithInterval(backend, DefaultPollInterval)
}

// NewWithInterval creates a poller with a custom interval (for testing).
func NewWithInterval(backend Backend, interval time.Duration) *Poller {
	return &Poller{
		backend:  backend,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// SetOnUpdate registers a callback invoked after every refresh. Set before
// Start.
func (p *Poller) SetOnUpdate(fn func(Snapshot)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onUpdate = fn
}

// Start fetches immediately, then keeps refreshing until Stop.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()
}

// Stop cancels polling. Safe to call more than once.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopCh)
}

// loop drives the refresh ticker
func (p *Poller) loop() {
	p.Refresh(context.Background())

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.Refresh(context.Background())
		}
	}
}

// Refresh performs one fetch and applies the snapshot rules: success
// replaces the snapshot wholesale; failure keeps the last good snapshot, or
// installs the placeholder if there has never been one.
func (p *Poller) Refresh(ctx context.Context) Snapshot {
	stats, err := p.backend.GetDashboardStats(ctx)

	p.mu.Lock()
	now := time.Now()
	if err == nil {
		p.snapshot = Snapshot{State: StateLive, Stats: stats, LastUpdated: now}
	} else {
		logger.Debug("stats fetch failed: %v", err)
		switch p.snapshot.State {
		case StateLive, StateStale:
			// Good data is never replaced by the placeholder
			p.snapshot.State = StateStale
			p.snapshot.LastUpdated = now
		default:
			p.snapshot = Snapshot{State: StatePlaceholder, Stats: PlaceholderStats(), LastUpdated: now}
		}
	}
	snap := p.snapshot
	fn := p.onUpdate
	p.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
	return snap
}

// Snapshot returns the current stats view.
func (p *Poller) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot
}
