package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/VoxDesk/voxdesk/internal/logger"
	"github.com/VoxDesk/voxdesk/pkg/types"
)

// DefaultLoadTestRequests is how many concurrent sends a load test fires.
const DefaultLoadTestRequests = 50

// LoadTestResult is the aggregate outcome of one load test run. Passed is
// all-or-nothing: a single failed request fails the run.
type LoadTestResult struct {
	RunID    string
	Total    int
	Failures int
	Duration time.Duration
	Passed   bool
}

// String returns a one-line summary of the run.
func (r LoadTestResult) String() string {
	if r.Passed {
		return fmt.Sprintf("load test passed: %d requests in %s", r.Total, r.Duration.Round(time.Millisecond))
	}
	return fmt.Sprintf("load test failed: %d/%d requests failed in %s", r.Failures, r.Total, r.Duration.Round(time.Millisecond))
}

// RunLoadTest fires n chat messages at the backend concurrently, waits for
// all of them to settle, then refreshes the stats snapshot so the view
// reflects the burst. n <= 0 uses the default.
func (p *Poller) RunLoadTest(ctx context.Context, n int) LoadTestResult {
	if n <= 0 {
		n = DefaultLoadTestRequests
	}
	runID := uuid.New().String()
	logger.Info("load test %s: sending %d concurrent messages", runID, n)

	start := time.Now()
	var wg sync.WaitGroup
	var mu sync.Mutex
	failures := 0

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := types.ChatMessage{
				UserID:  fmt.Sprintf("load_test_user_%d", i),
				Content: fmt.Sprintf("Load test message #%d - Testing system capacity with concurrent requests", i+1),
				Channel: types.ChannelChat,
			}
			if _, err := p.backend.SendChatMessage(ctx, msg); err != nil {
				mu.Lock()
				failures++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	result := LoadTestResult{
		RunID:    runID,
		Total:    n,
		Failures: failures,
		Duration: time.Since(start),
		Passed:   failures == 0,
	}
	logger.Info("load test %s: %s", runID, result)

	p.Refresh(ctx)
	return result
}

// AutoScaleTarget maps the current pending load onto the fleet size ladder.
func AutoScaleTarget(pendingLoad int) int {
	switch {
	case pendingLoad > 1000:
		return 1000
	case pendingLoad > 500:
		return 500
	case pendingLoad > 100:
		return 200
	default:
		return 50
	}
}

// AutoScale asks the backend for the fleet size matching the pending load
// from the current snapshot, then refreshes the view.
func (p *Poller) AutoScale(ctx context.Context) (*types.ScaleResponse, error) {
	snap := p.Snapshot()
	pending := 0
	if snap.Stats != nil {
		pending = snap.Stats.PendingMessages
	}

	target := AutoScaleTarget(pending)
	resp, err := p.backend.ScaleAgents(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("auto-scale to %d: %w", target, err)
	}
	logger.Info("auto-scale: pending load %d, target %d: %s", pending, target, resp.Message)

	p.Refresh(ctx)
	return resp, nil
}
