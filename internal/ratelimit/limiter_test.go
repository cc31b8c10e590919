package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/VoxDesk/voxdesk/pkg/types"
)

func TestLimiter_Disabled(t *testing.T) {
	limiter := New(0)

	for i := 0; i < 100; i++ {
		if !limiter.AllowSend(types.ChannelChat) {
			t.Fatal("disabled limiter should always allow")
		}
	}
	if limiter.Remaining(types.ChannelChat) != -1 {
		t.Error("disabled limiter should report unlimited")
	}
	if limiter.RetryAfter(types.ChannelChat) != 0 {
		t.Error("disabled limiter should never wait")
	}
}

func TestLimiter_UnderLimit(t *testing.T) {
	limiter := New(5)

	for i := 0; i < 5; i++ {
		if !limiter.AllowSend(types.ChannelChat) {
			t.Errorf("send %d should be allowed", i+1)
		}
	}
}

func TestLimiter_OverLimit(t *testing.T) {
	limiter := New(3)

	for i := 0; i < 3; i++ {
		limiter.AllowSend(types.ChannelChat)
	}
	if limiter.AllowSend(types.ChannelChat) {
		t.Error("send over limit should be blocked")
	}
	if got := limiter.Remaining(types.ChannelChat); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
}

func TestLimiter_ChannelsIndependent(t *testing.T) {
	limiter := New(2)

	limiter.AllowSend(types.ChannelChat)
	limiter.AllowSend(types.ChannelChat)

	if limiter.AllowSend(types.ChannelChat) {
		t.Error("chat should be blocked")
	}
	if !limiter.AllowSend(types.ChannelEmail) {
		t.Error("email should still be allowed")
	}
}

func TestLimiter_WindowSlides(t *testing.T) {
	limiter := NewWithWindow(2, time.Minute)

	clock := time.Now()
	limiter.now = func() time.Time { return clock }

	limiter.AllowSend(types.ChannelVoice)
	limiter.AllowSend(types.ChannelVoice)
	if limiter.AllowSend(types.ChannelVoice) {
		t.Error("should be blocked inside the window")
	}

	clock = clock.Add(2 * time.Minute)
	if !limiter.AllowSend(types.ChannelVoice) {
		t.Error("should be allowed after the window slides")
	}
}

func TestLimiter_RetryAfter(t *testing.T) {
	limiter := NewWithWindow(1, time.Minute)

	clock := time.Now()
	limiter.now = func() time.Time { return clock }

	if got := limiter.RetryAfter(types.ChannelChat); got != 0 {
		t.Errorf("RetryAfter with free slot = %v, want 0", got)
	}

	limiter.AllowSend(types.ChannelChat)
	clock = clock.Add(20 * time.Second)

	if got := limiter.RetryAfter(types.ChannelChat); got != 40*time.Second {
		t.Errorf("RetryAfter = %v, want 40s", got)
	}
}

func TestLimiter_Reset(t *testing.T) {
	limiter := New(1)

	limiter.AllowSend(types.ChannelChat)
	if limiter.AllowSend(types.ChannelChat) {
		t.Error("should be blocked before reset")
	}

	limiter.Reset(types.ChannelChat)
	if !limiter.AllowSend(types.ChannelChat) {
		t.Error("should be allowed after reset")
	}

	limiter.ResetAll()
	if got := limiter.Remaining(types.ChannelChat); got != 1 {
		t.Errorf("Remaining after ResetAll = %d, want 1", got)
	}
}

func TestLimiter_ConcurrentAccess(t *testing.T) {
	limiter := New(100)

	var wg sync.WaitGroup
	channels := []types.Channel{types.ChannelChat, types.ChannelEmail, types.ChannelVoice}
	for i := 0; i < 9; i++ {
		wg.Add(1)
		go func(ch types.Channel) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				limiter.AllowSend(ch)
				limiter.Remaining(ch)
			}
		}(channels[i%3])
	}
	wg.Wait()
}
