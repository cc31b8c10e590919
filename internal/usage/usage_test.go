package usage

import (
	"strings"
	"testing"

	"github.com/VoxDesk/voxdesk/pkg/types"
)

func TestRecord(t *testing.T) {
	tr := NewTracker()

	tr.Record(types.ChannelChat, 400, false)
	tr.Record(types.ChannelChat, 600, true)

	s := tr.Get(types.ChannelChat)
	if s.Requests != 2 {
		t.Errorf("Requests = %d, want 2", s.Requests)
	}
	if s.Escalations != 1 {
		t.Errorf("Escalations = %d, want 1", s.Escalations)
	}
	if s.MeanLatencyMS() != 500 {
		t.Errorf("MeanLatencyMS = %v, want 500", s.MeanLatencyMS())
	}
}

func TestRecordFailure(t *testing.T) {
	tr := NewTracker()

	tr.Record(types.ChannelEmail, 1000, false)
	tr.RecordFailure(types.ChannelEmail)

	s := tr.Get(types.ChannelEmail)
	if s.Requests != 2 || s.Failures != 1 {
		t.Errorf("Requests = %d, Failures = %d", s.Requests, s.Failures)
	}
	// Failed sends do not drag the mean down
	if s.MeanLatencyMS() != 1000 {
		t.Errorf("MeanLatencyMS = %v, want 1000", s.MeanLatencyMS())
	}
}

func TestGetUnknownChannel(t *testing.T) {
	tr := NewTracker()
	s := tr.Get(types.ChannelVoice)
	if s.Requests != 0 {
		t.Errorf("Requests = %d for untouched channel", s.Requests)
	}
}

func TestGlobal(t *testing.T) {
	tr := NewTracker()

	tr.Record(types.ChannelChat, 300, false)
	tr.Record(types.ChannelEmail, 700, true)
	tr.RecordFailure(types.ChannelVoice)

	g := tr.Global()
	if g.Requests != 3 {
		t.Errorf("global Requests = %d, want 3", g.Requests)
	}
	if g.Failures != 1 {
		t.Errorf("global Failures = %d, want 1", g.Failures)
	}
	if g.Escalations != 1 {
		t.Errorf("global Escalations = %d, want 1", g.Escalations)
	}
	if g.MeanLatencyMS() != 500 {
		t.Errorf("global MeanLatencyMS = %v, want 500", g.MeanLatencyMS())
	}
}

func TestStatsString(t *testing.T) {
	var s Stats
	if got := s.String(); !strings.Contains(got, "No requests") {
		t.Errorf("empty stats String() = %q", got)
	}

	s = Stats{Requests: 3, Failures: 1, Escalations: 1, TotalLatencyMS: 900}
	got := s.String()
	if !strings.Contains(got, "Requests: 3") {
		t.Errorf("String() = %q", got)
	}
	if !strings.Contains(got, "1 failed") {
		t.Errorf("String() = %q", got)
	}
}
