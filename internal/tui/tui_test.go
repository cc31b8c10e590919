package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/VoxDesk/voxdesk/internal/dashboard"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input   string
		wantCmd Command
		wantArg string
	}{
		{"/clear", CmdClear, ""},
		{"/new", CmdClear, ""},
		{"/usage", CmdUsage, ""},
		{"/email Problème de connexion", CmdEmail, "Problème de connexion"},
		{"/chat", CmdChat, ""},
		{"/prompt", CmdPrompt, ""},
		{"/help", CmdHelp, ""},
		{"/quit", CmdQuit, ""},
		{"/exit", CmdQuit, ""},
		{"/q", CmdQuit, ""},
		{"/bogus", CmdUnknown, ""},
		{"hello", CmdNone, ""},
		{"", CmdNone, ""},
	}

	for _, tt := range tests {
		cmd, arg := parseCommand(tt.input)
		if cmd != tt.wantCmd {
			t.Errorf("parseCommand(%q) cmd = %v, want %v", tt.input, cmd, tt.wantCmd)
		}
		if arg != tt.wantArg {
			t.Errorf("parseCommand(%q) arg = %q, want %q", tt.input, arg, tt.wantArg)
		}
	}
}

func TestIsCommand(t *testing.T) {
	if !isCommand("/help") {
		t.Error("/help should be a command")
	}
	if isCommand("hello /help") {
		t.Error("plain text should not be a command")
	}
}

func TestHelpText(t *testing.T) {
	help := helpText()
	for _, cmd := range []string{"/clear", "/usage", "/email", "/prompt", "/quit"} {
		if !strings.Contains(help, cmd) {
			t.Errorf("help text missing %s", cmd)
		}
	}
}

func TestWrapText(t *testing.T) {
	wrapped := wrapText("one two three four five six seven eight", 15)
	for _, line := range strings.Split(wrapped, "\n") {
		if len(line) > 15 {
			t.Errorf("line %q exceeds width", line)
		}
	}

	// Width <= 0 falls back to a sane default rather than panicking
	if got := wrapText("hello world", 0); !strings.Contains(got, "hello") {
		t.Errorf("wrapText with zero width = %q", got)
	}
}

func TestFormatAgentMessageBadges(t *testing.T) {
	out := formatAgentMessage("Bonjour !", 450, 0.92)
	if !strings.Contains(out, "450ms") {
		t.Errorf("missing latency badge: %q", out)
	}
	if !strings.Contains(out, "92.0%") {
		t.Errorf("missing confidence badge: %q", out)
	}

	// No badges without a latency measurement
	bare := formatAgentMessage("Bonjour !", 0, 0)
	if strings.Contains(bare, "ms") {
		t.Errorf("unexpected badge: %q", bare)
	}
}

func TestRenderStats(t *testing.T) {
	snap := dashboard.Snapshot{
		State:       dashboard.StateLive,
		Stats:       dashboard.PlaceholderStats(),
		LastUpdated: time.Now(),
	}

	out := renderStats(snap, nil, 120)
	for _, want := range []string{"487", "15.8K", "1.3K", "82.0%", "2.3s", "24h 0m", "45.2 msg/min", "245 idle"} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard view missing %q", want)
		}
	}
}

func TestRenderSnapshotTag(t *testing.T) {
	cases := []struct {
		state dashboard.State
		want  string
	}{
		{dashboard.StateLive, "live"},
		{dashboard.StateStale, "stale"},
		{dashboard.StatePlaceholder, "demo data"},
		{dashboard.StateUninitialized, "loading"},
	}
	for _, tc := range cases {
		if got := renderSnapshotTag(dashboard.Snapshot{State: tc.state}); !strings.Contains(got, tc.want) {
			t.Errorf("tag for %v = %q, want substring %q", tc.state, got, tc.want)
		}
	}
}

func TestRenderAgentStatus(t *testing.T) {
	out := renderAgentStatus(map[string]int{"idle": 2, "busy": 1})
	if !strings.Contains(out, "2 idle") || !strings.Contains(out, "1 busy") {
		t.Errorf("renderAgentStatus = %q", out)
	}
	if renderAgentStatus(nil) != "" {
		t.Error("empty status map should render nothing")
	}
}

func TestLevelBar(t *testing.T) {
	full := levelBar(1.0, 10)
	if strings.Count(full, "█") != 10 {
		t.Errorf("full bar = %q", full)
	}
	empty := levelBar(0, 10)
	if strings.Count(empty, "░") != 10 {
		t.Errorf("empty bar = %q", empty)
	}
	// Out-of-range levels are clamped
	if strings.Count(levelBar(3.0, 10), "█") != 10 {
		t.Error("level above 1 should clamp")
	}
}

func TestTabString(t *testing.T) {
	if TabDashboard.String() != "Dashboard" || TabChat.String() != "Chat" || TabVoice.String() != "Voice" {
		t.Error("unexpected tab labels")
	}
}

func TestAutocomplete(t *testing.T) {
	a := NewAutocomplete()

	a.Update("/c")
	if !a.IsActive() {
		t.Fatal("autocomplete should be active for /c")
	}
	if got := a.Selected(); got != "/clear" {
		t.Errorf("Selected = %q, want /clear", got)
	}

	a.Next()
	if got := a.Selected(); got != "/chat" {
		t.Errorf("Selected after Next = %q, want /chat", got)
	}
	a.Prev()
	if got := a.Selected(); got != "/clear" {
		t.Errorf("Selected after Prev = %q, want /clear", got)
	}

	// A space ends completion
	a.Update("/clear now")
	if a.IsActive() {
		t.Error("autocomplete should deactivate after a space")
	}

	a.Update("plain text")
	if a.IsActive() {
		t.Error("autocomplete should be inactive for plain text")
	}
}

func TestDemoQuestionsNonEmpty(t *testing.T) {
	if len(demoQuestions) != 10 {
		t.Errorf("demoQuestions = %d entries, want 10", len(demoQuestions))
	}
	for i, q := range demoQuestions {
		if strings.TrimSpace(q) == "" {
			t.Errorf("demo question %d is empty", i)
		}
	}
}
