package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", DEBUG},
		{"DEBUG", DEBUG},
		{"info", INFO},
		{" Info ", INFO},
		{"", INFO},
		{"warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
		{"ERROR", ERROR},
		{"invalid", INFO},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(WARN, "test")
	l.SetOutput(buf)

	l.Debug("debug message")
	l.Info("info message")
	l.Warn("warn message")
	l.Error("error message")

	output := buf.String()
	if strings.Contains(output, "debug message") || strings.Contains(output, "info message") {
		t.Errorf("lines below WARN should be filtered, got: %s", output)
	}
	if !strings.Contains(output, "warn message") || !strings.Contains(output, "error message") {
		t.Errorf("WARN and ERROR lines missing, got: %s", output)
	}
}

func TestLineFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(INFO, "api")
	l.SetOutput(buf)

	l.Info("request to %s failed", "/health")

	output := buf.String()
	if !strings.Contains(output, "INFO") {
		t.Errorf("missing level tag: %s", output)
	}
	if !strings.Contains(output, "api:") {
		t.Errorf("missing component tag: %s", output)
	}
	if !strings.Contains(output, "request to /health failed") {
		t.Errorf("missing formatted message: %s", output)
	}
}

func TestWithComponent(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(INFO, "voxdesk")
	l.SetOutput(buf)

	l.WithComponent("poller").Info("refresh done")

	if !strings.Contains(buf.String(), "poller:") {
		t.Errorf("child component missing from output: %s", buf.String())
	}
}

func TestSetLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(ERROR, "test")
	l.SetOutput(buf)

	l.Info("should not appear")
	if buf.Len() > 0 {
		t.Error("INFO should be filtered at ERROR level")
	}

	l.SetLevel(INFO)
	l.Info("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Error("INFO should log after level change")
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	buf := &bytes.Buffer{}
	l := New(DEBUG, "pkg")
	l.SetOutput(buf)

	prev := GetDefaultLogger()
	SetDefaultLogger(l)
	defer SetDefaultLogger(prev)

	Debug("debug from pkg")
	Info("info from pkg")
	Warn("warn from pkg")
	Error("error from pkg")

	output := buf.String()
	for _, want := range []string{"debug from pkg", "info from pkg", "warn from pkg", "error from pkg"} {
		if !strings.Contains(output, want) {
			t.Errorf("missing %q in output: %s", want, output)
		}
	}
}
