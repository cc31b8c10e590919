package config

import (
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.API.URL != DefaultAPIURL {
		t.Errorf("Default API URL = %q, want %q", cfg.API.URL, DefaultAPIURL)
	}
	if cfg.API.TimeoutSeconds != 30 {
		t.Errorf("Default timeout = %d, want 30", cfg.API.TimeoutSeconds)
	}
	if cfg.Console.UserID != "demo_user" {
		t.Errorf("Default user ID = %q, want demo_user", cfg.Console.UserID)
	}
	if cfg.Dashboard.PollSeconds != 10 {
		t.Errorf("Default poll interval = %d, want 10", cfg.Dashboard.PollSeconds)
	}
	if cfg.Dashboard.LoadTestSize != 50 {
		t.Errorf("Default load test size = %d, want 50", cfg.Dashboard.LoadTestSize)
	}
	if cfg.Voice.SampleRate != 16000 {
		t.Errorf("Default sample rate = %d, want 16000", cfg.Voice.SampleRate)
	}
	if !cfg.History.Enabled {
		t.Error("History should be enabled by default")
	}
}

func TestValidateDefaults(t *testing.T) {
	cfg := Default()
	result := cfg.Validate()

	if !result.IsValid() {
		t.Errorf("Default config should validate, errors: %v", result.Errors)
	}
	// No token by default — expect a warning, not an error
	if len(result.Warnings) == 0 {
		t.Error("Expected warning about missing token")
	}
}

func TestValidateBadURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"no scheme", "localhost:8000"},
		{"garbage", "://nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.API.URL = tt.url
			result := cfg.Validate()
			if result.IsValid() {
				t.Errorf("config with url %q should not validate", tt.url)
			}
		})
	}
}

func TestValidateEmptyUserID(t *testing.T) {
	cfg := Default()
	cfg.Console.UserID = ""
	result := cfg.Validate()

	if result.IsValid() {
		t.Error("config without console user ID should not validate")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VOXDESK_API_URL", "https://comms.example.com")
	t.Setenv("VOXDESK_API_TOKEN", "tok-123")

	cfg := Default()
	cfg.applyEnv()

	if cfg.API.URL != "https://comms.example.com" {
		t.Errorf("env override URL = %q", cfg.API.URL)
	}
	if cfg.API.Token != "tok-123" {
		t.Errorf("env override token = %q", cfg.API.Token)
	}
}

func TestEnvOverridesEmptyIgnored(t *testing.T) {
	t.Setenv("VOXDESK_API_URL", "")

	cfg := Default()
	cfg.applyEnv()

	if cfg.API.URL != DefaultAPIURL {
		t.Errorf("empty env var should not override, got %q", cfg.API.URL)
	}
}
