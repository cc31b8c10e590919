package webshot

import (
	"strings"
	"testing"
	"time"
)

// Unit tests - no real browser needed

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://example.com", false},
		{"http://localhost:3000/dashboard", false},
		{"ftp://example.com", true},   // unsupported scheme
		{"not-a-url", true},           // invalid URL
		{"", true},                    // empty
		{"javascript:alert(1)", true}, // dangerous scheme
		{"file:///etc/passwd", true},  // local file access
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := validateURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.Headless || !cfg.Stealth {
		t.Error("defaults should be headless with stealth")
	}
	if cfg.GetTimeout() != 30*time.Second {
		t.Errorf("GetTimeout = %v, want 30s", cfg.GetTimeout())
	}

	cfg.TimeoutSeconds = 5
	if cfg.GetTimeout() != 5*time.Second {
		t.Errorf("GetTimeout = %v, want 5s", cfg.GetTimeout())
	}
}

func TestDefaultPath(t *testing.T) {
	s := &Shooter{outputDir: "/tmp/shots"}
	path := s.defaultPath()
	if !strings.HasPrefix(path, "/tmp/shots/dashboard-") || !strings.HasSuffix(path, ".png") {
		t.Errorf("defaultPath = %q", path)
	}

	s = &Shooter{}
	if got := s.defaultPath(); !strings.HasPrefix(got, "dashboard-") {
		t.Errorf("defaultPath = %q", got)
	}
}
