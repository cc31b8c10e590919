// Package webshot captures the platform's hosted web dashboard to a PNG
// using headless Chrome via go-rod.
package webshot

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/VoxDesk/voxdesk/internal/logger"
)

// Config holds snapshot configuration
type Config struct {
	Enabled        bool   `yaml:"enabled"`
	Headless       bool   `yaml:"headless"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	Stealth        bool   `yaml:"stealth"`
	OutputDir      string `yaml:"outputDir"`
}

// DefaultConfig returns sensible defaults for snapshot config
func DefaultConfig() *Config {
	return &Config{
		Enabled:        true,
		Headless:       true,
		TimeoutSeconds: 30,
		Stealth:        true,
	}
}

// GetTimeout returns the timeout as time.Duration
func (c *Config) GetTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Shooter drives a headless browser for dashboard captures.
type Shooter struct {
	rod       *rod.Browser
	timeout   time.Duration
	stealth   bool
	outputDir string
}

// New launches the browser.
// Returns error if Chrome/Chromium is not found (graceful degradation).
func New(cfg *Config) (*Shooter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	path, found := launcher.LookPath()
	if !found {
		return nil, errors.New("Chrome/Chromium not found - snapshot disabled")
	}

	l := launcher.New().
		Bin(path).
		Headless(cfg.Headless).
		Set("disable-gpu").
		Set("no-sandbox").
		Set("disable-dev-shm-usage")

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &Shooter{
		rod:       browser,
		timeout:   cfg.GetTimeout(),
		stealth:   cfg.Stealth,
		outputDir: cfg.OutputDir,
	}, nil
}

// Close shuts down the browser
func (s *Shooter) Close() {
	if s.rod != nil {
		_ = s.rod.Close()
	}
}

// Capture opens the dashboard URL, waits for it to load, and writes a
// full-page PNG. Returns the output path.
func (s *Shooter) Capture(dashboardURL, outPath string) (string, error) {
	page, err := s.newPage(dashboardURL)
	if err != nil {
		return "", err
	}
	defer page.Close()

	if err := page.WaitLoad(); err != nil {
		return "", fmt.Errorf("page load timeout: %w", err)
	}

	data, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return "", fmt.Errorf("screenshot failed: %w", err)
	}

	if outPath == "" {
		outPath = s.defaultPath()
	}
	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	logger.Info("dashboard snapshot saved to %s", outPath)
	return outPath, nil
}

func (s *Shooter) defaultPath() string {
	name := fmt.Sprintf("dashboard-%s.png", time.Now().Format("20060102-150405"))
	if s.outputDir != "" {
		return filepath.Join(s.outputDir, name)
	}
	return name
}

func (s *Shooter) newPage(urlStr string) (*rod.Page, error) {
	if err := validateURL(urlStr); err != nil {
		return nil, err
	}

	page, err := s.rod.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	// Stealth JS must be injected before navigation
	if s.stealth {
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			page.Close()
			return nil, fmt.Errorf("failed to inject stealth: %w", err)
		}
	}

	page = page.Timeout(s.timeout)

	if err := page.Navigate(urlStr); err != nil {
		page.Close()
		return nil, fmt.Errorf("failed to navigate: %w", err)
	}

	return page, nil
}

// validateURL checks if a URL is valid and safe to navigate to
func validateURL(urlStr string) error {
	if urlStr == "" {
		return errors.New("URL is required")
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported URL scheme: %s (only http/https allowed)", u.Scheme)
	}

	lower := strings.ToLower(urlStr)
	if strings.Contains(lower, "javascript:") || strings.Contains(lower, "file:") || strings.Contains(lower, "data:") {
		return errors.New("dangerous URL scheme detected")
	}

	return nil
}
