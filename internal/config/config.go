package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultAPIURL is used when no base URL is configured anywhere.
const DefaultAPIURL = "http://localhost:8000"

type Config struct {
	API       APIConfig       `yaml:"api"`
	Console   ConsoleConfig   `yaml:"console"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Voice     VoiceConfig     `yaml:"voice"`
	History   HistoryConfig   `yaml:"history"`
	Snapshot  SnapshotConfig  `yaml:"snapshot"`
	Log       LogConfig       `yaml:"log"`
}

// APIConfig holds the connection settings for the platform backend.
type APIConfig struct {
	URL            string `yaml:"url"`            // Base URL (default: http://localhost:8000)
	Token          string `yaml:"token"`          // Bearer token, optional — requests go out unauthenticated without it
	TimeoutSeconds int    `yaml:"timeoutSeconds"` // Request timeout (default: 30)
}

// ConsoleConfig holds demo console settings.
type ConsoleConfig struct {
	UserID    string `yaml:"userId"`    // User identifier sent with demo messages (default: demo_user)
	RateLimit int    `yaml:"rateLimit"` // Max sends per minute from this console (0 = disabled)
}

// DashboardConfig holds dashboard polling settings.
type DashboardConfig struct {
	PollSeconds  int `yaml:"pollSeconds"`  // Stats refresh interval (default: 10)
	LoadTestSize int `yaml:"loadTestSize"` // Concurrent sends per load test (default: 50)
}

// VoiceConfig holds audio capture/playback settings.
type VoiceConfig struct {
	CaptureCommand  string `yaml:"captureCommand"`  // Recording command (arecord, rec, ffmpeg) - auto-detected if empty
	PlaybackCommand string `yaml:"playbackCommand"` // Playback command (aplay, afplay, ffplay) - auto-detected if empty
	SampleRate      int    `yaml:"sampleRate"`      // Capture sample rate in Hz (default: 16000)
}

// HistoryConfig holds local conversation history settings.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"` // Persist conversations to SQLite (default: true)
	Path    string `yaml:"path"`    // Database path (default: ~/.voxdesk/history.db)
}

// SnapshotConfig holds settings for dashboard snapshots via headless Chrome.
type SnapshotConfig struct {
	Headless       bool `yaml:"headless"`       // Run without visible window (default: true)
	TimeoutSeconds int  `yaml:"timeoutSeconds"` // Page load timeout (default: 30)
	Stealth        bool `yaml:"stealth"`        // Avoid bot detection (default: true)
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: info)
}

func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		API: APIConfig{
			URL:            DefaultAPIURL,
			TimeoutSeconds: 30,
		},
		Console: ConsoleConfig{
			UserID:    "demo_user",
			RateLimit: 0,
		},
		Dashboard: DashboardConfig{
			PollSeconds:  10,
			LoadTestSize: 50,
		},
		Voice: VoiceConfig{
			CaptureCommand:  "", // Auto-detect
			PlaybackCommand: "", // Auto-detect
			SampleRate:      16000,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(home, ".voxdesk", "history.db"),
		},
		Snapshot: SnapshotConfig{
			Headless:       true,
			TimeoutSeconds: 30,
			Stealth:        true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func configDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".voxdesk")
}

func configPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// Load reads the config file and applies environment overrides.
// A missing file is not an error; defaults are used.
func Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath())
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("config not readable: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides config values from the environment.
// VOXDESK_API_URL and VOXDESK_API_TOKEN take precedence over the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("VOXDESK_API_URL"); v != "" {
		c.API.URL = v
	}
	if v := os.Getenv("VOXDESK_API_TOKEN"); v != "" {
		c.API.Token = v
	}
}

// ValidationResult holds the result of config validation
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// IsValid returns true if there are no errors
func (v *ValidationResult) IsValid() bool {
	return len(v.Errors) == 0
}

// Validate checks the configuration for required fields and common issues
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}

	if c.API.URL == "" {
		result.Errors = append(result.Errors, "API URL required: set api.url or VOXDESK_API_URL")
	} else if u, err := url.Parse(c.API.URL); err != nil || u.Scheme == "" || u.Host == "" {
		result.Errors = append(result.Errors, fmt.Sprintf("API URL invalid: %s", c.API.URL))
	}

	if c.API.Token == "" {
		result.Warnings = append(result.Warnings, "No API token set: requests go out unauthenticated")
	}

	if c.API.TimeoutSeconds <= 0 {
		result.Warnings = append(result.Warnings, "API timeout <= 0, using default of 30s")
	}

	if c.Dashboard.PollSeconds < 1 {
		result.Warnings = append(result.Warnings, "Dashboard poll interval < 1s, may flood the backend")
	}

	if c.Dashboard.LoadTestSize > 500 {
		result.Warnings = append(result.Warnings, "Load test size > 500 - consider a lower value for shared backends")
	}

	if c.Console.UserID == "" {
		result.Errors = append(result.Errors, "Console user ID cannot be empty: set console.userId")
	}

	if c.Voice.SampleRate != 0 && c.Voice.SampleRate < 8000 {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Voice sample rate %d Hz is below telephony quality", c.Voice.SampleRate))
	}

	return result
}

func Save(cfg *Config) (string, error) {
	dir := configDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	path := configPath()
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}

	return path, nil
}
