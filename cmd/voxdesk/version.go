package main

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/VoxDesk/voxdesk/internal/audio"
	"github.com/VoxDesk/voxdesk/internal/config"
)

// Build info - set via ldflags at build time:
//
//	go build -ldflags "-X main.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ) -X main.gitCommit=$(git rev-parse --short HEAD)"
var (
	buildTime = "unknown"
	gitCommit = "unknown"
)

// localFeatures lists what this installation can actually do, from config
// and the audio tools found on the host.
func localFeatures() []string {
	features := []string{}

	cfg, err := config.Load()
	if err != nil {
		return features
	}

	if cfg.History.Enabled {
		features = append(features, "history")
	}
	if cfg.Console.RateLimit > 0 {
		features = append(features, "ratelimit")
	}
	if audio.NewCapture(cfg.Voice.CaptureCommand, cfg.Voice.SampleRate).Available() {
		features = append(features, "voice")
	}
	if audio.NewPlayer(cfg.Voice.PlaybackCommand).Available() {
		features = append(features, "playback")
	}

	return features
}

// cmdVersion prints version and build information
func cmdVersion() {
	fmt.Printf("VoxDesk v%s\n", version)
	fmt.Printf("  Go:       %s\n", runtime.Version())
	fmt.Printf("  Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Build:    %s\n", buildTime)
	fmt.Printf("  Commit:   %s\n", gitCommit)

	if features := localFeatures(); len(features) > 0 {
		fmt.Printf("  Features: %s\n", strings.Join(features, ", "))
	} else {
		fmt.Println("  Features: (none enabled)")
	}
}
