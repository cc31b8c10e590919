package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ErrNoPlaybackCommand is returned when no playback command is configured or available
var ErrNoPlaybackCommand = errors.New("no audio playback command available")

// Player plays WAV audio through an external command.
type Player struct {
	Command string // The playback command to use (aplay, afplay, ffplay, etc.)
}

// NewPlayer creates a Player with the given command.
// If command is empty, it will auto-detect an available playback command.
func NewPlayer(command string) *Player {
	if command == "" {
		command = DetectPlaybackCommand()
	}
	return &Player{Command: command}
}

// DetectPlaybackCommand attempts to find an available playback command on
// the system. Returns empty string if none found.
func DetectPlaybackCommand() string {
	// List of playback commands to try, in order of preference
	commands := []string{
		"aplay",  // ALSA, Linux
		"afplay", // macOS
		"ffplay", // ffmpeg
		"mpv",
		"play", // sox
	}

	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}

// Available returns true if the playback command is available
func (p *Player) Available() bool {
	if p.Command == "" {
		return false
	}
	_, err := exec.LookPath(p.Command)
	return err == nil
}

// BuildCommand builds the command and arguments to play the given file.
func (p *Player) BuildCommand(path string) (cmd string, args []string) {
	switch p.Command {
	case "aplay":
		return p.Command, []string{"-q", path}
	case "afplay":
		return p.Command, []string{path}
	case "ffplay":
		return p.Command, []string{"-nodisp", "-autoexit", "-loglevel", "error", path}
	case "mpv":
		return p.Command, []string{"--really-quiet", path}
	case "play":
		return p.Command, []string{"-q", path}
	default:
		// Generic fallback: pass the file as argument
		return p.Command, []string{path}
	}
}

// PlayFile plays a WAV file, blocking until playback ends or ctx is
// cancelled.
func (p *Player) PlayFile(ctx context.Context, path string) error {
	if p.Command == "" {
		return ErrNoPlaybackCommand
	}

	name, args := p.BuildCommand(path)
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("play %s: %w", path, err)
	}
	return nil
}

// Play writes the WAV data to a temporary file, plays it, and removes the
// file afterwards.
func (p *Player) Play(ctx context.Context, data []byte) error {
	if p.Command == "" {
		return ErrNoPlaybackCommand
	}
	if len(data) == 0 {
		return nil
	}

	f, err := os.CreateTemp("", "voxdesk-*.wav")
	if err != nil {
		return fmt.Errorf("playback temp file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write playback file: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	return p.PlayFile(ctx, path)
}
