// Package audio records and plays microphone audio through external
// command-line tools, auto-detecting whatever the host system has installed.
package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"
)

// ErrNoCaptureCommand is returned when no recording command is configured or available
var ErrNoCaptureCommand = errors.New("no audio capture command available")

// DefaultSampleRate is the capture sample rate in Hz
const DefaultSampleRate = 16000

// Capture records microphone audio as 16-bit mono WAV.
type Capture struct {
	Command    string // The capture command to use (arecord, rec, ffmpeg)
	SampleRate int
}

// NewCapture creates a Capture with the given command.
// If command is empty, it will auto-detect an available capture command.
func NewCapture(command string, sampleRate int) *Capture {
	if command == "" {
		command = DetectCaptureCommand()
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &Capture{Command: command, SampleRate: sampleRate}
}

// DetectCaptureCommand attempts to find an available recording command on
// the system. Returns empty string if none found.
func DetectCaptureCommand() string {
	// List of capture commands to try, in order of preference
	commands := []string{
		"arecord", // ALSA, Linux
		"rec",     // sox
		"ffmpeg",  // last resort, pulls in a device guess
	}

	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}

// Available returns true if the capture command is available
func (c *Capture) Available() bool {
	if c.Command == "" {
		return false
	}
	_, err := exec.LookPath(c.Command)
	return err == nil
}

// BuildCommand builds the command and arguments that stream WAV to stdout.
func (c *Capture) BuildCommand() (cmd string, args []string) {
	rate := strconv.Itoa(c.SampleRate)
	switch c.Command {
	case "arecord":
		return c.Command, []string{"-q", "-f", "S16_LE", "-r", rate, "-c", "1", "-t", "wav", "-"}
	case "rec":
		return c.Command, []string{"-q", "-r", rate, "-c", "1", "-b", "16", "-t", "wav", "-"}
	case "ffmpeg":
		return c.Command, []string{
			"-hide_banner", "-loglevel", "error",
			"-f", "alsa", "-i", "default",
			"-ar", rate, "-ac", "1", "-f", "wav", "-",
		}
	default:
		// Generic fallback: assume the tool streams WAV to stdout
		return c.Command, []string{"-"}
	}
}

// Start launches the capture process. The returned Recording accumulates
// audio until Stop is called.
func (c *Capture) Start() (*Recording, error) {
	if c.Command == "" {
		return nil, ErrNoCaptureCommand
	}

	name, args := c.BuildCommand()
	cmd := exec.Command(name, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("capture stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", name, err)
	}

	r := &Recording{cmd: cmd, done: make(chan struct{})}
	go r.drain(stdout)
	return r, nil
}

// Recording is one in-flight capture. Level exposes a running RMS meter
// while audio streams in; Stop ends the capture and returns the WAV bytes.
type Recording struct {
	cmd     *exec.Cmd
	buf     bytes.Buffer
	level   float64
	readErr error
	done    chan struct{}
	stopped bool
	mu      sync.Mutex
}

// wavHeaderSize is skipped when metering so header bytes do not register as signal
const wavHeaderSize = 44

func (r *Recording) drain(stdout io.ReadCloser) {
	defer close(r.done)

	chunk := make([]byte, 4096)
	for {
		n, err := stdout.Read(chunk)
		if n > 0 {
			r.mu.Lock()
			skip := 0
			if r.buf.Len() < wavHeaderSize {
				skip = wavHeaderSize - r.buf.Len()
				if skip > n {
					skip = n
				}
			}
			r.buf.Write(chunk[:n])
			if n > skip {
				r.level = rmsLevel(chunk[skip:n])
			}
			r.mu.Unlock()
		}
		if err != nil {
			if err != io.EOF {
				r.mu.Lock()
				r.readErr = err
				r.mu.Unlock()
			}
			return
		}
	}
}

// Level returns the most recent RMS level, in the range 0 to 1.
func (r *Recording) Level() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.level
}

// Len returns how many bytes have been captured so far.
func (r *Recording) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buf.Len()
}

// Stop ends the capture and returns the recorded WAV data. Safe to call
// more than once; later calls return the same data.
func (r *Recording) Stop() ([]byte, error) {
	r.mu.Lock()
	alreadyStopped := r.stopped
	r.stopped = true
	r.mu.Unlock()

	if !alreadyStopped && r.cmd.Process != nil {
		// Interrupt first so the tool can flush; kill if it lingers
		_ = r.cmd.Process.Signal(os.Interrupt)
		select {
		case <-r.done:
		case <-time.After(2 * time.Second):
			_ = r.cmd.Process.Kill()
			<-r.done
		}
		_ = r.cmd.Wait()
	} else {
		<-r.done
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readErr != nil {
		return nil, fmt.Errorf("capture read: %w", r.readErr)
	}
	if r.buf.Len() == 0 {
		return nil, errors.New("no audio captured")
	}
	return r.buf.Bytes(), nil
}

// rmsLevel computes the RMS amplitude of a chunk of 16-bit little-endian
// PCM, normalized to 0..1.
func rmsLevel(chunk []byte) float64 {
	samples := len(chunk) / 2
	if samples == 0 {
		return 0
	}
	var sum float64
	for i := 0; i+1 < len(chunk); i += 2 {
		s := int16(uint16(chunk[i]) | uint16(chunk[i+1])<<8)
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum/float64(samples)) / 32768.0
}
