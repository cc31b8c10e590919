// Package voice coordinates one record, upload, reply, playback cycle as an
// explicit state machine, independent of any rendering layer.
package voice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/VoxDesk/voxdesk/internal/format"
	"github.com/VoxDesk/voxdesk/internal/logger"
	"github.com/VoxDesk/voxdesk/internal/notify"
)

// State is the current phase of the voice session.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateProcessing
	StatePlaying
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRecording:
		return "recording"
	case StateProcessing:
		return "processing"
	case StatePlaying:
		return "playing"
	default:
		return "idle"
	}
}

// ErrAlreadyRecording is returned when Start is called mid-recording
var ErrAlreadyRecording = errors.New("recording already in progress")

// ErrBusy is returned when an action needs an idle session
var ErrBusy = errors.New("voice session busy")

// Fallback transcript and reply shown when the upload round-trip fails.
const (
	FallbackTranscript = "Erreur de transcription"
	FallbackResponse   = "Désolé, je n'ai pas pu traiter votre message vocal. Veuillez réessayer."
)

// The backend returns only reply audio, so the visible transcript and reply
// text of a successful exchange are canned.
const (
	uploadTranscript = "Comment puis-je réinitialiser mon mot de passe ?"
	uploadResponse   = "Pour réinitialiser votre mot de passe, cliquez sur 'Mot de passe oublié' sur la page de connexion, puis suivez les instructions envoyées par email."
)

// simulatedReplies maps the demo prompts to canned answers for the
// no-backend simulate path.
var simulatedReplies = map[string]string{
	"Comment puis-je réinitialiser mon mot de passe ?": "Pour réinitialiser votre mot de passe, rendez-vous sur la page de connexion et cliquez sur 'Mot de passe oublié'. Vous recevrez un email avec les instructions.",
	"Quels sont vos horaires d'ouverture ?":            "Notre support est disponible du lundi au vendredi de 9h à 18h, et le samedi de 10h à 16h. En dehors de ces horaires, vous pouvez nous contacter via le chat.",
	"Je souhaite connaître le statut de ma commande":   "Pour vérifier le statut de votre commande, connectez-vous à votre compte et accédez à la section 'Mes commandes'. Vous y trouverez toutes les informations de suivi.",
	"Comment puis-je contacter le support ?":           "Vous pouvez nous contacter via ce chat, par email à support@company.com, ou par téléphone au 01 23 45 67 89 pendant nos heures d'ouverture.",
	"Y a-t-il des frais de livraison ?":                "La livraison est gratuite pour les commandes supérieures à 50€. En dessous, des frais de 4,90€ s'appliquent. La livraison express est disponible moyennant un supplément.",
}

// simulateDefaultReply is used when a simulated prompt has no canned answer
const simulateDefaultReply = "Je n'ai pas compris votre question. Pourriez-vous la reformuler ?"

// DemoPrompts are the canned questions offered by the console.
func DemoPrompts() []string {
	return []string{
		"Comment puis-je réinitialiser mon mot de passe ?",
		"Quels sont vos horaires d'ouverture ?",
		"Je souhaite connaître le statut de ma commande",
		"Comment puis-je contacter le support ?",
		"Y a-t-il des frais de livraison ?",
	}
}

// Recorder acquires the audio input device.
type Recorder interface {
	Start() (Clip, error)
}

// Clip is one in-flight capture. Stop releases the device and returns the
// recorded audio.
type Clip interface {
	Level() float64
	Stop() ([]byte, error)
}

// Player plays reply audio to completion.
type Player interface {
	Play(ctx context.Context, data []byte) error
}

// Uploader is the slice of the API client the session needs.
type Uploader interface {
	UploadVoiceMessage(ctx context.Context, audio []byte, filename, conversationID, userID string) ([]byte, error)
}

// Status is a point-in-time view of the session for display.
type Status struct {
	State        State
	Elapsed      time.Duration
	Level        float64
	Transcript   string
	Response     string
	LatencyMS    int64
	LatencyClass format.Class
}

// meterInterval is how often the level meter and elapsed timer tick
const meterInterval = 100 * time.Millisecond

// Session is the voice state machine. All methods are safe for concurrent
// use; only one recording may be active at a time.
type Session struct {
	recorder Recorder
	player   Player
	uploader Uploader
	notifier notify.Notifier
	userID   string

	// Simulate path timings, overridable in tests.
	simulateDelay    time.Duration
	simulatePlayback time.Duration

	state      State
	clip       Clip
	stopMeter  chan struct{}
	elapsed    time.Duration
	level      float64
	transcript string
	response   string
	latencyMS  int64
	onUpdate   func(Status)
	mu         sync.Mutex
}

// NewSession creates an idle voice session.
func NewSession(recorder Recorder, player Player, uploader Uploader, userID string, notifier notify.Notifier) *Session {
	if notifier == nil {
		notifier = notify.Discard()
	}
	return &Session{
		recorder:         recorder,
		player:           player,
		uploader:         uploader,
		notifier:         notifier,
		userID:           userID,
		simulateDelay:    1500 * time.Millisecond,
		simulatePlayback: 3 * time.Second,
	}
}

// SetOnUpdate registers a callback invoked on every status change.
func (s *Session) SetOnUpdate(fn func(Status)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUpdate = fn
}

// Status returns the current session view.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked()
}

func (s *Session) statusLocked() Status {
	return Status{
		State:        s.state,
		Elapsed:      s.elapsed,
		Level:        s.level,
		Transcript:   s.transcript,
		Response:     s.response,
		LatencyMS:    s.latencyMS,
		LatencyClass: format.ClassifyLatency(float64(s.latencyMS)),
	}
}

func (s *Session) publish() {
	s.mu.Lock()
	st := s.statusLocked()
	fn := s.onUpdate
	s.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.publish()
}

// Start acquires the input device and begins recording. Rejected while a
// recording is already active.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.state == StateRecording {
		s.mu.Unlock()
		return ErrAlreadyRecording
	}
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrBusy
	}

	clip, err := s.recorder.Start()
	if err != nil {
		s.mu.Unlock()
		s.notifier.Notify(notify.Error, fmt.Sprintf("Microphone unavailable: %v", err))
		return fmt.Errorf("acquire input device: %w", err)
	}

	s.state = StateRecording
	s.clip = clip
	s.elapsed = 0
	s.level = 0
	s.transcript = ""
	s.response = ""
	s.latencyMS = 0
	stop := make(chan struct{})
	s.stopMeter = stop
	s.mu.Unlock()

	go s.meter(clip, stop)
	s.publish()
	return nil
}

// meter samples the audio level and advances the elapsed timer until the
// stop channel closes. Both stop together.
func (s *Session) meter(clip Clip, stop chan struct{}) {
	ticker := time.NewTicker(meterInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			if s.state != StateRecording {
				s.mu.Unlock()
				return
			}
			s.elapsed += meterInterval
			s.level = clip.Level()
			s.mu.Unlock()
			s.publish()
		}
	}
}

// Stop ends the recording, uploads the audio, and plays the reply. Calling
// it while not recording is a no-op.
func (s *Session) Stop(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateRecording {
		s.mu.Unlock()
		return nil
	}
	clip := s.clip
	s.clip = nil
	close(s.stopMeter)
	s.stopMeter = nil
	s.level = 0
	s.state = StateProcessing
	s.mu.Unlock()
	s.publish()

	audio, err := clip.Stop()
	if err != nil {
		s.failExchange()
		return fmt.Errorf("finalize recording: %w", err)
	}

	return s.process(ctx, audio)
}

// process uploads the audio and runs the reply through playback. Latency is
// measured from entry until a usable reply arrives.
func (s *Session) process(ctx context.Context, audio []byte) error {
	start := time.Now()

	s.mu.Lock()
	conversationID := ""
	userID := s.userID
	s.mu.Unlock()

	reply, err := s.uploader.UploadVoiceMessage(ctx, audio, "recording.wav", conversationID, userID)
	if err != nil {
		s.failExchange()
		return fmt.Errorf("voice upload: %w", err)
	}

	s.mu.Lock()
	s.latencyMS = time.Since(start).Milliseconds()
	s.transcript = uploadTranscript
	s.response = uploadResponse
	s.mu.Unlock()

	return s.play(ctx, reply)
}

// failExchange installs the fallback transcript and reply and returns the
// session to idle. No playback happens for a failed exchange.
func (s *Session) failExchange() {
	s.mu.Lock()
	s.transcript = FallbackTranscript
	s.response = FallbackResponse
	s.state = StateIdle
	s.mu.Unlock()
	s.publish()
}

// play runs the reply audio to completion, then returns to idle. An empty
// reply (silent exchange) skips straight to idle.
func (s *Session) play(ctx context.Context, reply []byte) error {
	if len(reply) == 0 || s.player == nil {
		s.setState(StateIdle)
		return nil
	}

	s.setState(StatePlaying)
	err := s.player.Play(ctx, reply)
	s.setState(StateIdle)
	if err != nil {
		s.notifier.Notify(notify.Error, "Audio playback failed")
		return fmt.Errorf("play reply: %w", err)
	}
	return nil
}

// Simulate runs a canned exchange without device capture or a backend:
// artificial processing delay, a scripted reply, and a fixed playback
// window. Rejected unless the session is idle.
func (s *Session) Simulate(ctx context.Context, prompt string) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrBusy
	}
	s.state = StateProcessing
	s.transcript = prompt
	s.response = ""
	s.latencyMS = 0
	s.mu.Unlock()
	s.publish()

	start := time.Now()
	select {
	case <-ctx.Done():
		s.setState(StateIdle)
		return ctx.Err()
	case <-time.After(s.simulateDelay):
	}

	reply, ok := simulatedReplies[prompt]
	if !ok {
		reply = simulateDefaultReply
	}

	s.mu.Lock()
	s.response = reply
	s.latencyMS = time.Since(start).Milliseconds()
	s.state = StatePlaying
	s.mu.Unlock()
	s.publish()

	logger.Debug("simulated voice exchange took %dms", s.latencyMS)

	select {
	case <-ctx.Done():
		s.setState(StateIdle)
		return ctx.Err()
	case <-time.After(s.simulatePlayback):
	}

	s.setState(StateIdle)
	return nil
}

// Clear resets the transcript and reply of an idle session.
func (s *Session) Clear() error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return ErrBusy
	}
	s.transcript = ""
	s.response = ""
	s.latencyMS = 0
	s.elapsed = 0
	s.mu.Unlock()
	s.publish()
	return nil
}
