package voice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/VoxDesk/voxdesk/internal/notify"
)

// fakeClip is a scripted Clip that counts how often it is released.
type fakeClip struct {
	mu      sync.Mutex
	data    []byte
	stopErr error
	stops   int
	level   float64
}

func (c *fakeClip) Level() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level
}

func (c *fakeClip) Stop() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stops++
	return c.data, c.stopErr
}

type fakeRecorder struct {
	mu       sync.Mutex
	startErr error
	starts   int
	clips    []*fakeClip
}

func (r *fakeRecorder) Start() (Clip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.starts++
	if r.startErr != nil {
		return nil, r.startErr
	}
	clip := &fakeClip{data: []byte("RIFFaudio"), level: 0.5}
	r.clips = append(r.clips, clip)
	return clip, nil
}

type fakePlayer struct {
	mu      sync.Mutex
	played  [][]byte
	playErr error
}

func (p *fakePlayer) Play(ctx context.Context, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, data)
	return p.playErr
}

type fakeUploader struct {
	mu        sync.Mutex
	reply     []byte
	uploadErr error
	uploads   int
	lastUser  string
}

func (u *fakeUploader) UploadVoiceMessage(ctx context.Context, audio []byte, filename, conversationID, userID string) ([]byte, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.uploads++
	u.lastUser = userID
	if u.uploadErr != nil {
		return nil, u.uploadErr
	}
	return u.reply, nil
}

type captureNotifier struct {
	mu    sync.Mutex
	kinds []notify.Kind
	msgs  []string
}

func (n *captureNotifier) Notify(kind notify.Kind, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.kinds = append(n.kinds, kind)
	n.msgs = append(n.msgs, msg)
}

func newTestSession(recorder *fakeRecorder, player *fakePlayer, uploader *fakeUploader) *Session {
	s := NewSession(recorder, player, uploader, "demo_user", notify.Discard())
	s.simulateDelay = time.Millisecond
	s.simulatePlayback = time.Millisecond
	return s
}

func TestRecordUploadPlayCycle(t *testing.T) {
	recorder := &fakeRecorder{}
	player := &fakePlayer{}
	uploader := &fakeUploader{reply: []byte("reply-audio")}
	s := newTestSession(recorder, player, uploader)

	if err := s.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if got := s.Status().State; got != StateRecording {
		t.Errorf("State = %v, want recording", got)
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop error: %v", err)
	}

	st := s.Status()
	if st.State != StateIdle {
		t.Errorf("State = %v after cycle, want idle", st.State)
	}
	if st.Transcript == "" || st.Response == "" {
		t.Error("successful exchange should set transcript and response")
	}
	if uploader.uploads != 1 {
		t.Errorf("uploads = %d, want 1", uploader.uploads)
	}
	if uploader.lastUser != "demo_user" {
		t.Errorf("userID = %q", uploader.lastUser)
	}
	if len(player.played) != 1 || string(player.played[0]) != "reply-audio" {
		t.Errorf("played = %v", player.played)
	}
}

func TestStartWhileRecordingRejected(t *testing.T) {
	recorder := &fakeRecorder{}
	s := newTestSession(recorder, &fakePlayer{}, &fakeUploader{})

	if err := s.Start(); err != nil {
		t.Fatalf("Start error: %v", err)
	}
	if err := s.Start(); err != ErrAlreadyRecording {
		t.Errorf("second Start = %v, want ErrAlreadyRecording", err)
	}
	if recorder.starts != 1 {
		t.Errorf("device acquired %d times, want 1", recorder.starts)
	}

	s.Stop(context.Background())
}

func TestStopWhileIdleIsNoOp(t *testing.T) {
	uploader := &fakeUploader{}
	s := newTestSession(&fakeRecorder{}, &fakePlayer{}, uploader)

	if err := s.Stop(context.Background()); err != nil {
		t.Errorf("Stop while idle = %v, want nil", err)
	}
	if uploader.uploads != 0 {
		t.Error("idle Stop must not upload")
	}
}

func TestNoHandleLeakAcrossCycles(t *testing.T) {
	recorder := &fakeRecorder{}
	s := newTestSession(recorder, &fakePlayer{}, &fakeUploader{reply: []byte("r")})

	for i := 0; i < 3; i++ {
		if err := s.Start(); err != nil {
			t.Fatalf("Start #%d error: %v", i, err)
		}
		if err := s.Stop(context.Background()); err != nil {
			t.Fatalf("Stop #%d error: %v", i, err)
		}
	}

	if len(recorder.clips) != 3 {
		t.Fatalf("acquired %d clips, want 3", len(recorder.clips))
	}
	for i, clip := range recorder.clips {
		if clip.stops != 1 {
			t.Errorf("clip %d released %d times, want exactly 1", i, clip.stops)
		}
	}
}

func TestAcquisitionFailure(t *testing.T) {
	recorder := &fakeRecorder{startErr: errors.New("permission denied")}
	notifier := &captureNotifier{}
	s := NewSession(recorder, &fakePlayer{}, &fakeUploader{}, "demo_user", notifier)

	if err := s.Start(); err == nil {
		t.Fatal("expected error from failed acquisition")
	}
	if got := s.Status().State; got != StateIdle {
		t.Errorf("State = %v after failed acquisition, want idle", got)
	}
	if len(notifier.kinds) != 1 || notifier.kinds[0] != notify.Error {
		t.Errorf("notifications = %v", notifier.msgs)
	}

	// Session stays usable
	recorder.startErr = nil
	if err := s.Start(); err != nil {
		t.Errorf("Start after recovery: %v", err)
	}
	s.Stop(context.Background())
}

func TestUploadFailureFallsBack(t *testing.T) {
	player := &fakePlayer{}
	uploader := &fakeUploader{uploadErr: errors.New("503")}
	s := newTestSession(&fakeRecorder{}, player, uploader)

	s.Start()
	if err := s.Stop(context.Background()); err == nil {
		t.Error("expected error from failed upload")
	}

	st := s.Status()
	if st.State != StateIdle {
		t.Errorf("State = %v, want idle", st.State)
	}
	if st.Transcript != FallbackTranscript {
		t.Errorf("Transcript = %q", st.Transcript)
	}
	if st.Response != FallbackResponse {
		t.Errorf("Response = %q", st.Response)
	}
	// No playback for a failed exchange
	if len(player.played) != 0 {
		t.Errorf("played %d clips after failure, want 0", len(player.played))
	}
}

func TestEmptyReplySkipsPlayback(t *testing.T) {
	player := &fakePlayer{}
	s := newTestSession(&fakeRecorder{}, player, &fakeUploader{reply: nil})

	s.Start()
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop error: %v", err)
	}
	if len(player.played) != 0 {
		t.Error("empty reply should not be played")
	}
	if got := s.Status().State; got != StateIdle {
		t.Errorf("State = %v, want idle", got)
	}
}

func TestPlaybackFailureRecovers(t *testing.T) {
	player := &fakePlayer{playErr: errors.New("no audio device")}
	s := newTestSession(&fakeRecorder{}, player, &fakeUploader{reply: []byte("r")})

	s.Start()
	if err := s.Stop(context.Background()); err == nil {
		t.Error("expected playback error")
	}
	if got := s.Status().State; got != StateIdle {
		t.Errorf("State = %v, want idle", got)
	}

	// A fresh cycle works
	if err := s.Start(); err != nil {
		t.Errorf("Start after playback failure: %v", err)
	}
	s.Stop(context.Background())
}

func TestSimulateCannedReply(t *testing.T) {
	s := newTestSession(&fakeRecorder{}, &fakePlayer{}, &fakeUploader{})

	prompt := "Quels sont vos horaires d'ouverture ?"
	if err := s.Simulate(context.Background(), prompt); err != nil {
		t.Fatalf("Simulate error: %v", err)
	}

	st := s.Status()
	if st.State != StateIdle {
		t.Errorf("State = %v, want idle", st.State)
	}
	if st.Transcript != prompt {
		t.Errorf("Transcript = %q", st.Transcript)
	}
	if st.Response != simulatedReplies[prompt] {
		t.Errorf("Response = %q", st.Response)
	}
	if st.LatencyMS <= 0 {
		t.Errorf("LatencyMS = %d, want > 0", st.LatencyMS)
	}
}

func TestSimulateUnknownPrompt(t *testing.T) {
	s := newTestSession(&fakeRecorder{}, &fakePlayer{}, &fakeUploader{})

	if err := s.Simulate(context.Background(), "Quelle heure est-il ?"); err != nil {
		t.Fatalf("Simulate error: %v", err)
	}
	if got := s.Status().Response; got != simulateDefaultReply {
		t.Errorf("Response = %q, want default reply", got)
	}
}

func TestSimulateWhileRecordingRejected(t *testing.T) {
	s := newTestSession(&fakeRecorder{}, &fakePlayer{}, &fakeUploader{reply: []byte("r")})

	s.Start()
	if err := s.Simulate(context.Background(), "x"); err != ErrBusy {
		t.Errorf("Simulate while recording = %v, want ErrBusy", err)
	}
	s.Stop(context.Background())
}

func TestSimulateCancelled(t *testing.T) {
	s := newTestSession(&fakeRecorder{}, &fakePlayer{}, &fakeUploader{})
	s.simulateDelay = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Simulate(ctx, "x") }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	if err := <-done; err != context.Canceled {
		t.Errorf("Simulate = %v, want context.Canceled", err)
	}
	if got := s.Status().State; got != StateIdle {
		t.Errorf("State = %v after cancel, want idle", got)
	}
}

func TestClear(t *testing.T) {
	s := newTestSession(&fakeRecorder{}, &fakePlayer{}, &fakeUploader{})

	s.Simulate(context.Background(), "Y a-t-il des frais de livraison ?")
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear error: %v", err)
	}

	st := s.Status()
	if st.Transcript != "" || st.Response != "" || st.LatencyMS != 0 {
		t.Errorf("Clear left state behind: %+v", st)
	}
}

func TestClearWhileRecordingRejected(t *testing.T) {
	s := newTestSession(&fakeRecorder{}, &fakePlayer{}, &fakeUploader{reply: []byte("r")})

	s.Start()
	if err := s.Clear(); err != ErrBusy {
		t.Errorf("Clear while recording = %v, want ErrBusy", err)
	}
	s.Stop(context.Background())
}

func TestMeterStopsWithRecording(t *testing.T) {
	s := newTestSession(&fakeRecorder{}, &fakePlayer{}, &fakeUploader{reply: []byte("r")})

	s.Start()
	time.Sleep(250 * time.Millisecond)

	st := s.Status()
	if st.Elapsed < 100*time.Millisecond {
		t.Errorf("Elapsed = %v, meter should be ticking", st.Elapsed)
	}
	if st.Level == 0 {
		t.Error("Level should track the clip while recording")
	}

	s.Stop(context.Background())
	frozen := s.Status().Elapsed

	// No ticks continue after the recording ends
	time.Sleep(250 * time.Millisecond)
	if got := s.Status().Elapsed; got != frozen {
		t.Errorf("Elapsed grew from %v to %v after Stop", frozen, got)
	}
	if got := s.Status().Level; got != 0 {
		t.Errorf("Level = %v after Stop, want 0", got)
	}
}

func TestStateString(t *testing.T) {
	cases := map[State]string{
		StateIdle:       "idle",
		StateRecording:  "recording",
		StateProcessing: "processing",
		StatePlaying:    "playing",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
