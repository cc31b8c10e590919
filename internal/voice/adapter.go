package voice

import "github.com/VoxDesk/voxdesk/internal/audio"

// CaptureRecorder adapts an audio.Capture to the Recorder interface.
type CaptureRecorder struct {
	Capture *audio.Capture
}

func (r CaptureRecorder) Start() (Clip, error) {
	rec, err := r.Capture.Start()
	if err != nil {
		return nil, err
	}
	return rec, nil
}
