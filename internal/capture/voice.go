package capture

import (
	"errors"
	"sync"
	"time"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/logging"
)

// VoiceState is one step of the voice input flow.
type VoiceState int

const (
	VoiceIdle VoiceState = iota
	VoiceRecording
	VoiceTranscribing
	VoiceUploading
)

func (s VoiceState) String() string {
	switch s {
	case VoiceIdle:
		return "idle"
	case VoiceRecording:
		return "recording"
	case VoiceTranscribing:
		return "transcribing"
	case VoiceUploading:
		return "uploading"
	}
	return "unknown"
}

var (
	// ErrVoiceBusy means a recording session is already active. One session
	// at a time.
	ErrVoiceBusy = errors.New("recording already in progress")
	// ErrVoiceState means the requested transition is not legal from the
	// current state.
	ErrVoiceState = errors.New("invalid voice state transition")
)

// Voice tracks a single voice capture session.
type Voice struct {
	mu        sync.Mutex
	state     VoiceState
	path      string
	startedAt time.Time
}

// Start opens a recording session for the given audio file path.
func (v *Voice) Start(path string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != VoiceIdle {
		return ErrVoiceBusy
	}
	v.state = VoiceRecording
	v.path = path
	v.startedAt = time.Now()
	logging.Capture("recording started: %s", path)
	return nil
}

// StopForTranscription ends the recording and hands the audio off for
// speech-to-text. Returns the recorded file path.
func (v *Voice) StopForTranscription() (string, error) {
	return v.stop(VoiceTranscribing)
}

// StopForUpload ends the recording and hands the audio off as a plain
// attachment.
func (v *Voice) StopForUpload() (string, error) {
	return v.stop(VoiceUploading)
}

func (v *Voice) stop(next VoiceState) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != VoiceRecording {
		return "", ErrVoiceState
	}
	v.state = next
	logging.CaptureDebug("recording stopped after %s, next=%s", time.Since(v.startedAt).Round(time.Millisecond), next)
	return v.path, nil
}

// Done closes the session after transcription or upload finished, success
// or not.
func (v *Voice) Done() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state == VoiceTranscribing || v.state == VoiceUploading {
		v.reset()
	}
}

// Cancel abandons the session from any state and discards the buffer. No
// network call is made.
func (v *Voice) Cancel() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != VoiceIdle {
		logging.Capture("recording cancelled in state %s", v.state)
	}
	v.reset()
}

func (v *Voice) reset() {
	v.state = VoiceIdle
	v.path = ""
	v.startedAt = time.Time{}
}

// State returns the current state.
func (v *Voice) State() VoiceState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Recording reports whether a session is currently capturing audio.
func (v *Voice) Recording() bool {
	return v.State() == VoiceRecording
}

// Elapsed returns how long the current recording has been running, zero
// when not recording.
func (v *Voice) Elapsed() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.state != VoiceRecording {
		return 0
	}
	return time.Since(v.startedAt)
}
