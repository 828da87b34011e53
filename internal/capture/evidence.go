// Package capture holds the small state machines behind media capture:
// photo evidence for customer-service tickets and voice input. Both are
// plain guarded transitions; the actual uploads live in internal/api.
package capture

import (
	"errors"
	"sync"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/logging"
)

// EvidenceState is one step of the evidence submission flow.
type EvidenceState int

const (
	EvidenceIdle EvidenceState = iota
	EvidenceAwaitingFile
	EvidenceUploading
)

func (s EvidenceState) String() string {
	switch s {
	case EvidenceIdle:
		return "idle"
	case EvidenceAwaitingFile:
		return "awaiting_file"
	case EvidenceUploading:
		return "uploading"
	}
	return "unknown"
}

var (
	// ErrEvidenceBusy means a submission flow is already open.
	ErrEvidenceBusy = errors.New("evidence submission already in progress")
	// ErrEvidenceState means the requested transition is not legal from
	// the current state.
	ErrEvidenceState = errors.New("invalid evidence state transition")
)

// EvidenceContext is the ticket context collected before the file is chosen.
type EvidenceContext struct {
	OrderCode string
	Product   string
	Quantity  int
}

// Evidence tracks one photo-evidence submission at a time.
type Evidence struct {
	mu    sync.Mutex
	state EvidenceState
	ctx   EvidenceContext
	path  string
}

// Begin opens a submission flow with the ticket context. Only legal from
// idle.
func (e *Evidence) Begin(ctx EvidenceContext) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != EvidenceIdle {
		return ErrEvidenceBusy
	}
	e.state = EvidenceAwaitingFile
	e.ctx = ctx
	logging.Capture("evidence flow opened for order %s", ctx.OrderCode)
	return nil
}

// Attach records the chosen file and moves to uploading. The returned
// context is what the upload request needs.
func (e *Evidence) Attach(path string) (EvidenceContext, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != EvidenceAwaitingFile {
		return EvidenceContext{}, ErrEvidenceState
	}
	e.state = EvidenceUploading
	e.path = path
	logging.CaptureDebug("evidence file attached: %s", path)
	return e.ctx, nil
}

// Complete closes a successful upload and resets to idle.
func (e *Evidence) Complete() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == EvidenceUploading {
		logging.Capture("evidence upload complete for order %s", e.ctx.OrderCode)
	}
	e.reset()
}

// Fail returns a failed upload to awaiting_file so the user can pick a
// different file without re-entering the ticket context.
func (e *Evidence) Fail() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != EvidenceUploading {
		return
	}
	e.state = EvidenceAwaitingFile
	e.path = ""
}

// Cancel abandons the flow from any state. No network call is made and the
// collected context is discarded.
func (e *Evidence) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != EvidenceIdle {
		logging.Capture("evidence flow cancelled in state %s", e.state)
	}
	e.reset()
}

func (e *Evidence) reset() {
	e.state = EvidenceIdle
	e.ctx = EvidenceContext{}
	e.path = ""
}

// State returns the current state.
func (e *Evidence) State() EvidenceState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Context returns the ticket context collected so far.
func (e *Evidence) Context() EvidenceContext {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx
}

// Path returns the attached file path, empty before Attach.
func (e *Evidence) Path() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.path
}
