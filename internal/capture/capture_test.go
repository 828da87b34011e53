package capture

import (
	"errors"
	"testing"
	"time"
)

// =============================================================================
// EVIDENCE
// =============================================================================

func TestEvidenceHappyPath(t *testing.T) {
	var e Evidence

	if err := e.Begin(EvidenceContext{OrderCode: "QK-1001", Product: "사과", Quantity: 2}); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if got := e.State(); got != EvidenceAwaitingFile {
		t.Fatalf("Expected awaiting_file, got %s", got)
	}

	ctx, err := e.Attach("/tmp/damage.jpg")
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if ctx.OrderCode != "QK-1001" || ctx.Product != "사과" || ctx.Quantity != 2 {
		t.Errorf("Attach returned wrong context: %+v", ctx)
	}
	if got := e.State(); got != EvidenceUploading {
		t.Fatalf("Expected uploading, got %s", got)
	}

	e.Complete()
	if got := e.State(); got != EvidenceIdle {
		t.Errorf("Expected idle after Complete, got %s", got)
	}
	if e.Context() != (EvidenceContext{}) {
		t.Errorf("Context must be cleared, got %+v", e.Context())
	}
}

func TestEvidenceBeginWhileOpen(t *testing.T) {
	var e Evidence

	if err := e.Begin(EvidenceContext{OrderCode: "QK-1"}); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := e.Begin(EvidenceContext{OrderCode: "QK-2"}); !errors.Is(err, ErrEvidenceBusy) {
		t.Errorf("Expected ErrEvidenceBusy, got %v", err)
	}
	if e.Context().OrderCode != "QK-1" {
		t.Errorf("Original context must survive, got %+v", e.Context())
	}
}

func TestEvidenceAttachFromIdle(t *testing.T) {
	var e Evidence

	if _, err := e.Attach("/tmp/x.jpg"); !errors.Is(err, ErrEvidenceState) {
		t.Errorf("Expected ErrEvidenceState, got %v", err)
	}
}

func TestEvidenceFailReturnsToAwaitingFile(t *testing.T) {
	var e Evidence

	e.Begin(EvidenceContext{OrderCode: "QK-1001"})
	e.Attach("/tmp/blurry.jpg")
	e.Fail()

	if got := e.State(); got != EvidenceAwaitingFile {
		t.Fatalf("Expected awaiting_file after failure, got %s", got)
	}
	if e.Context().OrderCode != "QK-1001" {
		t.Error("Ticket context must survive a failed upload")
	}
	if e.Path() != "" {
		t.Errorf("Failed file must be discarded, got %q", e.Path())
	}

	// A second file can be attached without re-entering the context.
	if _, err := e.Attach("/tmp/sharp.jpg"); err != nil {
		t.Errorf("Re-attach after failure failed: %v", err)
	}
}

func TestEvidenceCancelFromEveryState(t *testing.T) {
	var e Evidence

	e.Cancel() // idle: no-op
	if got := e.State(); got != EvidenceIdle {
		t.Fatalf("Expected idle, got %s", got)
	}

	e.Begin(EvidenceContext{OrderCode: "QK-1"})
	e.Cancel()
	if got := e.State(); got != EvidenceIdle {
		t.Fatalf("Cancel from awaiting_file: expected idle, got %s", got)
	}

	e.Begin(EvidenceContext{OrderCode: "QK-2"})
	e.Attach("/tmp/x.jpg")
	e.Cancel()
	if got := e.State(); got != EvidenceIdle {
		t.Fatalf("Cancel from uploading: expected idle, got %s", got)
	}
	if e.Path() != "" || e.Context() != (EvidenceContext{}) {
		t.Error("Cancel must discard the buffered file and context")
	}
}

// =============================================================================
// VOICE
// =============================================================================

func TestVoiceSingleSession(t *testing.T) {
	var v Voice

	if err := v.Start("/tmp/a.webm"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !v.Recording() {
		t.Fatal("Expected recording state")
	}
	if err := v.Start("/tmp/b.webm"); !errors.Is(err, ErrVoiceBusy) {
		t.Errorf("Second Start must fail with ErrVoiceBusy, got %v", err)
	}
}

func TestVoiceStopForTranscription(t *testing.T) {
	var v Voice

	v.Start("/tmp/question.webm")
	path, err := v.StopForTranscription()
	if err != nil {
		t.Fatalf("StopForTranscription failed: %v", err)
	}
	if path != "/tmp/question.webm" {
		t.Errorf("Expected recorded path back, got %q", path)
	}
	if got := v.State(); got != VoiceTranscribing {
		t.Fatalf("Expected transcribing, got %s", got)
	}

	v.Done()
	if got := v.State(); got != VoiceIdle {
		t.Errorf("Expected idle after Done, got %s", got)
	}
}

func TestVoiceStopForUpload(t *testing.T) {
	var v Voice

	v.Start("/tmp/memo.webm")
	if _, err := v.StopForUpload(); err != nil {
		t.Fatalf("StopForUpload failed: %v", err)
	}
	if got := v.State(); got != VoiceUploading {
		t.Errorf("Expected uploading, got %s", got)
	}
}

func TestVoiceStopFromIdle(t *testing.T) {
	var v Voice

	if _, err := v.StopForTranscription(); !errors.Is(err, ErrVoiceState) {
		t.Errorf("Expected ErrVoiceState, got %v", err)
	}
}

func TestVoiceCancelDiscardsBuffer(t *testing.T) {
	var v Voice

	v.Start("/tmp/a.webm")
	v.Cancel()
	if got := v.State(); got != VoiceIdle {
		t.Fatalf("Expected idle after Cancel, got %s", got)
	}
	// A fresh session can start immediately.
	if err := v.Start("/tmp/b.webm"); err != nil {
		t.Errorf("Start after Cancel failed: %v", err)
	}
}

func TestVoiceElapsed(t *testing.T) {
	var v Voice

	if v.Elapsed() != 0 {
		t.Error("Elapsed must be zero when idle")
	}
	v.Start("/tmp/a.webm")
	time.Sleep(10 * time.Millisecond)
	if v.Elapsed() <= 0 {
		t.Error("Elapsed must grow while recording")
	}
	v.StopForTranscription()
	if v.Elapsed() != 0 {
		t.Error("Elapsed must be zero once recording stopped")
	}
}
