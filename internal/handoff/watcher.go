// Package handoff passes a pending message between processes. The writing
// side stores the message text in the local store and drops a marker file;
// the watching side notices the marker, consumes the message and feeds it
// into the chat as the next turn.
package handoff

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/logging"
)

// MarkerFile is the filename that signals a pending message.
const MarkerFile = "pending.handoff"

// Source yields the pending message text, clearing it in the same step.
// Implemented by *store.LocalStore.
type Source interface {
	TakePendingMessage() (string, error)
}

// Sink stores a pending message for another process to pick up.
// Implemented by *store.LocalStore.
type Sink interface {
	SetPendingMessage(text string) error
}

// Leave writes the message through the sink and drops the marker file so a
// running watcher wakes up.
func Leave(sink Sink, dir, text string) error {
	if err := sink.SetPendingMessage(text); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, MarkerFile), []byte{}, 0644)
}

// Watcher waits for the marker file and delivers consumed messages on a
// channel.
type Watcher struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	dir     string
	source  Source
	msgs    chan string
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewWatcher creates a watcher over the given handoff directory.
func NewWatcher(dir string, source Source) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher: fw,
		dir:     dir,
		source:  source,
		msgs:    make(chan string, 4),
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// Messages delivers consumed pending messages. The channel is never closed
// while the watcher runs.
func (w *Watcher) Messages() <-chan string {
	return w.msgs
}

// Start begins watching. Non-blocking; a marker already present at startup
// is consumed immediately.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		logging.Get(logging.CategoryHandoff).Warn("Failed to create handoff dir %s: %v", w.dir, err)
	}
	if err := w.watcher.Add(w.dir); err != nil {
		logging.Get(logging.CategoryHandoff).Warn("Initial watch failed: %v", err)
	} else {
		logging.Handoff("Watching handoff directory: %s", w.dir)
	}

	// A previous run may have left a marker behind.
	if _, err := os.Stat(filepath.Join(w.dir, MarkerFile)); err == nil {
		w.consume()
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.Get(logging.CategoryHandoff).Error("Error closing watcher: %v", err)
	}
	logging.Handoff("Handoff watcher stopped")
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != MarkerFile {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.consume()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logging.Get(logging.CategoryHandoff).Error("Watcher error: %v", err)
		}
	}
}

// consume takes the pending message, removes the marker and delivers the
// text. Consuming clears the message, so duplicate events are harmless.
func (w *Watcher) consume() {
	text, err := w.source.TakePendingMessage()
	if err != nil {
		logging.Get(logging.CategoryHandoff).Error("Failed to take pending message: %v", err)
		return
	}

	if err := os.Remove(filepath.Join(w.dir, MarkerFile)); err != nil && !os.IsNotExist(err) {
		logging.Get(logging.CategoryHandoff).Warn("Failed to remove marker: %v", err)
	}

	if text == "" {
		return
	}
	logging.Handoff("Pending message consumed (%d bytes)", len(text))

	select {
	case w.msgs <- text:
	default:
		logging.Get(logging.CategoryHandoff).Warn("Message channel full, dropping handoff")
	}
}
