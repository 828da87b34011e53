package cart

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/logging"
	"github.com/skn-ai14-250409/SKN14-Final-6Team-AI-sub000/internal/types"
)

// Updater sends one absolute quantity to the backend and returns the
// server's recomputed cart. Implemented by *api.Client.
type Updater interface {
	UpdateCart(ctx context.Context, productName string, quantity int) (*types.Cart, error)
}

// Syncer batches optimistic quantity edits into debounced server updates.
// Edits within the window coalesce into the latest quantity per item
// (last-write-wins); the timer restarts on every edit. A failed update is
// logged and dropped: the optimistic local total stays visible until the
// next successful server response overwrites it.
type Syncer struct {
	state    *State
	updater  Updater
	debounce *Debouncer
	timeout  time.Duration

	mu      sync.Mutex
	pending map[string]int

	// OnReplace is called after a server snapshot lands (UI redraw hook).
	OnReplace func(types.Cart)
}

// NewSyncer creates a syncer with the given debounce window.
func NewSyncer(state *State, updater Updater, delay time.Duration) *Syncer {
	return &Syncer{
		state:    state,
		updater:  updater,
		debounce: NewDebouncer(delay),
		timeout:  15 * time.Second,
		pending:  make(map[string]int),
	}
}

// Schedule records the latest desired quantity for an item and (re)starts
// the debounce timer.
func (s *Syncer) Schedule(name string, quantity int) {
	s.mu.Lock()
	s.pending[name] = quantity
	n := len(s.pending)
	s.mu.Unlock()

	logging.CartDebug("scheduled sync %q=%d (pending=%d)", name, quantity, n)
	s.debounce.Debounce(s.fire)
}

// Pending returns a copy of the not-yet-sent quantities.
func (s *Syncer) Pending() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int, len(s.pending))
	for k, v := range s.pending {
		out[k] = v
	}
	return out
}

// Stop cancels any pending timer without sending.
func (s *Syncer) Stop() {
	s.debounce.Cancel()
}

// fire drains the pending map and sends every update. Runs on the timer
// goroutine.
func (s *Syncer) fire() {
	batch := s.drain()
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	s.send(ctx, batch)
}

// drain takes ownership of the pending map.
func (s *Syncer) drain() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.pending
	s.pending = make(map[string]int)
	return batch
}

// send pushes one batch of quantities to the backend. Each server response
// replaces the local snapshot as it arrives; failures are logged and
// dropped without rollback.
func (s *Syncer) send(ctx context.Context, batch map[string]int) {
	for name, qty := range batch {
		cart, err := s.updater.UpdateCart(ctx, name, qty)
		if err != nil {
			logging.Get(logging.CategoryCart).Error("sync %q=%d failed: %v", name, qty, err)
			continue
		}
		s.state.Replace(cart)
		if s.OnReplace != nil && cart != nil {
			s.OnReplace(s.state.Snapshot())
		}
	}
}

// FlushBeforeCheckout cancels the debounce timer and immediately sends the
// quantity for every item currently in the cart, merged with any pending
// edits (pending wins), in parallel. It waits for all requests to finish so
// checkout never runs against stale quantities. Individual failures follow
// the usual policy: logged and dropped.
func (s *Syncer) FlushBeforeCheckout(ctx context.Context) error {
	s.debounce.Cancel()

	pending := s.drain()
	merged := s.state.Quantities()
	for name, qty := range pending {
		merged[name] = qty
	}
	if len(merged) == 0 {
		return nil
	}

	logging.Cart("flushing %d quantities before checkout", len(merged))

	g, gctx := errgroup.WithContext(ctx)
	for name, qty := range merged {
		g.Go(func() error {
			cart, err := s.updater.UpdateCart(gctx, name, qty)
			if err != nil {
				logging.Get(logging.CategoryCart).Error("flush %q=%d failed: %v", name, qty, err)
				return nil
			}
			s.state.Replace(cart)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if s.OnReplace != nil {
		s.OnReplace(s.state.Snapshot())
	}
	return ctx.Err()
}
