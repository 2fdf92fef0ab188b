package dismiss

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/draftly/post-scheduler/pkg/logger"
)

// Action runs when a pending dismissal's undo window expires.
type Action func(ctx context.Context, postID string)

// Registry is a process-wide set of pending delayed dismissals, keyed by
// post id. Each entry is independently cancellable until its undo window
// runs out. Scheduling a post that already has a pending entry replaces it.
type Registry struct {
	log    logger.Logger
	clock  clockwork.Clock
	window time.Duration

	mu      sync.Mutex
	pending map[string]clockwork.Timer
}

func NewRegistry(log logger.Logger, clock clockwork.Clock, window time.Duration) *Registry {
	return &Registry{
		log:     log.WithComponent("DismissRegistry"),
		clock:   clock,
		window:  window,
		pending: make(map[string]clockwork.Timer),
	}
}

// Schedule queues action to run for postID after the undo window elapses.
func (r *Registry) Schedule(ctx context.Context, postID string, action Action) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if timer, ok := r.pending[postID]; ok {
		timer.Stop()
	}

	r.pending[postID] = r.clock.AfterFunc(r.window, func() {
		r.mu.Lock()
		delete(r.pending, postID)
		r.mu.Unlock()

		action(ctx, postID)
	})
}

// Cancel stops the pending dismissal for postID. Reports whether there was
// one to stop.
func (r *Registry) Cancel(postID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	timer, ok := r.pending[postID]
	if !ok {
		return false
	}
	timer.Stop()
	delete(r.pending, postID)
	return true
}

// Pending reports whether postID has an undone dismissal waiting.
func (r *Registry) Pending(postID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[postID]
	return ok
}

// Shutdown cancels every pending dismissal.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, timer := range r.pending {
		timer.Stop()
		delete(r.pending, id)
	}
	r.log.Info("Dismiss registry drained")
}
