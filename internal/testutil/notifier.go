// Package testutil provides shared test doubles for service and server tests.
package testutil

import (
	"context"
	"sync"

	"blogfeed/internal/cache"
)

// RecordingNotifier remembers every event it receives and, when Invalidator
// is set, forwards them so the real clearing rule still applies.
type RecordingNotifier struct {
	Invalidator *cache.Invalidator

	mu     sync.Mutex
	events []cache.Event
}

// NewRecordingNotifier wraps inv, which may be nil.
func NewRecordingNotifier(inv *cache.Invalidator) *RecordingNotifier {
	return &RecordingNotifier{Invalidator: inv}
}

// Notify records e and reports whether the wrapped invalidator cleared.
func (r *RecordingNotifier) Notify(ctx context.Context, e cache.Event) bool {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return r.Invalidator.Notify(ctx, e)
}

// Events returns a copy of the recorded events in arrival order.
func (r *RecordingNotifier) Events() []cache.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]cache.Event(nil), r.events...)
}

// Reset drops recorded events.
func (r *RecordingNotifier) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
