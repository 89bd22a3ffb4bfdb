package cache

import (
	"context"

	"blogfeed/internal/observability"
)

// Event is a mutation that may invalidate cached pages.
type Event string

const (
	EventPostCreated    Event = "post_created"
	EventPostEdited     Event = "post_edited"
	EventCommentCreated Event = "comment_created"
	EventFollowCreated  Event = "follow_created"
	EventFollowRemoved  Event = "follow_removed"
)

// Invalidator decides which events clear the response cache.
//
// Edits and follow changes always clear. Post and comment creation clear
// only when the clear-on-create switch reports true.
type Invalidator struct {
	cache         ResponseCache
	clearOnCreate func() bool
	log           *observability.CacheLogger
}

// InvalidatorOption configures an Invalidator.
type InvalidatorOption func(*Invalidator)

// WithClearOnCreate makes creation events clear the cache whenever enabled returns true.
func WithClearOnCreate(enabled func() bool) InvalidatorOption {
	return func(i *Invalidator) {
		i.clearOnCreate = enabled
	}
}

// NewInvalidator returns an Invalidator for c.
func NewInvalidator(c ResponseCache, opts ...InvalidatorOption) *Invalidator {
	i := &Invalidator{
		cache: c,
		log:   observability.NewCacheLogger("invalidator"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// ShouldClear reports whether event e triggers a full clear.
func (i *Invalidator) ShouldClear(e Event) bool {
	switch e {
	case EventPostEdited, EventFollowCreated, EventFollowRemoved:
		return true
	case EventPostCreated, EventCommentCreated:
		return i.clearOnCreate != nil && i.clearOnCreate()
	default:
		return false
	}
}

// Notify applies the clearing rule for e and reports whether the cache was cleared.
func (i *Invalidator) Notify(ctx context.Context, e Event) bool {
	if i == nil || i.cache == nil || !i.ShouldClear(e) {
		return false
	}
	i.cache.ClearAll(ctx)
	observability.ResponseCacheClears.WithLabelValues(string(e)).Inc()
	i.log.LogClear(ctx, string(e), i.cache.Epoch(ctx))
	return true
}
