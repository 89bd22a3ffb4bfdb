// Package service holds the write paths of the blog: posts, comments,
// follows and accounts. Every mutation reports an event to a Notifier so the
// response cache can be cleared when the mutation affects rendered pages.
package service

import (
	"context"

	"blogfeed/internal/cache"
)

// Notifier receives mutation events. *cache.Invalidator satisfies it.
type Notifier interface {
	Notify(ctx context.Context, e cache.Event) bool
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, cache.Event) bool { return false }

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
