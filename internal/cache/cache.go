// Package cache holds the whole-page response cache and the rules that clear it.
//
// Entries never expire on their own. The only way to drop an entry is
// ClearAll, which empties every key at once. Each clear advances an epoch
// counter so a page rendered before a clear can be recognised and discarded
// instead of being stored after it.
package cache

import "context"

// ResponseCache maps request keys to rendered payloads.
//
// Backend failures are absorbed: a failed Get is a miss and a failed Put or
// ClearAll is logged. None of these ever fail the request.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, payload []byte)
	ClearAll(ctx context.Context)
	// Epoch returns the number of clears observed so far.
	Epoch(ctx context.Context) uint64
	// PutAt stores payload only if no ClearAll has happened since epoch was read.
	PutAt(ctx context.Context, epoch uint64, key string, payload []byte)
}

// Render builds a payload. It also returns the key the payload belongs
// under, which may differ from the key it was looked up by when the
// request resolved to another page. An empty key means the lookup key.
type Render func(ctx context.Context) (payload []byte, key string, err error)

// Remember returns the cached payload for key, or renders and stores it.
// The epoch is read before rendering so that output built from data a
// concurrent mutation has since replaced is never written back.
func Remember(ctx context.Context, c ResponseCache, key string, render Render) ([]byte, bool, error) {
	if payload, ok := c.Get(ctx, key); ok {
		return payload, true, nil
	}

	epoch := c.Epoch(ctx)
	payload, storeKey, err := render(ctx)
	if err != nil {
		return nil, false, err
	}
	if storeKey == "" {
		storeKey = key
	}
	c.PutAt(ctx, epoch, storeKey, payload)
	return payload, false, nil
}
