// Package repository implements the in-memory stores for the book lending
// service. There is no backend of record: the dataset is seeded from fixtures
// at startup and resets on restart. Every store is safe for concurrent use
// and can simulate network latency to mirror the reference behavior.
package repository

import (
	"context"
	"time"
)

// Latency models the artificial request delay of the reference
// implementation. A zero latency (the default in tests) is free.
type Latency time.Duration

// Wait blocks for the configured latency or until ctx is cancelled.
// Every public repository method calls this before touching state.
func (l Latency) Wait(ctx context.Context) error {
	if l <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(time.Duration(l))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
